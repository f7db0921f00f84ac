package container

import (
	"fmt"
	"reflect"
)

// Instantiator builds one instance from a ServicePrototype, per spec
// section 4.4: resolve constructor parameters, construct, inject
// properties, invoke injected methods, in that order. Grounded on the
// teacher's provider.go ClassProvider (reflect.New + field population) and
// mwantia-fabric's processor_inject.go (ordered injection passes).
type Instantiator struct {
	resolver *DependencyResolver
	analyzer *PrototypeAnalyzer
}

func newInstantiator(resolver *DependencyResolver, analyzer *PrototypeAnalyzer) *Instantiator {
	return &Instantiator{resolver: resolver, analyzer: analyzer}
}

// Build constructs one instance of proto.ClassID for ctx.
func (inst *Instantiator) Build(ctx *KernelContext, def *ServiceDefinition, proto *ServicePrototype) (any, error) {
	if !proto.IsInstantiable {
		return nil, newKernelError(NotInstantiable, proto.ClassID, fmt.Errorf("type %s is not instantiable", proto.Type)).withChain(ctx.Chain())
	}

	value, err := inst.construct(ctx, def, proto)
	if err != nil {
		return nil, err
	}

	if err := inst.injectProperties(ctx, def, proto, value); err != nil {
		return nil, err
	}

	if err := inst.injectMethods(ctx, def, proto, value); err != nil {
		return nil, err
	}

	return value.Interface(), nil
}

// construct runs the constructor stage: call the registered constructor
// function with resolved arguments, or fall back to a zero-value
// reflect.New when no constructor function was registered for this class
// (the common case, where all wiring happens through property injection).
func (inst *Instantiator) construct(ctx *KernelContext, def *ServiceDefinition, proto *ServicePrototype) (reflect.Value, error) {
	structType := proto.Type
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	if proto.Constructor == nil {
		return reflect.New(structType), nil
	}

	meta := inst.analyzer.classes[proto.ClassID]
	if meta == nil || !meta.constructor.IsValid() {
		return reflect.Value{}, newKernelError(AnalysisError, proto.ClassID, fmt.Errorf("constructor prototype without a registered constructor function")).withChain(ctx.Chain())
	}

	args := make([]reflect.Value, len(proto.Constructor.Parameters))
	for i, p := range proto.Constructor.Parameters {
		v, err := inst.resolver.resolveParameter(ctx, def, p)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = coerceArgument(v, meta.constructor.Type().In(i))
	}

	var out []reflect.Value
	if meta.constructor.Type().IsVariadic() {
		out = meta.constructor.CallSlice(args)
	} else {
		out = meta.constructor.Call(args)
	}
	return firstValueAndError(out)
}

// injectProperties sets every kernel:"inject"-tagged field on value,
// failing with InvalidInjectionPoint when a field marked readonly
// (unexported) was nonetheless listed as injectable.
func (inst *Instantiator) injectProperties(ctx *KernelContext, def *ServiceDefinition, proto *ServicePrototype, value reflect.Value) error {
	if len(proto.InjectedProperties) == 0 {
		return nil
	}

	target := value
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}

	for _, prop := range proto.InjectedProperties {
		if prop.Readonly {
			return newKernelError(InvalidInjectionPoint, proto.ClassID, fmt.Errorf("field %q is unexported and cannot be injected", prop.Name)).withChain(ctx.Chain())
		}

		v, has, err := inst.resolver.resolveProperty(ctx, def, prop)
		if err != nil {
			return err
		}
		if !has {
			continue
		}

		field := target.Field(prop.FieldIndex)
		if !field.CanSet() {
			return newKernelError(InvalidInjectionPoint, proto.ClassID, fmt.Errorf("field %q cannot be set", prop.Name)).withChain(ctx.Chain())
		}
		field.Set(coerceArgument(v, field.Type()))
	}

	return nil
}

// injectMethods invokes every explicitly registered injectable method,
// resolving each parameter the same way constructor parameters are
// resolved.
func (inst *Instantiator) injectMethods(ctx *KernelContext, def *ServiceDefinition, proto *ServicePrototype, value reflect.Value) error {
	for _, m := range proto.InjectedMethods {
		method := value.MethodByName(m.Name)
		if !method.IsValid() {
			return newKernelError(AnalysisError, proto.ClassID, fmt.Errorf("injected method %q not found on value", m.Name)).withChain(ctx.Chain())
		}

		args := make([]reflect.Value, len(m.Parameters))
		for i, p := range m.Parameters {
			v, err := inst.resolver.resolveParameter(ctx, def, p)
			if err != nil {
				return err
			}
			args[i] = coerceArgument(v, method.Type().In(i))
		}

		var out []reflect.Value
		if method.Type().IsVariadic() {
			out = method.CallSlice(args)
		} else {
			out = method.Call(args)
		}
		if _, err := firstValueAndError(out); err != nil {
			return newKernelError(UnresolvableDependency, proto.ClassID, err).withChain(ctx.Chain())
		}
	}
	return nil
}

// coerceArgument wraps v in a reflect.Value usable as an argument of type
// want, handling the nil-interface and untyped-nil cases that occur when
// a resolver returns (nil, nil) for an optional dependency.
func coerceArgument(v any, want reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(want)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(want) {
		return rv
	}
	if rv.Kind() == reflect.Ptr && want.Kind() != reflect.Ptr && rv.Elem().Type().AssignableTo(want) {
		return rv.Elem()
	}
	if rv.Type().ConvertibleTo(want) {
		return rv.Convert(want)
	}
	return reflect.Zero(want)
}

// firstValueAndError splits a reflect.Call result into (value, error)
// following the common Go convention of a trailing error return. A
// constructor or method with no error return always succeeds here.
func firstValueAndError(out []reflect.Value) (reflect.Value, error) {
	if len(out) == 0 {
		return reflect.Value{}, nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		if !last.IsNil() {
			return reflect.Value{}, last.Interface().(error)
		}
		if len(out) == 1 {
			return reflect.Value{}, nil
		}
		return out[0], nil
	}
	return out[0], nil
}
