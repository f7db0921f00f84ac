package container

import (
	"errors"
	"fmt"
	"reflect"
)

// DependencyResolver implements the parameter/property resolution order
// from spec section 4.3:
//
//  1. an explicit override supplied to this Make/Get call,
//  2. a contextual binding registered for (consumer, needs),
//  3. an explicit argument on the owning ServiceDefinition,
//  4. autowiring by type, when the parameter names a registered class,
//  5. the parameter's default value, if it has one,
//  6. the zero value, when the parameter allows null (pointer/interface),
//  7. nil, when the parameter is not required,
//  8. otherwise UnresolvableDependency.
//
// A variadic parameter follows its own collection path (resolveVariadic):
// steps 1 and 3, then tagged services, instead of the other steps.
type DependencyResolver struct {
	store  *DefinitionStore
	engine *Engine
}

func newDependencyResolver(store *DefinitionStore, engine *Engine) *DependencyResolver {
	return &DependencyResolver{store: store, engine: engine}
}

// resolveParameter resolves one constructor/method parameter.
func (r *DependencyResolver) resolveParameter(ctx *KernelContext, def *ServiceDefinition, p ParameterPrototype) (any, error) {
	if p.Variadic {
		return r.resolveVariadic(ctx, def, p)
	}

	if v, ok := ctx.override(p.Name); ok {
		return v, nil
	}

	if needs, ok := typeIDFor(p.Type); ok {
		if give, ok := r.store.GetContextualMatch(ctx.consumer, needs); ok {
			ctx.trace.record(TraceStep{ServiceID: needs, Stage: "ContextualLookup", Outcome: "matched"})
			return r.engine.evaluateConcrete(ctx, give)
		}
	}

	if def != nil {
		if v, ok := def.Arguments[p.Name]; ok {
			return v, nil
		}
	}

	if p.Type != nil {
		if id, ok := classIDForType(r.store, p.Type); ok {
			v, err := r.engine.resolveChild(ctx, id, nil)
			if err != nil {
				if !p.IsRequired && errors.Is(err, ErrServiceNotFound) {
					// fall through to default/nullable handling below
				} else {
					return nil, err
				}
			} else {
				return v, nil
			}
		}
	}

	if p.HasDefault {
		return p.DefaultValue, nil
	}

	if p.AllowsNull {
		return reflect.Zero(parameterReflectType(p)).Interface(), nil
	}

	if !p.IsRequired {
		return nil, nil
	}

	return nil, newKernelError(UnresolvableDependency, p.Name, fmt.Errorf("no binding, argument, default, or autowire target for parameter %q", p.Name)).withChain(ctx.Chain())
}

// resolveVariadic implements spec section 4.3's variadic collection path:
// a named override wins outright, then an argument of the same name on the
// owning definition; otherwise every service tagged with the
// element type's name is resolved and collected, in registration order;
// with no override and no tagged services, the result is an empty
// collection — never an unresolvable-dependency error.
func (r *DependencyResolver) resolveVariadic(ctx *KernelContext, def *ServiceDefinition, p ParameterPrototype) (any, error) {
	elemType := p.ElemType
	if elemType == nil {
		elemType = reflect.TypeOf((*any)(nil)).Elem()
	}
	sliceType := reflect.SliceOf(elemType)

	if v, ok := ctx.override(p.Name); ok {
		return v, nil
	}
	if def != nil {
		if v, ok := def.Arguments[p.Name]; ok {
			return v, nil
		}
	}

	ids := r.store.Tagged(p.TagHint)
	out := reflect.MakeSlice(sliceType, 0, len(ids))
	for _, id := range ids {
		v, err := r.engine.resolveChild(ctx, id, nil)
		if err != nil {
			return nil, err
		}
		out = reflect.Append(out, coerceArgument(v, elemType))
	}
	return out.Interface(), nil
}

// resolveProperty resolves one injectable struct field: override,
// contextual binding, definition argument, then autowiring by type. There
// is no default or nullable step: an optional field left unmatched is
// reported as unresolved (has=false), a required one as
// UnresolvableDependency.
func (r *DependencyResolver) resolveProperty(ctx *KernelContext, def *ServiceDefinition, prop PropertyPrototype) (any, bool, error) {
	if v, ok := ctx.override(prop.Name); ok {
		return v, true, nil
	}

	if needs, ok := typeIDFor(prop.Type); ok {
		if give, ok := r.store.GetContextualMatch(ctx.consumer, needs); ok {
			ctx.trace.record(TraceStep{ServiceID: needs, Stage: "ContextualLookup", Outcome: "matched"})
			v, err := r.engine.evaluateConcrete(ctx, give)
			return v, true, err
		}
	}

	if def != nil {
		if v, ok := def.Arguments[prop.Name]; ok {
			return v, true, nil
		}
	}

	if id, ok := classIDForType(r.store, prop.Type); ok {
		v, err := r.engine.resolveChild(ctx, id, nil)
		if err != nil {
			if !prop.IsRequired && errors.Is(err, ErrServiceNotFound) {
				return nil, false, nil
			}
			return nil, true, err
		}
		return v, true, nil
	}

	if prop.IsRequired {
		return nil, false, newKernelError(UnresolvableDependency, prop.Name, fmt.Errorf("no binding, argument, or autowire target for property %q", prop.Name)).withChain(ctx.Chain())
	}

	return nil, false, nil
}

// typeIDFor derives the dependency id a contextual rule keys on, purely
// from t's type name (unwrapping one pointer level), with no requirement
// that anything be registered under that name yet — a contextual override
// is meant to apply even when no global binding for the id exists (spec
// sections 3 and 4.5's getContextualMatch(consumer, needs)).
func typeIDFor(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	target := t
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	name := target.Name()
	if name == "" {
		return "", false
	}
	return name, true
}

// classIDForType finds a registered class id whose reflect.Type matches t,
// implementing the "parameter type names a registered class" half of the
// Autowire stage. Interfaces resolve to the class id bound to the
// abstract sharing the interface's name, when one was registered via
// Bind/Singleton using the interface's type name as the abstract id.
func classIDForType(store *DefinitionStore, t reflect.Type) (string, bool) {
	name, ok := typeIDFor(t)
	if !ok {
		return "", false
	}
	if store.Has(name) {
		return name, true
	}
	if _, ok := store.LookupType(name); ok {
		return name, true
	}
	return "", false
}

func parameterReflectType(p ParameterPrototype) reflect.Type {
	if p.Type != nil {
		return p.Type
	}
	return reflect.TypeOf((*any)(nil)).Elem()
}
