package container

import (
	"fmt"
	"reflect"
	"strings"
)

// injectTag is the struct tag the PrototypeAnalyzer inspects to decide
// whether a field is injectable, named after mwantia-fabric's
// fabric:"inject" convention (container/processor_inject.go).
const injectTag = "kernel"

// classMeta augments a registered reflect.Type with the constructor
// function and injectable-method names a caller opted into, via
// Container.RegisterConstructor / RegisterMethodInjection.
type classMeta struct {
	typ         reflect.Type
	constructor reflect.Value // zero Value if none registered
	methods     []string      // ordered, explicitly opted-in method names
}

// PrototypeAnalyzer reduces a registered class id to a reusable
// ServicePrototype, per spec section 4.2.
type PrototypeAnalyzer struct {
	classes map[string]*classMeta
}

// NewPrototypeAnalyzer creates an analyzer over the given class registry.
func NewPrototypeAnalyzer() *PrototypeAnalyzer {
	return &PrototypeAnalyzer{classes: make(map[string]*classMeta)}
}

func (a *PrototypeAnalyzer) registerType(id string, t reflect.Type) {
	meta := a.classes[id]
	if meta == nil {
		meta = &classMeta{}
		a.classes[id] = meta
	}
	meta.typ = t
}

func (a *PrototypeAnalyzer) registerConstructor(id string, ctor any) error {
	v := reflect.ValueOf(ctor)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("constructor for %q must be a function", id)
	}
	meta := a.classes[id]
	if meta == nil {
		meta = &classMeta{}
		a.classes[id] = meta
	}
	meta.constructor = v
	return nil
}

func (a *PrototypeAnalyzer) registerMethodInjection(id string, methodName string) {
	meta := a.classes[id]
	if meta == nil {
		meta = &classMeta{}
		a.classes[id] = meta
	}
	meta.methods = append(meta.methods, methodName)
}

// Analyze produces the ServicePrototype for classID. Fails with
// AnalysisError when the class id is unknown, per spec section 4.2.
func (a *PrototypeAnalyzer) Analyze(classID string) (*ServicePrototype, error) {
	meta, ok := a.classes[classID]
	if !ok || meta.typ == nil {
		return nil, newKernelError(AnalysisError, classID, fmt.Errorf("unknown class id"))
	}

	t := meta.typ
	structType := t
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	proto := &ServicePrototype{
		ClassID:        classID,
		Type:           t,
		IsInstantiable: structType.Kind() == reflect.Struct,
	}

	if meta.constructor.IsValid() {
		ctorProto, err := analyzeConstructor(meta.constructor.Type())
		if err != nil {
			return nil, newKernelError(AnalysisError, classID, err)
		}
		proto.Constructor = ctorProto
	}

	if structType.Kind() == reflect.Struct {
		props, err := analyzeProperties(structType)
		if err != nil {
			return nil, err
		}
		proto.InjectedProperties = props
	}

	for _, name := range meta.methods {
		method, ok := structType.MethodByName(name)
		if !ok && t.Kind() == reflect.Ptr {
			method, ok = t.MethodByName(name)
		}
		if !ok {
			return nil, newKernelError(AnalysisError, classID, fmt.Errorf("method %q not found", name))
		}
		mp, err := analyzeMethod(method)
		if err != nil {
			return nil, newKernelError(AnalysisError, classID, err)
		}
		proto.InjectedMethods = append(proto.InjectedMethods, *mp)
	}

	return proto, nil
}

// analyzeConstructor builds a MethodPrototype from a constructor
// function's signature. Go reflection does not preserve parameter
// names, so parameters are named positionally (arg0, arg1, …); overrides
// keyed by parameter name must use these synthetic names for constructor
// parameters.
func analyzeConstructor(ft reflect.Type) (*MethodPrototype, error) {
	params := make([]ParameterPrototype, 0, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		params = append(params, parameterFromType(fmt.Sprintf("arg%d", i), pt, i == ft.NumIn()-1 && ft.IsVariadic()))
	}
	return &MethodPrototype{Name: "constructor", Parameters: params}, nil
}

func analyzeMethod(m reflect.Method) (*MethodPrototype, error) {
	ft := m.Func.Type()
	// Skip the receiver (argument 0).
	params := make([]ParameterPrototype, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		params = append(params, parameterFromType(fmt.Sprintf("arg%d", i-1), pt, i == ft.NumIn()-1 && ft.IsVariadic()))
	}
	return &MethodPrototype{Name: m.Name, Parameters: params}, nil
}

// parameterFromType implements the union-type selection rule from spec
// section 4.2: choose the first non-builtin class/interface id; if the
// type is a builtin/scalar, Type is left nil.
func parameterFromType(name string, t reflect.Type, variadic bool) ParameterPrototype {
	elem := t
	if variadic {
		elem = t.Elem()
	}
	p := ParameterPrototype{
		Name:       name,
		Variadic:   variadic,
		IsRequired: true,
		AllowsNull: elem.Kind() == reflect.Ptr || elem.Kind() == reflect.Interface,
	}
	if isBuiltinKind(elem.Kind()) {
		p.Type = nil
	} else {
		p.Type = elem
	}
	if variadic {
		p.ElemType = elem
		p.TagHint = elem.Name()
	}
	return p
}

func isBuiltinKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Slice, reflect.Map, reflect.Array:
		return true
	default:
		return false
	}
}

// analyzeProperties walks a struct type's fields, building a
// PropertyPrototype for each one tagged `kernel:"inject"`. A property is
// injectable only when it carries the marker; unexported (readonly, in
// Go terms immutable-from-outside) fields are never injectable —
// requesting injection on one is fatal (InvalidInjectionPoint), raised
// lazily when the Instantiator actually tries to set it.
func analyzeProperties(structType reflect.Type) ([]PropertyPrototype, error) {
	var props []PropertyPrototype
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		tagValue, ok := field.Tag.Lookup(injectTag)
		if !ok {
			continue
		}

		opts := strings.Split(tagValue, ",")
		required := true
		for _, opt := range opts[1:] {
			if opt == "optional" {
				required = false
			}
		}

		readonly := field.PkgPath != "" // unexported field

		props = append(props, PropertyPrototype{
			Name:       field.Name,
			Type:       field.Type,
			AllowsNull: field.Type.Kind() == reflect.Ptr || field.Type.Kind() == reflect.Interface,
			IsRequired: required,
			Readonly:   readonly,
			FieldIndex: i,
		})
	}
	return props, nil
}
