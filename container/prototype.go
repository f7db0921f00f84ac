package container

import "reflect"

// ParameterPrototype describes one parameter of a registered constructor
// function or injectable method, per spec section 3, in signature order.
// Go reflection does not keep parameter names, so Name is positional
// (arg0, arg1, …). kernel:"inject"-tagged struct fields are described by
// PropertyPrototype instead.
type ParameterPrototype struct {
	Name         string
	Type         reflect.Type // nil if scalar/mixed, per union-type selection rule
	HasDefault   bool
	DefaultValue any
	AllowsNull   bool
	IsRequired   bool
	Variadic     bool
	ElemType     reflect.Type // element type for a Variadic parameter, always concrete (even builtin)
	TagHint      string       // tag used for variadic-by-tag collection
}

// PropertyPrototype describes one injectable struct field.
type PropertyPrototype struct {
	Name       string
	Type       reflect.Type
	AllowsNull bool
	IsRequired bool
	HasDefault bool
	Readonly   bool // never injectable; requesting injection is fatal
	FieldIndex int
}

// MethodPrototype describes one injectable method and its parameters.
// It describes either the registered constructor function (Name
// "constructor") or a method named via RegisterMethodInjection, which the
// Instantiator looks up by name on the built value and invokes once,
// after property injection.
type MethodPrototype struct {
	Name       string
	Parameters []ParameterPrototype
}

// ServicePrototype is the cached, reusable injection plan for one type.
// Prototypes are immutable once built: equal class id implies equal
// prototype, and a prototype must be regeneratable purely from type
// metadata (spec section 3).
type ServicePrototype struct {
	ClassID            string
	Type               reflect.Type
	IsInstantiable     bool
	Constructor        *MethodPrototype
	InjectedProperties []PropertyPrototype
	InjectedMethods    []MethodPrototype
}

// Equal reports whether two prototypes have the same class id,
// instantiability, injected properties (name, type and readonly flag, in
// order) and number of injected methods. The constructor and the names
// and parameters of injected methods are not compared. Used by the
// round-trip law in spec section 8: analyze(C) twice yields equal
// prototypes.
func (p *ServicePrototype) Equal(other *ServicePrototype) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.ClassID != other.ClassID || p.IsInstantiable != other.IsInstantiable {
		return false
	}
	if len(p.InjectedProperties) != len(other.InjectedProperties) {
		return false
	}
	for i := range p.InjectedProperties {
		a, b := p.InjectedProperties[i], other.InjectedProperties[i]
		if a.Name != b.Name || a.Type != b.Type || a.Readonly != b.Readonly {
			return false
		}
	}
	if len(p.InjectedMethods) != len(other.InjectedMethods) {
		return false
	}
	return true
}
