package container

import (
	"reflect"
)

// Lifetime controls how a resolved instance is cached across resolutions.
type Lifetime int

const (
	// Singleton caches one instance for the container's entire lifetime.
	Singleton Lifetime = iota
	// Scoped caches one instance per active Scope.
	Scoped
	// Transient never caches; every resolution builds a fresh instance.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// ConcreteKind tags which of the four cases a Concrete value holds, per
// the "dynamic string-keyed concretes" design note: a class id, a factory
// callable, a pre-built object, or any other literal value.
type ConcreteKind int

const (
	// ClassConcrete names a registered class id to instantiate via the
	// prototype analyzer and Instantiator.
	ClassConcrete ConcreteKind = iota
	// FactoryConcrete invokes a callable with (container, overrides).
	FactoryConcrete
	// InstanceConcrete is a pre-built object returned as-is.
	InstanceConcrete
	// LiteralConcrete is a scalar/string/number value returned as-is.
	LiteralConcrete
)

// Factory builds a service instance given the container and the
// per-resolution overrides supplied to Make.
type Factory func(c *Container, overrides map[string]any) (any, error)

// Concrete is the tagged variant evaluated by the Engine's Evaluate stage.
type Concrete struct {
	Kind    ConcreteKind
	ClassID string
	Factory Factory
	Value   any
}

// Class returns a Concrete naming a class id to be autowired.
func Class(classID string) Concrete {
	return Concrete{Kind: ClassConcrete, ClassID: classID}
}

// FromFactory returns a Concrete wrapping a factory callable.
func FromFactory(fn Factory) Concrete {
	return Concrete{Kind: FactoryConcrete, Factory: fn}
}

// Instance returns a Concrete wrapping a pre-built object.
func Instance(value any) Concrete {
	return Concrete{Kind: InstanceConcrete, Value: value}
}

// Literal returns a Concrete wrapping a scalar value (string, number, …).
func Literal(value any) Concrete {
	return Concrete{Kind: LiteralConcrete, Value: value}
}

// ServiceDefinition is an immutable blueprint for one abstract id. See
// spec section 3: re-registering the same Abstract replaces the prior
// definition; definitions are mutated only by the DefinitionStore, never
// during resolution.
type ServiceDefinition struct {
	Abstract  string         `validate:"required"`
	Concrete  Concrete       `validate:"-"`
	Lifetime  Lifetime       `validate:"min=0,max=2"`
	Tags      []string       `validate:"dive,required"`
	Arguments map[string]any `validate:"-"`
}

// effectiveConcrete reports the Concrete to evaluate: the one explicitly
// set on the definition, or (when none was set at all) a ClassConcrete
// naming the abstract itself. Concrete embeds a func field, so it cannot
// be compared with ==; "unset" is instead detected structurally.
func (d *ServiceDefinition) effectiveConcrete() Concrete {
	isUnset := d.Concrete.Kind == ClassConcrete &&
		d.Concrete.ClassID == "" &&
		d.Concrete.Factory == nil &&
		d.Concrete.Value == nil
	if isUnset {
		return Class(d.Abstract)
	}
	return d.Concrete
}

// classRegistry maps a class id to its registered reflect.Type, used by
// the Autowire stage. Populated by RegisterType.
type classRegistry struct {
	byID map[string]reflect.Type
}

func newClassRegistry() *classRegistry {
	return &classRegistry{byID: make(map[string]reflect.Type)}
}

func (r *classRegistry) register(id string, t reflect.Type) {
	r.byID[id] = t
}

func (r *classRegistry) lookup(id string) (reflect.Type, bool) {
	t, ok := r.byID[id]
	return t, ok
}
