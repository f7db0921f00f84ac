package container

import (
	"reflect"
)

// Container is the façade described in spec section 2: the single entry
// point applications use to register bindings and resolve services. It
// owns a DefinitionStore and an Engine, wiring them together and exposing
// the fluent registration DSL modelled on the Laravel-style
// bind/singleton/when().needs().give()/tag/extend API found in the
// reference container sketch, expressed in Go's idiom of chained builder
// methods returning concrete struct types instead of `self`.
type Container struct {
	store      *DefinitionStore
	engine     *Engine
	scopes     *ScopeRegistry
	metadata   *Metadata
	logger     Logger
	protoCache *PrototypeCache
}

// Option configures a Container at construction time.
type Option func(*containerConfig)

type containerConfig struct {
	options EngineOptions
	logger  Logger
}

// WithEngineOptions overrides the default EngineOptions.
func WithEngineOptions(opts EngineOptions) Option {
	return func(cfg *containerConfig) { cfg.options = opts }
}

// WithLogger overrides the container's default no-op Logger.
func WithLogger(l Logger) Option {
	return func(cfg *containerConfig) { cfg.logger = l }
}

// NewContainer creates an empty container ready for registration.
func NewContainer(opts ...Option) *Container {
	cfg := &containerConfig{
		options: DefaultEngineOptions(),
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := NewDefinitionStore()
	engine := newEngine(store, cfg.options, cfg.logger)

	c := &Container{
		store:      store,
		engine:     engine,
		scopes:     newScopeRegistry(),
		metadata:   NewMetadata(),
		logger:     cfg.logger,
		protoCache: engine.protoCache,
	}
	engine.bind(c)

	// The container resolves itself under the well-known id "container",
	// per SPEC_FULL.md's resolution of open question (d).
	_ = c.store.Add(&ServiceDefinition{Abstract: "container", Concrete: Instance(c), Lifetime: Singleton})

	if cfg.options.PrototypeCachePath != "" {
		if err := c.protoCache.Load(cfg.options.PrototypeCachePath); err != nil {
			c.logger.Warnw("failed to load prototype cache", "path", cfg.options.PrototypeCachePath, "error", err)
		}
	}

	return c
}

// PersistPrototypeCache writes the container's accumulated prototype
// digests to the path configured via EngineOptions.PrototypeCachePath, a
// no-op if none was configured.
func (c *Container) PersistPrototypeCache() error {
	if c.engine.options.PrototypeCachePath == "" {
		return nil
	}
	return c.protoCache.Persist(c.engine.options.PrototypeCachePath)
}

// RegisterType associates a Go type with a class id, so Bind/Singleton
// calls naming that id as their concrete can be autowired via reflection.
// classID defaults to t's type name when called through RegisterStruct.
func (c *Container) RegisterType(classID string, t reflect.Type) *Container {
	c.store.RegisterType(classID, t)
	c.engine.analyzer.registerType(classID, t)
	return c
}

// RegisterStruct is a convenience wrapper around RegisterType that derives
// the class id from the type's own name, the common case for autowired
// services (spec section 8's "simple singleton" and "autowire chain"
// scenarios).
func RegisterStruct[T any](c *Container) *Container {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return c.RegisterType(t.Name(), reflect.PointerTo(t))
}

// RegisterConstructor associates classID with a constructor function.
// ctor's parameters become the class's Constructor prototype; its result
// becomes the produced instance. ctor must return either T or (T, error).
func (c *Container) RegisterConstructor(classID string, ctor any) error {
	return c.engine.analyzer.registerConstructor(classID, ctor)
}

// RegisterMethodInjection marks methodName on classID as an injectable
// method, invoked after property injection with its parameters resolved
// the same way constructor parameters are.
func (c *Container) RegisterMethodInjection(classID string, methodName string) *Container {
	c.engine.analyzer.registerMethodInjection(classID, methodName)
	return c
}

// Bind registers a Transient-lifetime definition for abstract -> concrete.
func (c *Container) Bind(abstract string, concrete Concrete) error {
	return c.store.Add(&ServiceDefinition{Abstract: abstract, Concrete: concrete, Lifetime: Transient})
}

// SingletonBind registers a Singleton-lifetime definition.
func (c *Container) SingletonBind(abstract string, concrete Concrete) error {
	return c.store.Add(&ServiceDefinition{Abstract: abstract, Concrete: concrete, Lifetime: Singleton})
}

// ScopedBind registers a Scoped-lifetime definition.
func (c *Container) ScopedBind(abstract string, concrete Concrete) error {
	return c.store.Add(&ServiceDefinition{Abstract: abstract, Concrete: concrete, Lifetime: Scoped})
}

// InstanceBind registers a pre-built object as a Singleton.
func (c *Container) InstanceBind(abstract string, value any) error {
	return c.store.Add(&ServiceDefinition{Abstract: abstract, Concrete: Instance(value), Lifetime: Singleton})
}

// Tag associates abstract with one or more tags.
func (c *Container) Tag(abstract string, tags ...string) {
	c.store.AddTags(abstract, tags...)
}

// Tagged resolves every abstract registered under tag, in registration
// order, per spec section 4's tag-based resolution requirement.
func (c *Container) Tagged(tag string) ([]any, error) {
	ids := c.store.Tagged(tag)
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		v, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Extend appends an extender for abstract, run once per freshly built
// instance, after Instantiate and before the lifecycle cache stores it.
func (c *Container) Extend(abstract string, fn ExtenderFunc) {
	c.store.AddExtender(abstract, fn)
}

// ContextualBuilder implements the when(consumer).needs(abstract).give(x)
// chain from spec section 2's contextual-binding DSL.
type ContextualBuilder struct {
	c        *Container
	consumer string
	needs    string
}

// When starts a contextual binding for the given consumer id.
func (c *Container) When(consumer string) *ContextualBuilder {
	return &ContextualBuilder{c: c, consumer: consumer}
}

// Needs names the dependency the consumer needs overridden.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// Give completes the rule: when b.consumer needs b.needs, supply give
// instead of whatever b.needs otherwise resolves to. Calling Give before
// Needs is an InvalidContextualBinding error.
func (b *ContextualBuilder) Give(give Concrete) error {
	if b.needs == "" {
		return newKernelError(InvalidContextualBinding, b.consumer, errNeedsBeforeGive)
	}
	b.c.store.AddContextual(b.consumer, b.needs, give)
	return nil
}

var errNeedsBeforeGive = containerError("Give called before Needs")

type containerError string

func (e containerError) Error() string { return string(e) }

// Has reports whether abstract has a registered definition or class.
func (c *Container) Has(abstract string) bool {
	if c.store.Has(abstract) {
		return true
	}
	_, ok := c.store.LookupType(abstract)
	return ok
}

// Get resolves abstract with no per-call overrides, outside any scope.
func (c *Container) Get(abstract string) (any, error) {
	v, _, err := c.engine.Resolve(abstract, nil, nil)
	return v, err
}

// Make resolves abstract with per-call overrides, outside any scope.
func (c *Container) Make(abstract string, overrides map[string]any) (any, error) {
	v, _, err := c.engine.Resolve(abstract, overrides, nil)
	return v, err
}

// GetScoped resolves abstract within the given Scope, so Scoped-lifetime
// definitions reuse that scope's cached instance.
func (c *Container) GetScoped(abstract string, scope *Scope, overrides map[string]any) (any, error) {
	v, _, err := c.engine.Resolve(abstract, overrides, scope)
	return v, err
}

// BeginScope starts a new Scope, active until EndScope is called with it.
func (c *Container) BeginScope() *Scope {
	return c.scopes.begin()
}

// EndScope ends scope, releasing every Scoped-lifetime instance it cached.
func (c *Container) EndScope(scope *Scope) error {
	return c.scopes.end(scope)
}

// Metadata returns the container-level metadata bag (distinct from the
// per-resolution KernelContext metadata).
func (c *Container) Metadata() *Metadata {
	return c.metadata
}

// Trace resolves abstract and returns the ResolutionTrace alongside the
// value, for diagnostics and the CLI lint tool.
func (c *Container) Trace(abstract string) (any, *ResolutionTrace, error) {
	return c.engine.Resolve(abstract, nil, nil)
}
