package container

import (
	"fmt"
	"time"
)

// Engine runs the resolution pipeline described in spec section 4.5:
//
//	ContextualLookup -> DefinitionLookup -> Autowire -> Evaluate -> Instantiate -> Success
//
// with a circular-dependency guard and a depth cap checked before each
// node, and a lifecycle strategy wrapping the Evaluate/Instantiate stages
// so a cached instance short-circuits them entirely. Grounded on the
// teacher's di.go ResolveWithContext, restructured from one monolithic
// function into named stages so each one can be traced and timed
// independently.
type Engine struct {
	store        *DefinitionStore
	analyzer     *PrototypeAnalyzer
	protoCache   *PrototypeCache
	resolver     *DependencyResolver
	instantiator *Instantiator

	singleton *singletonStrategy
	scoped    *scopedStrategy
	transient *transientStrategy

	telemetry *StepTelemetry
	logger    Logger
	options   EngineOptions

	container *Container // back-reference, set once by NewContainer
}

func newEngine(store *DefinitionStore, opts EngineOptions, logger Logger) *Engine {
	e := &Engine{
		store:      store,
		analyzer:   NewPrototypeAnalyzer(),
		protoCache: NewPrototypeCache(),
		singleton:  newSingletonStrategy(),
		scoped:     newScopedStrategy(),
		transient:  newTransientStrategy(),
		telemetry:  NewStepTelemetry(),
		logger:     logger,
		options:    opts,
	}
	e.resolver = newDependencyResolver(store, e)
	e.instantiator = newInstantiator(e.resolver, e.analyzer)
	return e
}

// bind attaches the owning Container, so Evaluate can pass it to
// FactoryConcrete callables. Must run before any resolution.
func (e *Engine) bind(c *Container) {
	e.container = c
}

// Resolve runs the full pipeline for id as the root of a new resolution
// call (a fresh traceId), used by Container.Get/Make.
func (e *Engine) Resolve(id string, overrides map[string]any, scope *Scope) (any, *ResolutionTrace, error) {
	if e.container == nil {
		return nil, nil, newKernelError(ContainerNotInitialised, id, fmt.Errorf("engine used before binding to a container"))
	}
	ctx := newRootContext(id, overrides, scope)
	v, err := e.resolveNode(ctx, id)
	return v, ctx.trace, err
}

// resolveChild is the entry point DependencyResolver uses to resolve one
// dependency of whatever is currently being built, extending ctx's chain.
// The child inherits ctx's trace, so every stage recorded for it lands in
// the same ResolutionTrace the root caller receives.
func (e *Engine) resolveChild(parent *KernelContext, id string, overrides map[string]any) (any, error) {
	child := parent.child(id, overrides)
	return e.resolveNode(child, id)
}

// resolveNode is the actual pipeline: guard checks, then each named stage
// in order, recording a TraceStep per stage into ctx.trace — shared by
// every node of the resolution call, root or child alike.
func (e *Engine) resolveNode(ctx *KernelContext, id string) (any, error) {
	trace := ctx.trace
	if ctx.depth > 0 && ctx.inChainExceptLast(id) {
		return nil, newKernelError(CircularDependencyError, id, fmt.Errorf("circular dependency detected")).withChain(ctx.Chain()).withTrace(trace.String())
	}

	maxDepth := e.options.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	if ctx.depth > maxDepth {
		return nil, newKernelError(ResolutionDepthExceeded, id, fmt.Errorf("resolution depth %d exceeds max %d", ctx.depth, maxDepth)).withChain(ctx.Chain()).withTrace(trace.String())
	}

	def, lifetime := e.definitionLookup(ctx, id, trace)
	strategy := e.strategyFor(lifetime)

	build := func() (any, error) {
		concrete, err := e.evaluateStage(ctx, id, def, trace)
		if err != nil {
			return nil, err
		}
		value, err := e.timedEvaluate(ctx, concrete, trace)
		if err != nil {
			return nil, err
		}
		return e.applyExtenders(ctx, id, value)
	}

	value, hit, err := e.timedResolve(strategy, id, ctx, build, trace)
	if err != nil {
		return nil, err
	}

	if hit {
		trace.record(TraceStep{ServiceID: id, Stage: "LifecycleLookup", Outcome: "hit"})
	}
	trace.record(TraceStep{ServiceID: id, Stage: "Success", Outcome: "built"})
	return value, nil
}

// definitionLookup implements the DefinitionLookup stage: a plain
// definition registered for id wins outright; if none exists, id falls
// back to Transient lifetime and the Autowire stage decides whether a
// registered class can stand in for it. Records a DefinitionLookup
// TraceStep either way, per spec section 4.5's "each stage records an
// entry."
func (e *Engine) definitionLookup(ctx *KernelContext, id string, trace *ResolutionTrace) (*ServiceDefinition, Lifetime) {
	if def, ok := e.store.Get(id); ok {
		trace.record(TraceStep{ServiceID: id, Stage: "DefinitionLookup", Outcome: "hit"})
		return def, def.Lifetime
	}
	trace.record(TraceStep{ServiceID: id, Stage: "DefinitionLookup", Outcome: "miss"})
	return nil, Transient
}

// strategyFor returns the LifecycleStrategy for lt. It never returns nil:
// an id with no definition arrives here as Transient.
func (e *Engine) strategyFor(lt Lifetime) LifecycleStrategy {
	return strategyFor(lt, e.singleton, e.scoped, e.transient)
}

// timedResolve runs strategy.Resolve, timing the whole call (a hit
// returns immediately; a miss also times the build it triggers) under the
// "LifecycleLookup" telemetry stage.
func (e *Engine) timedResolve(strategy LifecycleStrategy, id string, ctx *KernelContext, build func() (any, error), trace *ResolutionTrace) (any, bool, error) {
	start := time.Now()
	v, hit, err := strategy.Resolve(id, ctx, build)
	e.telemetry.Observe("LifecycleLookup", time.Since(start))
	return v, hit, err
}

// evaluateStage implements Autowire: when no definition is registered,
// fall back to treating id as a class id directly (spec section 4.3's
// "the dependency names a registered class with no explicit definition").
func (e *Engine) evaluateStage(ctx *KernelContext, id string, def *ServiceDefinition, trace *ResolutionTrace) (Concrete, error) {
	if def != nil {
		return def.effectiveConcrete(), nil
	}
	if _, ok := e.store.LookupType(id); ok {
		trace.record(TraceStep{ServiceID: id, Stage: "Autowire", Outcome: "matched"})
		return Class(id), nil
	}
	return Concrete{}, newKernelError(ServiceNotFound, id, fmt.Errorf("no definition or registered class for %q", id)).withChain(ctx.Chain()).withTrace(trace.String())
}

func (e *Engine) timedEvaluate(ctx *KernelContext, concrete Concrete, trace *ResolutionTrace) (any, error) {
	start := time.Now()
	v, err := e.evaluateConcrete(ctx, concrete)
	elapsed := time.Since(start)
	e.telemetry.Observe("Evaluate", elapsed)
	outcome := "built"
	if err != nil {
		outcome = "error"
	}
	trace.record(TraceStep{ServiceID: ctx.consumer, Stage: "Evaluate", Outcome: outcome, Duration: elapsed})
	return v, err
}

// evaluateConcrete dispatches on the Concrete's kind, running Instantiate
// for ClassConcrete values.
func (e *Engine) evaluateConcrete(ctx *KernelContext, concrete Concrete) (any, error) {
	switch concrete.Kind {
	case InstanceConcrete, LiteralConcrete:
		return concrete.Value, nil
	case FactoryConcrete:
		if concrete.Factory == nil {
			return nil, newKernelError(InvalidDefinition, ctx.consumer, fmt.Errorf("factory concrete has no callable")).withChain(ctx.Chain())
		}
		return concrete.Factory(e.container, ctx.overrides)
	case ClassConcrete:
		if concrete.ClassID != ctx.consumer {
			return e.resolveChild(ctx, concrete.ClassID, nil)
		}
		return e.instantiate(ctx, concrete.ClassID)
	default:
		return nil, newKernelError(InvalidDefinition, ctx.consumer, fmt.Errorf("unknown concrete kind %d", concrete.Kind)).withChain(ctx.Chain())
	}
}

// instantiate runs the Analyze -> Build sequence for a class id,
// consulting the prototype cache first.
func (e *Engine) instantiate(ctx *KernelContext, classID string) (any, error) {
	proto, ok := e.protoCache.Get(classID)
	if !ok {
		var err error
		proto, err = e.analyzer.Analyze(classID)
		if err != nil {
			return nil, err.(*KernelError).withChain(ctx.Chain())
		}
		e.protoCache.Store(classID, proto)
	}

	def, _ := e.store.Get(ctx.consumer)
	return e.instantiator.Build(ctx, def, proto)
}

// applyExtenders runs every registered extender for id, in registration
// order, over value, returning the (possibly replaced) final instance.
func (e *Engine) applyExtenders(ctx *KernelContext, id string, value any) (any, error) {
	extenders := e.store.Extenders(id)
	for _, ext := range extenders {
		next, err := ext(value, e.container)
		if err != nil {
			return nil, newKernelError(UnresolvableDependency, id, fmt.Errorf("extender failed: %w", err)).withChain(ctx.Chain())
		}
		value = next
	}
	return value, nil
}
