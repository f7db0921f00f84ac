package container

import (
	"github.com/google/uuid"
	"github.com/rs/xid"
)

// KernelContext threads through one resolution call, carrying the ancestor
// chain used for circular-dependency detection, the current consumer id
// used for contextual lookup, per-call overrides, and the two distinct
// identifiers spec section 3 calls for: a traceId shared by every
// KernelContext in one Make/Get call (so a ResolutionTrace can be
// assembled afterwards), and an id unique to this particular node of the
// chain (so two sibling resolutions of the same abstract within one trace
// are still distinguishable).
type KernelContext struct {
	parent    *KernelContext
	traceID   string
	id        string
	consumer  string
	chain     []string
	depth     int
	overrides map[string]any
	metadata  *Metadata
	scope     *Scope
	trace     *ResolutionTrace
}

// newRootContext starts a fresh resolution, generating a new traceId and
// the ResolutionTrace every descendant context shares, so a stage
// recorded from any depth of the resolution chain lands in the one trace
// returned to the original caller.
func newRootContext(consumer string, overrides map[string]any, scope *Scope) *KernelContext {
	traceID := uuid.NewString()
	return &KernelContext{
		traceID:   traceID,
		id:        xid.New().String(),
		consumer:  consumer,
		chain:     []string{consumer},
		depth:     0,
		overrides: overrides,
		metadata:  NewMetadata(),
		scope:     scope,
		trace:     newResolutionTrace(traceID),
	}
}

// child derives a new context for resolving `needs` as a dependency of the
// current consumer, extending the chain and depth and inheriting the
// traceId, scope, and trace but generating a fresh per-node id.
func (k *KernelContext) child(needs string, overrides map[string]any) *KernelContext {
	chain := make([]string, len(k.chain), len(k.chain)+1)
	copy(chain, k.chain)
	chain = append(chain, needs)

	return &KernelContext{
		parent:    k,
		traceID:   k.traceID,
		id:        xid.New().String(),
		consumer:  needs,
		chain:     chain,
		depth:     k.depth + 1,
		overrides: overrides,
		metadata:  k.metadata,
		scope:     k.scope,
		trace:     k.trace,
	}
}

// inChain reports whether id already appears on the ancestor chain,
// signalling a circular dependency per spec section 4.3's cycle guard.
func (k *KernelContext) inChain(id string) bool {
	for _, ancestor := range k.chain {
		if ancestor == id {
			return true
		}
	}
	return false
}

// inChainExceptLast reports whether id appears anywhere on the ancestor
// chain before the current (last) node. The chain's final entry is always
// id itself (child appends it on the way in), so a plain inChain check
// would report every node as its own cycle; this skips that trivial match.
func (k *KernelContext) inChainExceptLast(id string) bool {
	if len(k.chain) == 0 {
		return false
	}
	for _, ancestor := range k.chain[:len(k.chain)-1] {
		if ancestor == id {
			return true
		}
	}
	return false
}

// override returns the per-call override value for name, if the caller
// supplied one via Make's overrides map.
func (k *KernelContext) override(name string) (any, bool) {
	if k.overrides == nil {
		return nil, false
	}
	v, ok := k.overrides[name]
	return v, ok
}

// TraceID returns the id shared by every node of this resolution call.
func (k *KernelContext) TraceID() string { return k.traceID }

// ID returns this context node's own unique id.
func (k *KernelContext) ID() string { return k.id }

// Chain returns a copy of the ancestor chain, consumer-first.
func (k *KernelContext) Chain() []string {
	out := make([]string, len(k.chain))
	copy(out, k.chain)
	return out
}

// Depth returns how many ancestors precede this node.
func (k *KernelContext) Depth() int { return k.depth }

// Metadata returns the metadata bag shared across this resolution call.
func (k *KernelContext) Metadata() *Metadata { return k.metadata }

// Trace returns the ResolutionTrace shared by every node of this
// resolution call, so any stage — however deep in the chain — can record
// into the one trace returned to the original caller.
func (k *KernelContext) Trace() *ResolutionTrace { return k.trace }
