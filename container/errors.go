package container

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the error taxonomy members a caller can match on
// with errors.Is, without depending on the wrapped message text.
type Kind int

const (
	// ServiceNotFound means no definition, no class, and no contextual
	// match could satisfy the requested service id.
	ServiceNotFound Kind = iota
	// UnresolvableDependency means a required parameter or property could
	// not be satisfied by any resolution step.
	UnresolvableDependency
	// CircularDependencyError means the candidate id is already present on
	// the parent chain of the current KernelContext.
	CircularDependencyError
	// ResolutionDepthExceeded means the configured depth cap was hit.
	ResolutionDepthExceeded
	// NotInstantiable means the prototype marks the type as non-instantiable.
	NotInstantiable
	// InvalidInjectionPoint means injection was requested on a readonly or
	// immutable target.
	InvalidInjectionPoint
	// InvalidContextualBinding means Give was called before Needs.
	InvalidContextualBinding
	// InvalidDefinition means a definition was empty, malformed, or carries
	// contradictory configuration.
	InvalidDefinition
	// AnalysisError means type metadata was unavailable to the analyzer.
	AnalysisError
	// ContainerNotInitialised means the engine ran before the container
	// back-reference was set.
	ContainerNotInitialised
	// LifecycleMisuse means a scope was ended twice or used while inactive.
	LifecycleMisuse
	// ResolutionTimeout means a configured wall-clock deadline elapsed.
	ResolutionTimeout
)

func (k Kind) String() string {
	switch k {
	case ServiceNotFound:
		return "ServiceNotFound"
	case UnresolvableDependency:
		return "UnresolvableDependency"
	case CircularDependencyError:
		return "CircularDependencyError"
	case ResolutionDepthExceeded:
		return "ResolutionDepthExceeded"
	case NotInstantiable:
		return "NotInstantiable"
	case InvalidInjectionPoint:
		return "InvalidInjectionPoint"
	case InvalidContextualBinding:
		return "InvalidContextualBinding"
	case InvalidDefinition:
		return "InvalidDefinition"
	case AnalysisError:
		return "AnalysisError"
	case ContainerNotInitialised:
		return "ContainerNotInitialised"
	case LifecycleMisuse:
		return "LifecycleMisuse"
	case ResolutionTimeout:
		return "ResolutionTimeout"
	default:
		return "Unknown"
	}
}

// KernelError is the single error type the container returns to callers.
// It carries the failing service id, the ancestor chain that led to it,
// and (when available) the serialised resolution trace, per spec section
// 7's user-visible requirements. The Stage field is filled only through
// withStage, which no pipeline stage calls, so errors returned by the
// Engine leave it empty.
type KernelError struct {
	Kind      Kind
	ServiceID string
	Chain     []string
	Stage     string
	Trace     string
	Err       error
}

func (e *KernelError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.ServiceID)
	if len(e.Chain) > 0 {
		fmt.Fprintf(&b, " (chain: %s)", strings.Join(e.Chain, " -> "))
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " [stage=%s]", e.Stage)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, SomeKindSentinel) work by comparing Kind, so
// callers can test the taxonomy without matching message text.
func (e *KernelError) Is(target error) bool {
	var other *KernelError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newKernelError(kind Kind, serviceID string, err error) *KernelError {
	return &KernelError{Kind: kind, ServiceID: serviceID, Err: err}
}

// withChain returns a copy of e with the ancestor chain attached.
func (e *KernelError) withChain(chain []string) *KernelError {
	cp := *e
	cp.Chain = append([]string(nil), chain...)
	return &cp
}

// withStage returns a copy of e with the last pipeline stage attached.
func (e *KernelError) withStage(stage string) *KernelError {
	cp := *e
	cp.Stage = stage
	return &cp
}

// withTrace returns a copy of e with a serialised trace attached.
func (e *KernelError) withTrace(trace string) *KernelError {
	cp := *e
	cp.Trace = trace
	return &cp
}

// sentinels usable with errors.Is(err, container.ErrServiceNotFound)
var (
	ErrServiceNotFound          = &KernelError{Kind: ServiceNotFound}
	ErrUnresolvableDependency   = &KernelError{Kind: UnresolvableDependency}
	ErrCircularDependency       = &KernelError{Kind: CircularDependencyError}
	ErrResolutionDepthExceeded  = &KernelError{Kind: ResolutionDepthExceeded}
	ErrNotInstantiable          = &KernelError{Kind: NotInstantiable}
	ErrInvalidInjectionPoint    = &KernelError{Kind: InvalidInjectionPoint}
	ErrInvalidContextualBinding = &KernelError{Kind: InvalidContextualBinding}
	ErrInvalidDefinition        = &KernelError{Kind: InvalidDefinition}
	ErrAnalysisError            = &KernelError{Kind: AnalysisError}
	ErrContainerNotInitialised  = &KernelError{Kind: ContainerNotInitialised}
	ErrLifecycleMisuse          = &KernelError{Kind: LifecycleMisuse}
	ErrResolutionTimeout        = &KernelError{Kind: ResolutionTimeout}
)
