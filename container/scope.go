package container

import (
	"fmt"
	"sync"

	"github.com/rs/xid"
)

// Scope is a request- or job-scoped resolution boundary, per spec section
// 4.6: Scoped-lifetime instances are cached once per active Scope and
// discarded when it ends. Grounded on the teacher's request_container.go,
// generalised from one hardcoded "request" concept to any caller-defined
// scope (HTTP request, queue job, CLI invocation, test case).
type Scope struct {
	mu        sync.Mutex
	id        string
	instances map[string]any
	ended     bool
}

// newScope creates a fresh, active scope with its own id.
func newScope() *Scope {
	return &Scope{
		id:        xid.New().String(),
		instances: make(map[string]any),
	}
}

// ID returns this scope's unique id.
func (s *Scope) ID() string { return s.id }

func (s *Scope) get(id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.instances[id]
	return v, ok
}

func (s *Scope) set(id string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[id] = value
}

// End releases every scoped instance this scope cached. Calling End twice
// is a LifecycleMisuse error, per spec section 4.6's invariant that a
// scope transitions active -> ended exactly once.
func (s *Scope) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return newKernelError(LifecycleMisuse, s.id, fmt.Errorf("scope already ended"))
	}
	s.ended = true
	s.instances = nil
	return nil
}

func (s *Scope) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// ScopeRegistry tracks every scope a Container has begun and not yet
// ended; EndScope removes a scope from it.
type ScopeRegistry struct {
	mu     sync.Mutex
	active map[string]*Scope
}

func newScopeRegistry() *ScopeRegistry {
	return &ScopeRegistry{active: make(map[string]*Scope)}
}

func (r *ScopeRegistry) begin() *Scope {
	s := newScope()
	r.mu.Lock()
	r.active[s.id] = s
	r.mu.Unlock()
	return s
}

func (r *ScopeRegistry) end(s *Scope) error {
	if err := s.End(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.active, s.id)
	r.mu.Unlock()
	return nil
}

func (r *ScopeRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
