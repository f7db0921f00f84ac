package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var definitionValidator = validator.New()

// contextualKey is the (consumer, needs) pair a contextual rule overrides,
// per spec section 3's "Contextual rule" data model entry.
type contextualKey struct {
	consumer string
	needs    string
}

// Extender is a post-construction hook: (instance, container) -> instance.
// Returning a different object replaces the instance, per spec section 3.
type ExtenderFunc func(instance any, c *Container) (any, error)

// DefinitionStore is the registry of definitions, contextual overrides,
// tags, and extenders described in spec section 4.1. It is not
// thread-safe for writes: registration must complete before the
// container is published to concurrent readers (spec section 5).
type DefinitionStore struct {
	mu          sync.RWMutex
	definitions map[string]*ServiceDefinition
	contextual  map[contextualKey]Concrete
	tags        map[string][]string // tag -> abstracts, insertion order
	extenders   map[string][]ExtenderFunc
	classes     *classRegistry
}

// NewDefinitionStore creates an empty store.
func NewDefinitionStore() *DefinitionStore {
	return &DefinitionStore{
		definitions: make(map[string]*ServiceDefinition),
		contextual:  make(map[contextualKey]Concrete),
		tags:        make(map[string][]string),
		extenders:   make(map[string][]ExtenderFunc),
		classes:     newClassRegistry(),
	}
}

// Add inserts or replaces the definition for def.Abstract. Re-registration
// replaces any prior entry for the same abstract, per spec section 3's
// invariant.
func (s *DefinitionStore) Add(def *ServiceDefinition) error {
	if def == nil {
		return newKernelError(InvalidDefinition, "", fmt.Errorf("definition cannot be nil"))
	}
	if def.Abstract == "" {
		return newKernelError(InvalidDefinition, "", fmt.Errorf("abstract id cannot be empty"))
	}
	if err := definitionValidator.Struct(def); err != nil {
		return newKernelError(InvalidDefinition, def.Abstract, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[def.Abstract] = def
	return nil
}

// Get returns the definition registered for id, or (nil, false).
func (s *DefinitionStore) Get(id string) (*ServiceDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.definitions[id]
	return def, ok
}

// Has reports whether a definition is registered for id.
func (s *DefinitionStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.definitions[id]
	return ok
}

// All returns every registered definition.
func (s *DefinitionStore) All() []*ServiceDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ServiceDefinition, 0, len(s.definitions))
	for _, def := range s.definitions {
		out = append(out, def)
	}
	return out
}

// Clear removes every definition, contextual rule, tag, and extender.
func (s *DefinitionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions = make(map[string]*ServiceDefinition)
	s.contextual = make(map[contextualKey]Concrete)
	s.tags = make(map[string][]string)
	s.extenders = make(map[string][]ExtenderFunc)
}

// AddContextual registers a contextual rule: when consumer needs id
// `needs`, give it `give` instead of whatever global binding exists.
func (s *DefinitionStore) AddContextual(consumer, needs string, give Concrete) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contextual[contextualKey{consumer: consumer, needs: needs}] = give
}

// GetContextualMatch returns the contextual rule for (consumer, needs), if
// any. Per the open-question resolution in SPEC_FULL.md section 9(a),
// matching is exact-only: no wildcard consumer patterns are implemented.
func (s *DefinitionStore) GetContextualMatch(consumer, needs string) (Concrete, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	give, ok := s.contextual[contextualKey{consumer: consumer, needs: needs}]
	return give, ok
}

// AddTags associates id with one or more tags, preserving insertion order
// within each tag's list.
func (s *DefinitionStore) AddTags(id string, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		s.tags[tag] = append(s.tags[tag], id)
	}
}

// Tagged returns the abstracts registered under tag, in insertion order.
func (s *DefinitionStore) Tagged(tag string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.tags[tag]))
	copy(out, s.tags[tag])
	return out
}

// AddExtender appends fn to the ordered extender list for id.
func (s *DefinitionStore) AddExtender(id string, fn ExtenderFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extenders[id] = append(s.extenders[id], fn)
}

// Extenders returns the ordered extender list registered for id.
func (s *DefinitionStore) Extenders(id string) []ExtenderFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ExtenderFunc, len(s.extenders[id]))
	copy(out, s.extenders[id])
	return out
}

// RegisterType records the reflect.Type backing a class id, so the
// Autowire stage and the PrototypeAnalyzer can find it by name.
func (s *DefinitionStore) RegisterType(id string, t reflect.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes.register(id, t)
}

// LookupType returns the reflect.Type registered for a class id.
func (s *DefinitionStore) LookupType(id string) (reflect.Type, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes.lookup(id)
}
