package container

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// prototypeDigest is the on-disk, serialisable shadow of a ServicePrototype.
// reflect.Type cannot round-trip through JSON, so the digest exists purely
// to detect drift between a previous run's analysis and the types
// registered in this run — not to reconstruct a prototype from disk.
type prototypeDigest struct {
	ClassID        string   `json:"classId"`
	IsInstantiable bool     `json:"isInstantiable"`
	Properties     []string `json:"properties"` // "Name:Type" pairs, declaration order
	Methods        []string `json:"methods"`
}

func digestOf(p *ServicePrototype) prototypeDigest {
	d := prototypeDigest{
		ClassID:        p.ClassID,
		IsInstantiable: p.IsInstantiable,
	}
	for _, prop := range p.InjectedProperties {
		d.Properties = append(d.Properties, fmt.Sprintf("%s:%s", prop.Name, prop.Type))
	}
	for _, m := range p.InjectedMethods {
		d.Methods = append(d.Methods, m.Name)
	}
	return d
}

func (d prototypeDigest) equal(other prototypeDigest) bool {
	if d.ClassID != other.ClassID || d.IsInstantiable != other.IsInstantiable {
		return false
	}
	if len(d.Properties) != len(other.Properties) || len(d.Methods) != len(other.Methods) {
		return false
	}
	for i := range d.Properties {
		if d.Properties[i] != other.Properties[i] {
			return false
		}
	}
	for i := range d.Methods {
		if d.Methods[i] != other.Methods[i] {
			return false
		}
	}
	return true
}

// PrototypeCache holds analyzed prototypes for the container's lifetime, per
// spec section 4.2: "the prototype for a class id is built at most once".
// It optionally persists a digest of what it has seen to disk, atomically,
// so a subsequent process can detect that a class's injection shape
// changed since the digest was last written.
type PrototypeCache struct {
	mu      sync.RWMutex
	entries map[string]*ServicePrototype
	digests map[string]prototypeDigest
	dirty   bool
}

// NewPrototypeCache creates an empty cache.
func NewPrototypeCache() *PrototypeCache {
	return &PrototypeCache{
		entries: make(map[string]*ServicePrototype),
		digests: make(map[string]prototypeDigest),
	}
}

// Get returns the cached prototype for classID, if analysis already ran.
func (c *PrototypeCache) Get(classID string) (*ServicePrototype, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[classID]
	return p, ok
}

// Store records proto as the result of analyzing classID, and returns
// false if a previously loaded digest for classID disagrees with it —
// signalling that the type's injection shape drifted since the cache
// file was last written.
func (c *PrototypeCache) Store(classID string, proto *ServicePrototype) (matchesDigest bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[classID] = proto
	newDigest := digestOf(proto)
	matchesDigest = true
	if prior, ok := c.digests[classID]; ok {
		matchesDigest = prior.equal(newDigest)
	}
	c.digests[classID] = newDigest
	c.dirty = true
	return matchesDigest
}

// Clear drops every cached prototype and digest.
func (c *PrototypeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*ServicePrototype)
	c.digests = make(map[string]prototypeDigest)
	c.dirty = false
}

// Load reads a previously persisted digest file into the cache. A missing
// file is not an error: the cache simply starts cold. A malformed file is
// reported, per spec section 6's requirement that config/cache errors
// surface at startup rather than corrupt silently.
func (c *PrototypeCache) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read prototype cache %q: %w", path, err)
	}

	var digests map[string]prototypeDigest
	if err := json.Unmarshal(data, &digests); err != nil {
		return fmt.Errorf("decode prototype cache %q: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.digests = digests
	return nil
}

// Persist writes the current digests to path using a write-to-temp,
// rename-into-place sequence so a crash mid-write never leaves a
// corrupted cache file behind.
func (c *PrototypeCache) Persist(path string) error {
	c.mu.RLock()
	digests := make(map[string]prototypeDigest, len(c.digests))
	for k, v := range c.digests {
		digests[k] = v
	}
	dirty := c.dirty
	c.mu.RUnlock()

	if !dirty {
		return nil
	}

	data, err := json.MarshalIndent(digests, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prototype cache: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".prototype-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp prototype cache: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp prototype cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp prototype cache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename prototype cache into place: %w", err)
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}
