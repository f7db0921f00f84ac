package container

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrototypeCache_StoreDetectsDigestDrift(t *testing.T) {
	c := NewPrototypeCache()

	proto := &ServicePrototype{ClassID: "widget", IsInstantiable: true}
	matches := c.Store("widget", proto)
	assert.True(t, matches, "first store has no prior digest to drift from")

	drifted := &ServicePrototype{
		ClassID:        "widget",
		IsInstantiable: true,
		InjectedProperties: []PropertyPrototype{
			{Name: "Extra", Type: nil},
		},
	}
	matches = c.Store("widget", drifted)
	assert.False(t, matches, "adding a property should be detected as drift")
}

func TestPrototypeCache_PersistAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prototypes.json")

	c1 := NewPrototypeCache()
	c1.Store("widget", &ServicePrototype{ClassID: "widget", IsInstantiable: true})
	require.NoError(t, c1.Persist(path))

	c2 := NewPrototypeCache()
	require.NoError(t, c2.Load(path))

	matches := c2.Store("widget", &ServicePrototype{ClassID: "widget", IsInstantiable: true})
	assert.True(t, matches)
}

func TestPrototypeCache_LoadMissingFileIsNotError(t *testing.T) {
	c := NewPrototypeCache()
	err := c.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
}
