package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "definitions.yaml")
	yamlContent := `
definitions:
  - abstract: widget
    class: widget
    lifetime: singleton
    tags: [widgets]
  - abstract: greeting
    literal: "hello"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "widget", defs[0].Abstract)
	assert.Equal(t, Singleton, defs[0].Lifetime)
	assert.Equal(t, []string{"widgets"}, defs[0].Tags)

	assert.Equal(t, LiteralConcrete, defs[1].Concrete.Kind)
	assert.Equal(t, "hello", defs[1].Concrete.Value)
}

func TestApplyManifest(t *testing.T) {
	c := NewContainer()
	defs := []*ServiceDefinition{
		{Abstract: "greeting", Concrete: Literal("hi"), Lifetime: Singleton, Tags: []string{"greetings"}},
	}
	require.NoError(t, ApplyManifest(c, defs))

	v, err := c.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	tagged, err := c.Tagged("greetings")
	require.NoError(t, err)
	assert.Equal(t, []any{"hi"}, tagged)
}
