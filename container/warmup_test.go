package container

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_WarmUpResolvesSingletons(t *testing.T) {
	c := NewContainer()
	c.RegisterType("widget", reflect.TypeOf(&widget{}))
	require.NoError(t, c.SingletonBind("widget", Class("widget")))

	require.NoError(t, c.WarmUp())
	require.Contains(t, c.engine.singleton.entries, "widget", "WarmUp should have built the singleton")

	a, err := c.Get("widget")
	require.NoError(t, err)
	b, err := c.Get("widget")
	require.NoError(t, err)
	assert.Same(t, a, b, "warmed-up singleton should already be cached before the first explicit Get")
}

func TestContainer_WarmUpAggregatesErrors(t *testing.T) {
	c := NewContainer()
	// "broken" names a singleton whose class was never registered.
	require.NoError(t, c.SingletonBind("broken", Class("broken")))

	err := c.WarmUp()
	require.Error(t, err)
}
