package container

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name string
}

type consumerOfWidget struct {
	Widget *widget `kernel:"inject"`
}

func TestContainer_SingletonAndTag(t *testing.T) {
	c := NewContainer()

	w := &widget{Name: "primary"}
	require.NoError(t, c.InstanceBind("widget", w))
	c.Tag("widget", "widgets")

	got, err := c.Get("widget")
	require.NoError(t, err)
	assert.Same(t, w, got)

	tagged, err := c.Tagged("widgets")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Same(t, w, tagged[0])
}

func TestContainer_AutowireChain(t *testing.T) {
	c := NewContainer()
	c.RegisterType("widget", reflect.TypeOf(&widget{}))
	c.RegisterType("consumerOfWidget", reflect.TypeOf(&consumerOfWidget{}))

	require.NoError(t, c.SingletonBind("widget", Class("widget")))
	require.NoError(t, c.Bind("consumerOfWidget", Class("consumerOfWidget")))

	got, err := c.Get("consumerOfWidget")
	require.NoError(t, err)

	consumer, ok := got.(*consumerOfWidget)
	require.True(t, ok)
	require.NotNil(t, consumer.Widget)
}

func TestContainer_SingletonReusesInstance(t *testing.T) {
	c := NewContainer()
	c.RegisterType("widget", reflect.TypeOf(&widget{}))
	require.NoError(t, c.SingletonBind("widget", Class("widget")))

	a, err := c.Get("widget")
	require.NoError(t, err)
	b, err := c.Get("widget")
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestContainer_TransientBuildsFresh(t *testing.T) {
	c := NewContainer()
	c.RegisterType("widget", reflect.TypeOf(&widget{}))
	require.NoError(t, c.Bind("widget", Class("widget")))

	a, err := c.Get("widget")
	require.NoError(t, err)
	b, err := c.Get("widget")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
}

func TestContainer_ServiceNotFound(t *testing.T) {
	c := NewContainer()
	_, err := c.Get("nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServiceNotFound))
}

func TestContainer_ContextualBinding(t *testing.T) {
	c := NewContainer()
	c.RegisterType("widget", reflect.TypeOf(&widget{}))
	c.RegisterType("consumerOfWidget", reflect.TypeOf(&consumerOfWidget{}))
	require.NoError(t, c.Bind("consumerOfWidget", Class("consumerOfWidget")))

	special := &widget{Name: "special"}
	require.NoError(t, c.When("consumerOfWidget").Needs("widget").Give(Instance(special)))

	got, err := c.Get("consumerOfWidget")
	require.NoError(t, err)
	consumer := got.(*consumerOfWidget)
	assert.Same(t, special, consumer.Widget)
}

type circularA struct {
	B *circularB `kernel:"inject"`
}

type circularB struct {
	A *circularA `kernel:"inject"`
}

func TestContainer_CircularDependency(t *testing.T) {
	c := NewContainer()
	c.RegisterType("circularA", reflect.TypeOf(&circularA{}))
	c.RegisterType("circularB", reflect.TypeOf(&circularB{}))
	require.NoError(t, c.Bind("circularA", Class("circularA")))
	require.NoError(t, c.Bind("circularB", Class("circularB")))

	_, err := c.Get("circularA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircularDependency))
}

func TestContainer_ExtenderReplacesInstance(t *testing.T) {
	c := NewContainer()
	c.RegisterType("widget", reflect.TypeOf(&widget{}))
	require.NoError(t, c.SingletonBind("widget", Class("widget")))
	c.Extend("widget", func(instance any, _ *Container) (any, error) {
		_ = instance.(*widget)
		return &widget{Name: "extended"}, nil
	})

	got, err := c.Get("widget")
	require.NoError(t, err)
	assert.Equal(t, "extended", got.(*widget).Name)
}

func TestContainer_ScopedLifetime(t *testing.T) {
	c := NewContainer()
	c.RegisterType("widget", reflect.TypeOf(&widget{}))
	require.NoError(t, c.ScopedBind("widget", Class("widget")))

	scope1 := c.BeginScope()
	a, err := c.GetScoped("widget", scope1, nil)
	require.NoError(t, err)
	a2, err := c.GetScoped("widget", scope1, nil)
	require.NoError(t, err)
	assert.Same(t, a, a2)

	scope2 := c.BeginScope()
	b, err := c.GetScoped("widget", scope2, nil)
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	require.NoError(t, c.EndScope(scope1))
	require.NoError(t, c.EndScope(scope2))
}

func TestContainer_SelfResolution(t *testing.T) {
	c := NewContainer()
	got, err := c.Get("container")
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestPrototypeAnalyzer_RoundTripEqual(t *testing.T) {
	a := NewPrototypeAnalyzer()
	a.registerType("widget", reflect.TypeOf(&widget{}))

	p1, err := a.Analyze("widget")
	require.NoError(t, err)
	p2, err := a.Analyze("widget")
	require.NoError(t, err)

	assert.True(t, p1.Equal(p2))
}
