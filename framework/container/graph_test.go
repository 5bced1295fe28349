package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
)

func TestValidate_Valid(t *testing.T) {
	c := wire(t, container.Singleton, container.Scoped, container.Transient)

	require.NoError(t, c.Validate())

	// validation memoizes plans but builds nothing
	for _, capability := range c.Capabilities() {
		dep, err := c.Lookup(capability)
		require.NoError(t, err)
		assert.NotNil(t, dep.Plan(), capability.String())
		assert.False(t, c.Resolved(capability))
	}
}

func TestValidate_Empty(t *testing.T) {
	assert.NoError(t, container.New().Validate())
}

func TestValidate_LifetimeViolation(t *testing.T) {
	c := wire(t, container.Scoped, container.Transient, container.Singleton)

	err := c.Validate()
	cerr := requireCode(t, err, container.ErrLifetimeViolation)
	assert.Equal(t, container.TypeOf[Dispatcher](), cerr.Capability)
}

func TestValidate_SelfReference(t *testing.T) {
	c := container.New()
	require.NoError(t, container.AddTransient[Gamma](c, func(g Gamma) *gamma { return &gamma{g: g} }))

	err := c.Validate()
	requireCode(t, err, container.ErrCircularDependency)
}

func TestValidate_Cycle(t *testing.T) {
	c := container.New()
	require.NoError(t, container.AddTransient[Alpha](c, func(b Beta) *alpha { return &alpha{b: b} }))
	require.NoError(t, container.AddTransient[Beta](c, func(a Alpha) *beta { return &beta{a: a} }))

	err := c.Validate()
	requireCode(t, err, container.ErrCircularDependency)
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidate_NoUsableConstructor(t *testing.T) {
	c := container.New()
	require.NoError(t, container.AddTransient[Handler](c, newHandler))

	requireCode(t, c.Validate(), container.ErrNoUsableConstructor)
}

func TestWarm_BuildsSingletonsOnly(t *testing.T) {
	built := map[string]int{}
	c := container.New()
	require.NoError(t, container.AddSingleton[Clock](c, func() *clock {
		built["clock"]++
		return &clock{}
	}))
	require.NoError(t, container.AddSingleton[Ticker](c, func(cl Clock) *ticker {
		built["ticker"]++
		return &ticker{clock: cl}
	}))
	require.NoError(t, container.AddScoped[Notifier](c, func() *notifier {
		built["notifier"]++
		return &notifier{}
	}))

	require.NoError(t, c.Warm())
	assert.Equal(t, map[string]int{"clock": 1, "ticker": 1}, built)
	assert.True(t, c.Resolved(container.TypeOf[Clock]()))
	assert.True(t, c.Resolved(container.TypeOf[Ticker]()))

	// warming twice reuses the cached instances
	require.NoError(t, c.Warm())
	assert.Equal(t, 1, built["clock"])

	tk, err := container.RequestRequired[Ticker](c)
	require.NoError(t, err)
	cl, err := container.RequestRequired[Clock](c)
	require.NoError(t, err)
	assert.Same(t, cl, tk.(*ticker).clock)
	assert.Equal(t, 1, built["ticker"])
}

func TestWarm_ConstructorFailure(t *testing.T) {
	c := container.New()
	require.NoError(t, container.AddSingleton[Clock](c, func() *clock { return nil }))

	err := c.Warm()
	requireCode(t, err, container.ErrResolutionFailed)
	requireCode(t, err, container.ErrInstantiationFailed)
}

func TestWarm_InvalidGraph(t *testing.T) {
	c := wire(t, container.Transient, container.Singleton, container.Transient)

	requireCode(t, c.Warm(), container.ErrLifetimeViolation)
	assert.False(t, c.Resolved(container.TypeOf[Handler]()))
}
