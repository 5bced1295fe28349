package providers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

func registerAll(t *testing.T, c *container.Container, ps ...container.ServiceProvider) *container.ProviderRegistry {
	t.Helper()
	reg := container.NewProviderRegistry(c)
	for _, p := range ps {
		require.NoError(t, reg.Register(p))
	}
	require.NoError(t, reg.Boot())
	return reg
}

func TestConfigServiceProvider_Instance(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "Test"}}
	c := container.New()
	registerAll(t, c, &providers.ConfigServiceProvider{Config: cfg})

	got, err := container.RequestRequired[*config.Config](c)
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	dep, err := c.Lookup(container.TypeOf[*config.Config]())
	require.NoError(t, err)
	assert.Equal(t, container.Singleton, dep.Lifetime)
}

func TestConfigServiceProvider_LoadsEnvFiles(t *testing.T) {
	t.Setenv("APP_NAME", "Loaded")
	c := container.New()
	registerAll(t, c, &providers.ConfigServiceProvider{EnvFiles: []string{"testdata/missing.env"}})

	got, err := container.RequestRequired[*config.Config](c)
	require.NoError(t, err)
	assert.Equal(t, "Loaded", got.App.Name)
}

func TestLoggingServiceProvider_FromConfig(t *testing.T) {
	c := container.New()
	registerAll(t, c,
		&providers.ConfigServiceProvider{Config: &config.Config{Log: config.LogConfig{Level: "warn", Format: "json"}}},
		&providers.LoggingServiceProvider{},
	)

	log, err := container.RequestRequired[*zap.Logger](c)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestLoggingServiceProvider_BadConfig(t *testing.T) {
	c := container.New()
	registerAll(t, c,
		&providers.ConfigServiceProvider{Config: &config.Config{Log: config.LogConfig{Level: "loud"}}},
		&providers.LoggingServiceProvider{},
	)

	_, err := container.RequestRequired[*zap.Logger](c)
	assert.ErrorIs(t, err, container.ErrInstantiationFailed)
}

func TestRoutingServiceProvider(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := container.New()
	registerAll(t, c,
		&providers.LoggingServiceProvider{Logger: zap.New(core)},
		&providers.RoutingServiceProvider{},
	)
	require.NoError(t, c.Validate())

	router, err := container.RequestRequired[*routing.Router](c)
	require.NoError(t, err)
	again, err := container.RequestRequired[*routing.Router](c)
	require.NoError(t, err)
	assert.Same(t, router, again)

	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, logs.FilterMessage("request").Len())
}

func TestRoutingServiceProvider_NeedsLogger(t *testing.T) {
	c := container.New()
	registerAll(t, c, &providers.RoutingServiceProvider{})

	assert.ErrorIs(t, c.Validate(), container.ErrNoUsableConstructor)
}
