package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider registers the application configuration.
//
// Registered capabilities:
//   - *config.Config  (singleton)
//
// When Config is nil the configuration is loaded from EnvFiles on first
// request.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *container.Container) error {
	cfg, envFiles := p.Config, p.EnvFiles
	return container.AddSingleton[*config.Config](c, func() *config.Config {
		if cfg != nil {
			return cfg
		}
		return config.Load(envFiles...)
	})
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider registers the application logger.
//
// Registered capabilities:
//   - *zap.Logger  (singleton, built from *config.Config unless Logger is set)
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(c *container.Container) error {
	if p.Logger != nil {
		log := p.Logger
		return container.AddSingleton[*zap.Logger](c, func() *zap.Logger { return log })
	}
	return container.AddSingleton[*zap.Logger](c, func(cfg *config.Config) (*zap.Logger, error) {
		return logging.New(cfg.Log)
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Registered capabilities:
//   - *routing.Router  (singleton, depends on *zap.Logger)
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(c *container.Container) error {
	return container.AddSingleton[*routing.Router](c, routing.New)
}
