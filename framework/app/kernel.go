package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

const shutdownTimeout = 10 * time.Second

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can call
// app.Register() and container.RequestRequired[T](app.Container) directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	cfg *config.Config
	log *zap.Logger
}

// Option configures an Application.
type Option func(*Application)

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(log *zap.Logger) Option {
	return func(a *Application) { a.log = log }
}

// New creates the application and registers the framework providers
// (config, logging, routing).
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	a := &Application{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		log, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		a.log = log
	}

	a.Container = container.New(container.WithLogger(a.log))
	a.Providers = container.NewProviderRegistry(a.Container)

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: a.log},
		&providers.RoutingServiceProvider{},
	} {
		if err := a.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot validates the container (CONTAINER_VALIDATE_ON_BOOT), runs the Boot()
// phase on all providers and then builds singletons (CONTAINER_WARM_SINGLETONS).
func (a *Application) Boot() error {
	if a.Providers.Booted() {
		return nil
	}
	if a.cfg.Container.ValidateOnBoot {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("app: validate container: %w", err)
		}
	}
	if err := a.Providers.Boot(); err != nil {
		return fmt.Errorf("app: boot providers: %w", err)
	}
	if a.cfg.Container.WarmSingletons {
		if err := a.Warm(); err != nil {
			return fmt.Errorf("app: warm singletons: %w", err)
		}
	}
	a.log.Info("application booted",
		zap.String("name", a.cfg.App.Name),
		zap.String("env", a.Environment()),
		zap.Int("capabilities", len(a.Capabilities())),
	)
	return nil
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustRequest[*routing.Router](a.Container)
}

// Run boots the application (if needed) and serves HTTP on APP_PORT until
// ctx is cancelled, then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", a.Environment()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
