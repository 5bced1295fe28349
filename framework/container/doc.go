// Package container provides an IoC (Inversion of Control) container and a
// Service Provider system for Go.
//
// # Overview
//
// The container maps capability types (usually interfaces) to the
// implementations that satisfy them and builds the object graph on demand.
// Every capability is registered once, with a lifetime:
//
//   - Transient: a new instance every time it is needed
//   - Scoped:    one instance per root request
//   - Singleton: one instance for the container's lifetime
//
// Capabilities are keyed by reflect.Type. Constructors are plain Go
// functions whose parameters are other capabilities; the container reads
// their signatures, so no struct tags or field injection are involved.
//
// # Registration
//
//	c := container.New(container.WithLogger(log))
//
//	container.AddScoped[Notifier](c, NewNotifier)       // func(*zap.Logger) *Notifier
//	container.AddTransient[Controller](c, NewController) // func(Notifier) *Controller
//	container.AddSingleton[Clock](c, NewClock)           // func() (*Clock, error)
//
// Registering the same capability twice fails with ErrDuplicateRegistration.
// Constructors are not checked against the registry until first use, so
// registration order does not matter.
//
// # Constructors
//
// A capability may list several alternative constructors. On first
// resolution the container picks the single one whose parameters are all
// registered capabilities; none fails with ErrNoUsableConstructor, more than
// one with ErrAmbiguousConstructor. The choice is memoized.
//
// Where a Go function does not fit, pass a Constructor with an explicit
// parameter list and factory.
//
// # Resolving
//
//	router, err := container.RequestRequired[Router](c)
//
// Each RequestRequired call is a root request: it starts a fresh scope, so
// every Scoped capability in its graph is built once and shared inside that
// graph only. Singletons are shared across requests. Transients are never
// shared.
//
// Resolution fails with ErrResolutionFailed wrapping the cause:
//
//   - ErrNotRegistered: a capability is missing
//   - ErrCircularDependency: a capability depends on itself
//   - ErrLifetimeViolation: a singleton depends on a scoped or transient capability
//   - ErrInstantiationFailed: a constructor returned an error, nil, or panicked
//
// # Boot-time checks
//
//	if err := c.Validate(); err != nil { ... } // plans, lifetimes, cycles
//	if err := c.Warm(); err != nil { ... }     // Validate + build all singletons
//
// # Concurrency
//
// The registry and the singleton cache are shared, mutable state. A single
// mutex guards them and is held for the whole of each root request, so
// concurrent RequestRequired calls are safe but serialized. Constructors get
// their arguments, never the container, and must not call back into it: a
// constructor that calls RequestRequired, Register, Lookup, Validate or Warm
// gets ErrReentrantRequest, which fails the outer request as well.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    return container.AddSingleton[Mailer](c, mail.NewSMTP)
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
