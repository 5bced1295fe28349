package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register is called as soon as the provider is added to a ProviderRegistry.
// Boot is called after ALL providers have been registered, making it safe
// to resolve capabilities inside Boot().
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(c *container.Container) error {
//	    return container.AddSingleton[Mailer](c, NewSMTPMailer)
//	}
//
//	func (p *MailProvider) Boot(c *container.Container) error {
//	    _, err := container.RequestRequired[Mailer](c)
//	    return err
//	}
type ServiceProvider interface {
	// Register adds capabilities to the container.
	// Do NOT resolve capabilities here, use Boot() for that.
	Register(c *Container) error

	// Boot is called after all providers are registered.
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides a no-op Boot().
// Embed it in your provider and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
type ProviderRegistry struct {
	c          *Container
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		c:          c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method. Adding the same
// provider instance twice is a no-op. Providers added after Boot() are
// booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	if err := provider.Register(r.c); err != nil {
		return err
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)

	if r.booted {
		return provider.Boot(r.c)
	}
	return nil
}

// Boot calls Boot() on all providers in registration order and stops at the
// first error. Calling it again after success is a no-op.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	for _, provider := range r.providers {
		if err := provider.Boot(r.c); err != nil {
			return err
		}
	}
	r.booted = true
	return nil
}

// Booted returns true once Boot() has succeeded.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
