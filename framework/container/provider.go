package container

import (
	"fmt"

	"github.com/pkg/errors"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one feature.
//
// Register is called as soon as the provider is added; Boot is called after
// ALL providers have been registered, making it safe to resolve other
// services inside Boot.
//
//	type AnalyticsProvider struct{ container.BaseProvider }
//
//	func (p *AnalyticsProvider) Register(app *container.Container) error {
//	    return app.Constructor(analytics.NewRecorder, container.Params("store", "settings", "logger"))
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the identifiers this provider registers.
	// Only consulted for deferred providers.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() identifiers is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers. It is meant to be driven from a single
// goroutine at startup.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.interceptDeferred(provider)
		return nil
	}

	if err := provider.Register(r.app); err != nil {
		return errors.Wrapf(err, "register %s", providerName(provider))
	}
	r.eager = append(r.eager, provider)

	// If already booted, boot this provider immediately
	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return errors.Wrapf(err, "boot %s", providerName(provider))
		}
	}
	return nil
}

// interceptDeferred registers a placeholder factory for each deferred
// identifier. The first Get of any of them registers (and, once the registry
// is booted, boots) the provider, whose own registrations replace the
// placeholders. A provider that fails to register or boot is tried again on
// the next Get.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	loaded := false
	for _, id := range provider.Provides() {
		id := id
		r.app.Factory(id, func(c *Container) (any, error) {
			if loaded {
				return nil, errors.Errorf("deferred provider %s did not register [%s]", providerName(provider), id)
			}
			if err := provider.Register(c); err != nil {
				return nil, errors.Wrapf(err, "register %s", providerName(provider))
			}
			if r.booted {
				if err := provider.Boot(c); err != nil {
					return nil, errors.Wrapf(err, "boot %s", providerName(provider))
				}
			}
			loaded = true

			// resolve the real registration outside the placeholder's own link
			return c.in(c.rc.parent).Get(id)
		})
	}
}

// Boot calls Boot() on all eager providers, stopping at the first error.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.eager {
		if err := provider.Boot(r.app); err != nil {
			return errors.Wrapf(err, "boot %s", providerName(provider))
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

func providerName(p ServiceProvider) string {
	return fmt.Sprintf("%T", p)
}
