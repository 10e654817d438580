// Package container provides the dependency resolver and the Service Provider
// system used by the LMS plugin.
//
// # Overview
//
// The container maps string identifiers to factories and resolves them either
// from those explicit registrations (Get) or by auto-wiring registered
// constructor functions (Make, Call). Identifiers are usually type keys:
//
//	container.TypeKey((*slog.Logger)(nil))   // "log/slog.Logger"
//	container.Key[*slog.Logger]()            // same
//
// Go has no runtime lookup of types by name, so every type Make can build is
// declared once with Constructor.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Serve requests
//
// # Registrations
//
//	// Shared — created once, reused until overwritten or Clear()
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    return cache.NewMemory(), nil
//	})
//
//	// Transient — factory runs on every Get()
//	c.Factory("request-id", func(*container.Container) (any, error) {
//	    return uuid.NewString(), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Zero-constructed concrete type
//	c.Bind("cache", (*MemoryCache)(nil), true)
//
//	// Alias
//	c.Alias(container.Key[*slog.Logger](), "Logger")
//
// # Resolving
//
//	raw, err := c.Get("cache")
//	cache := container.Resolve[*MemoryCache](c, "cache")  // panics on failure
//
// Get returns *NotFoundError (errors.Is(err, ErrServiceNotFound)) for an
// unknown identifier and *ResolutionError (errors.Is(err, ErrResolution)) when
// a factory fails.
//
// # Auto-wiring
//
//	c.Constructor(NewReporter, container.Params("logger", "prefix"), container.Default("prefix", "lms"))
//	reporter, err := container.MakeT[*Reporter](c)
//
// Each constructor parameter is bound, in order, from its declared default
// (basic kinds and any), from Get when its type key is registered, or by a
// recursive Make. Cycles are reported as ErrCircularDependency.
//
// Call does the same for a method, letting explicit arguments win:
//
//	c.Method((*Retention)(nil), "Run", container.Params("ctx", "days"))
//	out, err := c.Call(retention, "Run", container.Args{"ctx": ctx, "days": 30})
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    app.Singleton("mailer", func(c *container.Container) (any, error) {
//	        cfg := container.Resolve[*config.Config](c, "config")
//	        return mail.NewSMTP(cfg.Mail), nil
//	    })
//	    return nil
//	}
//
//	registry := container.NewProviderRegistry(c)
//	if err := registry.Register(&AppServiceProvider{}); err != nil { ... }
//	if err := registry.Boot(); err != nil { ... }
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
package container
