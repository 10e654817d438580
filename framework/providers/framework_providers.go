package providers

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/km-arc/simple-lms/framework/config"
	"github.com/km-arc/simple-lms/framework/container"
	"github.com/km-arc/simple-lms/framework/database"
	"github.com/km-arc/simple-lms/framework/logging"
	"github.com/km-arc/simple-lms/framework/routing"
)

// MiddlewareTag groups the identifiers of HTTP middleware that the router
// applies globally, after RequestID, RealIP, CORS and the request logger.
const MiddlewareTag = "http.middleware"

// UserTagsHeader carries the caller's comma separated access tags.
const UserTagsHeader = "X-LMS-User-Tags"

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the configuration from .env and the environment.
//
// Bound identifiers:
//   - Key[*config.Config]  (alias "config")
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *container.Container) error {
	envFiles := p.EnvFiles
	c.Singleton(container.Key[*config.Config](), func(*container.Container) (any, error) {
		return config.Load(envFiles...), nil
	})
	c.Alias(container.Key[*config.Config](), "config")
	return nil
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the channel logger from the log config.
//
// Bound identifiers:
//   - Key[*logging.Logger]  (aliases "Logger", "log")
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(c *container.Container) error {
	c.Singleton(container.Key[*logging.Logger](), func(c *container.Container) (any, error) {
		cfg, err := container.Get[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return logging.New(logging.Options{
			Level:   cfg.Log.Level,
			Handler: cfg.Log.Handler,
			Channel: cfg.Log.Channel,
		}), nil
	})
	c.Alias(container.Key[*logging.Logger](), "Logger")
	c.Alias(container.Key[*logging.Logger](), "log")
	return nil
}

// ── DatabaseServiceProvider ───────────────────────────────────────────────────

// DatabaseServiceProvider opens the gorm connection on first use.
//
// Bound identifiers:
//   - Key[*gorm.DB]  (alias "db")
type DatabaseServiceProvider struct {
	container.BaseProvider
}

func (p *DatabaseServiceProvider) Register(c *container.Container) error {
	c.Singleton(container.Key[*gorm.DB](), func(c *container.Container) (any, error) {
		cfg, err := container.Get[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return database.Open(cfg.DB)
	})
	c.Alias(container.Key[*gorm.DB](), "db")
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Preflight requests are
// answered from cfg.App.CORSOrigins. Every service tagged MiddlewareTag must
// resolve to func(http.Handler) http.Handler and is applied in tag order.
//
// Bound identifiers:
//   - Key[*routing.Router]  (alias "router")
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(c *container.Container) error {
	c.Singleton(container.Key[*routing.Router](), func(c *container.Container) (any, error) {
		cfg, err := container.Get[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		logger, err := container.Get[*logging.Logger](c, "Logger")
		if err != nil {
			return nil, err
		}

		cors := handlers.CORS(
			handlers.AllowedOrigins(cfg.App.CORSOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", UserTagsHeader}),
		)
		mw := []func(http.Handler) http.Handler{cors, routing.RequestLogger(logger.Slog())}
		tagged, err := c.Tagged(MiddlewareTag)
		if err != nil {
			return nil, err
		}
		for _, m := range tagged {
			fn, ok := m.(func(http.Handler) http.Handler)
			if !ok {
				return nil, errors.Errorf("%s: %T is not a middleware", MiddlewareTag, m)
			}
			mw = append(mw, fn)
		}
		return routing.New(mw...), nil
	})
	c.Alias(container.Key[*routing.Router](), "router")
	return nil
}
