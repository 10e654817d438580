// Package lms wires the LMS plugin services into the application container
// and mounts their HTTP routes.
package lms

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/km-arc/simple-lms/app/access"
	"github.com/km-arc/simple-lms/app/analytics"
	"github.com/km-arc/simple-lms/app/content"
	"github.com/km-arc/simple-lms/app/errorhandler"
	"github.com/km-arc/simple-lms/app/settings"
	"github.com/km-arc/simple-lms/framework/container"
	"github.com/km-arc/simple-lms/framework/database"
	"github.com/km-arc/simple-lms/framework/providers"
	"github.com/km-arc/simple-lms/framework/routing"
)

// Service identifiers, in addition to the type keys.
const (
	RecoverMiddleware = "middleware.recover"
	RetentionID       = "retention"
)

// Provider registers the plugin services. Stateful services are shared and
// built with Make, so their dependencies are auto-wired from the container.
//
// Bound identifiers (type keys, plus aliases):
//   - *content.Registry, *content.Repository
//   - *access.Policy
//   - *settings.Repository, *settings.Service  ("settings")
//   - *analytics.Store, *analytics.Recorder, *analytics.Retention  ("retention")
//   - *errorhandler.Handler  ("errors")
//   - "middleware.recover", tagged providers.MiddlewareTag
type Provider struct {
	container.BaseProvider
}

func (p *Provider) Register(c *container.Container) error {
	for _, err := range []error{
		shared[*content.Registry](c, content.NewRegistry),
		shared[*content.Repository](c, content.NewRepository, container.Params("db", "registry")),
		shared[*access.Policy](c, access.NewPolicy),
		shared[*settings.Repository](c, settings.NewRepository, container.Params("db")),
		shared[*settings.Service](c, settings.NewService, container.Params("repo", "cfg")),
		shared[*analytics.Store](c, analytics.NewStore, container.Params("db")),
		shared[*analytics.Recorder](c, analytics.NewRecorder, container.Params("store", "settings", "logger")),
		shared[*analytics.Retention](c, analytics.NewRetention, container.Params("store", "settings", "logger")),
		shared[*errorhandler.Handler](c, errorhandler.New, container.Params("logger", "cfg")),

		// handlers are built once, at boot
		c.Constructor(access.NewHandler, container.Params("policy", "registry", "repo", "settings", "errors")),
		c.Constructor(settings.NewHandler, container.Params("service", "errors")),
		c.Constructor(analytics.NewHandler, container.Params("recorder", "errors")),

		c.Method((*analytics.Retention)(nil), "Run", container.Params("ctx", "days"), container.Default("days", 0)),
	} {
		if err != nil {
			return err
		}
	}

	c.Alias(container.Key[*settings.Service](), "settings")
	c.Alias(container.Key[*analytics.Retention](), RetentionID)
	c.Alias(container.Key[*errorhandler.Handler](), "errors")

	c.Singleton(RecoverMiddleware, func(c *container.Container) (any, error) {
		h, err := container.Get[*errorhandler.Handler](c, "errors")
		if err != nil {
			return nil, err
		}
		return h.Middleware, nil
	})
	c.Tag([]string{RecoverMiddleware}, providers.MiddlewareTag)
	return nil
}

// Boot migrates the plugin tables and mounts /lms and /admin routes.
func (p *Provider) Boot(c *container.Container) error {
	db, err := container.Get[*gorm.DB](c, "db")
	if err != nil {
		return err
	}
	models := lo.Flatten([][]any{content.Models(), settings.Models(), analytics.Models()})
	if err := database.Migrate(context.Background(), db, models...); err != nil {
		return err
	}

	contentHandler, err := container.MakeT[*access.Handler](c)
	if err != nil {
		return err
	}
	settingsHandler, err := container.MakeT[*settings.Handler](c)
	if err != nil {
		return err
	}
	eventsHandler, err := container.MakeT[*analytics.Handler](c)
	if err != nil {
		return err
	}

	router, err := container.Get[*routing.Router](c, "router")
	if err != nil {
		return err
	}
	router.Prefix("/lms", func(r *routing.Router) {
		contentHandler.Routes(r)
		eventsHandler.Routes(r)
	})
	router.Prefix("/admin", settingsHandler.Routes)
	return nil
}

// shared registers fn as the constructor of T and a singleton under T's type
// key that builds it with Make.
func shared[T any](c *container.Container, fn any, opts ...container.Option) error {
	key := container.Key[T]()
	if err := c.Constructor(fn, opts...); err != nil {
		return errors.Wrapf(err, "constructor for %s", key)
	}
	c.Singleton(key, func(c *container.Container) (any, error) {
		return c.Make(key)
	})
	return nil
}
