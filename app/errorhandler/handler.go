// Package errorhandler reports errors to the channel logger and turns
// handler panics into 500 responses.
package errorhandler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/km-arc/simple-lms/framework/config"
	gohttp "github.com/km-arc/simple-lms/framework/http"
	"github.com/km-arc/simple-lms/framework/logging"
)

// Handler reports errors through the logger. With debug on, the report
// carries the error's stack trace.
type Handler struct {
	logger *logging.Logger
	debug  bool
}

func New(logger *logging.Logger, cfg *config.Config) *Handler {
	return &Handler{logger: logger, debug: cfg.App.Debug}
}

// Report logs err at error level. A nil err is ignored.
func (h *Handler) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}

	args := []any{slog.String("error", err.Error())}
	if id := middleware.GetReqID(ctx); id != "" {
		args = append(args, slog.String("request_id", id))
	}
	if h.debug {
		args = append(args, slog.String("stack", fmt.Sprintf("%+v", err)))
	}
	h.logger.Log(ctx, slog.LevelError, "{error}", args...)
}

// Middleware recovers panics from next, reports them and answers 500.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = errors.Errorf("%v", rec)
			}
			h.Report(r.Context(), errors.Wrap(err, "panic"))
			gohttp.NewResponse(w).ServerError()
		}()
		next.ServeHTTP(w, r)
	})
}
