package analytics

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/km-arc/simple-lms/app/settings"
	"github.com/km-arc/simple-lms/framework/logging"
)

var ErrInvalidEvent = errors.New("invalid analytics event")

// Recorder stores events while analytics is enabled in the settings.
type Recorder struct {
	store    *Store
	settings *settings.Service
	logger   *logging.Logger
	now      func() time.Time
}

func NewRecorder(store *Store, svc *settings.Service, logger *logging.Logger) *Recorder {
	return &Recorder{store: store, settings: svc, logger: logger, now: time.Now}
}

// Record assigns ev an id and a timestamp and stores it. It reports false,
// without storing anything, when analytics is disabled.
func (r *Recorder) Record(ctx context.Context, ev *Event) (bool, error) {
	ev.Name = strings.TrimSpace(ev.Name)
	if ev.Name == "" {
		return false, errors.Wrap(ErrInvalidEvent, "name is required")
	}

	current, err := r.settings.Load(ctx)
	if err != nil {
		return false, err
	}
	if !current.AnalyticsEnabled {
		r.logger.Log(ctx, slog.LevelDebug, "analytics disabled, dropped {event}", "event", ev.Name)
		return false, nil
	}

	ev.ID = uuid.NewString()
	ev.CreatedAt = r.now().UTC()
	if err := r.store.Insert(ctx, ev); err != nil {
		return false, err
	}
	return true, nil
}
