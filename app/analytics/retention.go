package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/km-arc/simple-lms/app/settings"
	"github.com/km-arc/simple-lms/framework/logging"
)

// Retention deletes events older than the retention period.
type Retention struct {
	store    *Store
	settings *settings.Service
	logger   *logging.Logger
	now      func() time.Time
}

func NewRetention(store *Store, svc *settings.Service, logger *logging.Logger) *Retention {
	return &Retention{store: store, settings: svc, logger: logger, now: time.Now}
}

// Run deletes events created more than days days ago and returns how many
// were deleted. days <= 0 uses the retention_days setting.
func (r *Retention) Run(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		current, err := r.settings.Load(ctx)
		if err != nil {
			return 0, err
		}
		days = current.RetentionDays
	}

	cutoff := r.now().UTC().AddDate(0, 0, -days)
	deleted, err := r.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	r.logger.Log(ctx, slog.LevelInfo, "deleted {count} analytics events older than {days} days",
		"count", deleted, "days", days)
	return deleted, nil
}
