// Package analytics records learner events and prunes them after the
// configured retention period.
package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event is one recorded learner action.
type Event struct {
	ID          string            `gorm:"primarykey;size:36" json:"id"`
	Name        string            `gorm:"size:191;index" json:"name"`
	UserID      string            `gorm:"size:191;index" json:"user_id,omitempty"`
	ContentType string            `gorm:"size:32" json:"content_type,omitempty"`
	ContentID   uint              `json:"content_id,omitempty"`
	Properties  datatypes.JSONMap `json:"properties,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (Event) TableName() string { return "lms_analytics_events" }

// Models lists the gorm models owned by this package, for migration.
func Models() []any { return []any{&Event{}} }

// Store persists events.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, ev *Event) error {
	return errors.Wrapf(s.db.WithContext(ctx).Create(ev).Error, "failed to insert event %s", ev.Name)
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Event{}).Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "failed to count events")
	}
	return n, nil
}

// DeleteBefore removes every event created strictly before t and returns how
// many were removed.
func (s *Store) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	tx := s.db.WithContext(ctx).Where("created_at < ?", t).Delete(&Event{})
	if tx.Error != nil {
		return 0, errors.Wrapf(tx.Error, "failed to delete events before %s", t.Format(time.RFC3339))
	}
	return tx.RowsAffected, nil
}
