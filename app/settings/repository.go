// Package settings stores the LMS admin settings as key/value options and
// decodes them onto a typed Settings struct.
package settings

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Option is one stored setting.
type Option struct {
	Key       string `gorm:"primarykey;size:191"`
	Value     string
	UpdatedAt time.Time
}

func (Option) TableName() string { return "lms_options" }

// Models lists the gorm models owned by this package, for migration.
func Models() []any { return []any{&Option{}} }

// Repository reads and writes Option rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// All returns every stored option as key → value.
func (r *Repository) All(ctx context.Context) (map[string]string, error) {
	var rows []Option
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load options")
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Put upserts values in one transaction.
func (r *Repository) Put(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			row := Option{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return errors.Wrapf(err, "failed to save option %s", key)
			}
		}
		return nil
	})
}
