package content

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("content not found")

// Item is one course, module or lesson. RequiredTags are the user tags needed
// to access it.
type Item struct {
	ID           uint                        `gorm:"primarykey" json:"id"`
	Type         Type                        `gorm:"size:32;index" json:"type"`
	ParentID     *uint                       `gorm:"index" json:"parent_id,omitempty"`
	Title        string                      `gorm:"size:255" json:"title"`
	Body         string                      `json:"body,omitempty"`
	RequiredTags datatypes.JSONSlice[string] `json:"required_tags"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (Item) TableName() string { return "lms_content_items" }

// Models lists the gorm models owned by this package, for migration.
func Models() []any { return []any{&Item{}} }

// Repository stores content items.
type Repository struct {
	db       *gorm.DB
	registry *Registry
}

func NewRepository(db *gorm.DB, registry *Registry) *Repository {
	return &Repository{db: db, registry: registry}
}

// Create stores item after checking its type is registered and that its
// parent, when the type requires one, exists with the right type.
func (r *Repository) Create(ctx context.Context, item *Item) error {
	def, ok := r.registry.Lookup(item.Type)
	if !ok {
		return errors.Wrapf(ErrUnknownType, "%q", item.Type)
	}

	switch {
	case def.Parent == "" && item.ParentID != nil:
		return errors.Errorf("%s items cannot have a parent", def.Type)
	case def.Parent != "":
		if item.ParentID == nil {
			return errors.Errorf("%s items need a %s parent", def.Type, def.Parent)
		}
		if _, err := r.Find(ctx, def.Parent, *item.ParentID); err != nil {
			return errors.Wrapf(err, "parent of %s", def.Type)
		}
	}

	return errors.Wrapf(r.db.WithContext(ctx).Create(item).Error, "failed to create %s", item.Type)
}

// Find returns the item of type t with the given id.
func (r *Repository) Find(ctx context.Context, t Type, id uint) (*Item, error) {
	var item Item
	err := r.db.WithContext(ctx).Where("type = ?", t).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "%s %d", t, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find %s %d", t, id)
	}
	return &item, nil
}

// List returns every item of type t, oldest first.
func (r *Repository) List(ctx context.Context, t Type) ([]Item, error) {
	var items []Item
	if err := r.db.WithContext(ctx).Where("type = ?", t).Order("id ASC").Find(&items).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list %s items", t)
	}
	return items, nil
}

// Children returns the items whose parent is id.
func (r *Repository) Children(ctx context.Context, id uint) ([]Item, error) {
	var items []Item
	if err := r.db.WithContext(ctx).Where("parent_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list children of %d", id)
	}
	return items, nil
}
