// Package content holds the LMS content types (course, module, lesson) and
// their storage.
package content

import (
	"sync"

	"github.com/pkg/errors"
)

// Type names a content type.
type Type string

const (
	Course Type = "course"
	Module Type = "module"
	Lesson Type = "lesson"
)

var ErrUnknownType = errors.New("unknown content type")

// Definition describes a registered content type. Parent is the type an item
// of this type must hang under, or "" for top-level types.
type Definition struct {
	Type   Type   `json:"type"`
	Label  string `json:"label"`
	Plural string `json:"plural"`
	Parent Type   `json:"parent,omitempty"`
}

// Registry is the set of known content types. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	defs  map[Type]Definition
	order []Type
}

// NewRegistry returns a registry holding the course → module → lesson
// hierarchy.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[Type]Definition)}
	for _, def := range []Definition{
		{Type: Course, Label: "Course", Plural: "Courses"},
		{Type: Module, Label: "Module", Plural: "Modules", Parent: Course},
		{Type: Lesson, Label: "Lesson", Plural: "Lessons", Parent: Module},
	} {
		_ = r.Register(def)
	}
	return r
}

// Register adds or replaces a content type. The parent, if any, must already
// be registered.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" {
		return errors.New("content type must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.Parent != "" {
		if _, ok := r.defs[def.Parent]; !ok {
			return errors.Wrapf(ErrUnknownType, "parent %q of %q", def.Parent, def.Type)
		}
	}
	if _, exists := r.defs[def.Type]; !exists {
		r.order = append(r.order, def.Type)
	}
	r.defs[def.Type] = def
	return nil
}

// Lookup returns the definition of t.
func (r *Registry) Lookup(t Type) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[t]
	return def, ok
}

// Parse converts a raw type name into a registered Type.
func (r *Registry) Parse(name string) (Type, error) {
	if _, ok := r.Lookup(Type(name)); !ok {
		return "", errors.Wrapf(ErrUnknownType, "%q", name)
	}
	return Type(name), nil
}

// Definitions returns every registered type in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.defs[t])
	}
	return out
}
