package content

import (
	"context"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Catalog is a course tree read from YAML:
//
//	courses:
//	  - title: Go 101
//	    required_tags: [premium]
//	    modules:
//	      - title: Basics
//	        lessons:
//	          - title: Variables
type Catalog struct {
	Courses []CatalogCourse `yaml:"courses"`
}

type CatalogCourse struct {
	Title        string          `yaml:"title"`
	Body         string          `yaml:"body"`
	RequiredTags []string        `yaml:"required_tags"`
	Modules      []CatalogModule `yaml:"modules"`
}

type CatalogModule struct {
	Title        string          `yaml:"title"`
	Body         string          `yaml:"body"`
	RequiredTags []string        `yaml:"required_tags"`
	Lessons      []CatalogLesson `yaml:"lessons"`
}

type CatalogLesson struct {
	Title        string   `yaml:"title"`
	Body         string   `yaml:"body"`
	RequiredTags []string `yaml:"required_tags"`
}

func LoadCatalogFromFile(file string) (catalog Catalog, err error) {
	var yamlBytes []byte
	if yamlBytes, err = os.ReadFile(file); err != nil {
		err = errors.Wrapf(err, "failed to read file %s", file)
		return
	}

	if err = yaml.Unmarshal(yamlBytes, &catalog); err != nil {
		err = errors.Wrapf(err, "failed to unmarshal file %s", file)
		return
	}

	return
}

// Import stores every item of catalog in one transaction and returns how
// many items were created. Nothing is stored if any item fails.
func (r *Repository) Import(ctx context.Context, catalog Catalog) (int, error) {
	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &Repository{db: tx, registry: r.registry}
		create := func(item *Item) error {
			if item.Title == "" {
				return errors.Errorf("%s without a title", item.Type)
			}
			if err := repo.Create(ctx, item); err != nil {
				return err
			}
			created++
			return nil
		}

		for _, c := range catalog.Courses {
			course := &Item{Type: Course, Title: c.Title, Body: c.Body, RequiredTags: c.RequiredTags}
			if err := create(course); err != nil {
				return err
			}
			for _, m := range c.Modules {
				module := &Item{Type: Module, ParentID: &course.ID, Title: m.Title, Body: m.Body, RequiredTags: m.RequiredTags}
				if err := create(module); err != nil {
					return err
				}
				for _, l := range m.Lessons {
					lesson := &Item{Type: Lesson, ParentID: &module.ID, Title: l.Title, Body: l.Body, RequiredTags: l.RequiredTags}
					if err := create(lesson); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to import catalog")
	}
	return created, nil
}
