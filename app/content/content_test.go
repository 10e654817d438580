package content_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/km-arc/simple-lms/app/content"
	"github.com/km-arc/simple-lms/internal/testdb"
)

func TestRegistry_Defaults(t *testing.T) {
	r := content.NewRegistry()

	types := make([]content.Type, 0)
	for _, def := range r.Definitions() {
		types = append(types, def.Type)
	}
	assert.Equal(t, []content.Type{content.Course, content.Module, content.Lesson}, types)

	def, ok := r.Lookup(content.Lesson)
	require.True(t, ok)
	assert.Equal(t, content.Module, def.Parent)
}

func TestRegistry_Register(t *testing.T) {
	r := content.NewRegistry()

	require.NoError(t, r.Register(content.Definition{Type: "quiz", Label: "Quiz", Parent: content.Lesson}))
	_, err := r.Parse("quiz")
	assert.NoError(t, err)

	err = r.Register(content.Definition{Type: "badge", Parent: "achievement"})
	assert.ErrorIs(t, err, content.ErrUnknownType)

	assert.Error(t, r.Register(content.Definition{}))

	_, err = r.Parse("forum")
	assert.ErrorIs(t, err, content.ErrUnknownType)
}

// ── Repository ───────────────────────────────────────────────────────────────

type RepositoryTestSuite struct {
	suite.Suite

	ctx  context.Context
	repo *content.Repository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	db := testdb.Open(s.T(), content.Models()...)
	s.repo = content.NewRepository(db, content.NewRegistry())
}

func (s *RepositoryTestSuite) TestCreateHierarchy() {
	course := &content.Item{Type: content.Course, Title: "Go 101", RequiredTags: []string{"premium"}}
	s.Require().NoError(s.repo.Create(s.ctx, course))
	s.NotZero(course.ID)

	module := &content.Item{Type: content.Module, Title: "Basics", ParentID: &course.ID}
	s.Require().NoError(s.repo.Create(s.ctx, module))

	lesson := &content.Item{Type: content.Lesson, Title: "Variables", ParentID: &module.ID}
	s.Require().NoError(s.repo.Create(s.ctx, lesson))

	found, err := s.repo.Find(s.ctx, content.Course, course.ID)
	s.Require().NoError(err)
	s.Equal("Go 101", found.Title)
	s.Equal([]string{"premium"}, []string(found.RequiredTags))

	children, err := s.repo.Children(s.ctx, course.ID)
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	s.Equal(module.ID, children[0].ID)
}

func (s *RepositoryTestSuite) TestCreateRejectsBadParents() {
	course := &content.Item{Type: content.Course, Title: "Go 101"}
	s.Require().NoError(s.repo.Create(s.ctx, course))

	s.Error(s.repo.Create(s.ctx, &content.Item{Type: content.Lesson, Title: "orphan"}))
	s.Error(s.repo.Create(s.ctx, &content.Item{Type: content.Course, Title: "nested", ParentID: &course.ID}))

	// a lesson must hang under a module, not a course
	err := s.repo.Create(s.ctx, &content.Item{Type: content.Lesson, Title: "skip", ParentID: &course.ID})
	s.ErrorIs(err, content.ErrNotFound)

	s.ErrorIs(s.repo.Create(s.ctx, &content.Item{Type: "forum"}), content.ErrUnknownType)
}

func (s *RepositoryTestSuite) TestFindChecksType() {
	course := &content.Item{Type: content.Course, Title: "Go 101"}
	s.Require().NoError(s.repo.Create(s.ctx, course))

	_, err := s.repo.Find(s.ctx, content.Lesson, course.ID)
	s.ErrorIs(err, content.ErrNotFound)

	_, err = s.repo.Find(s.ctx, content.Course, 999)
	s.ErrorIs(err, content.ErrNotFound)
}

func (s *RepositoryTestSuite) TestList() {
	for _, title := range []string{"A", "B"} {
		s.Require().NoError(s.repo.Create(s.ctx, &content.Item{Type: content.Course, Title: title}))
	}

	items, err := s.repo.List(s.ctx, content.Course)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("A", items[0].Title)

	items, err = s.repo.List(s.ctx, content.Lesson)
	s.Require().NoError(err)
	s.Empty(items)
}

const catalogYAML = `
courses:
  - title: Go 101
    required_tags: [premium]
    modules:
      - title: Basics
        lessons:
          - title: Variables
          - title: Functions
  - title: Free intro
`

func (s *RepositoryTestSuite) TestImportCatalog() {
	file := filepath.Join(s.T().TempDir(), "catalog.yaml")
	s.Require().NoError(os.WriteFile(file, []byte(catalogYAML), 0o600))

	catalog, err := content.LoadCatalogFromFile(file)
	s.Require().NoError(err)
	s.Require().Len(catalog.Courses, 2)
	s.Equal([]string{"premium"}, catalog.Courses[0].RequiredTags)

	created, err := s.repo.Import(s.ctx, catalog)
	s.Require().NoError(err)
	s.Equal(5, created)

	lessons, err := s.repo.List(s.ctx, content.Lesson)
	s.Require().NoError(err)
	s.Len(lessons, 2)
}

func (s *RepositoryTestSuite) TestImportIsAllOrNothing() {
	catalog := content.Catalog{Courses: []content.CatalogCourse{
		{Title: "Go 101", Modules: []content.CatalogModule{{Title: ""}}},
	}}

	_, err := s.repo.Import(s.ctx, catalog)
	s.Error(err)

	courses, err := s.repo.List(s.ctx, content.Course)
	s.Require().NoError(err)
	s.Empty(courses)
}

func TestLoadCatalogFromFile_Errors(t *testing.T) {
	_, err := content.LoadCatalogFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("courses: [\n"), 0o600))
	_, err = content.LoadCatalogFromFile(file)
	assert.Error(t, err)
}

func TestRepository(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
