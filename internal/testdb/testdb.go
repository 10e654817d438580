// Package testdb opens throwaway sqlite databases for tests.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/km-arc/simple-lms/framework/config"
	"github.com/km-arc/simple-lms/framework/database"
)

// Open returns an in-memory database private to t, migrated for models and
// closed when the test ends.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, models...))

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
