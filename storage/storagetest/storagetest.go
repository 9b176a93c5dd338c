// Package storagetest provides database fixtures for tests in other packages.
package storagetest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartsquare-server/storage"
)

// NewDB returns a migrated in-memory SQLite database that is closed when the
// test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err, "Failed to open test database")
	require.NoError(t, storage.Migrate(db), "Failed to migrate test database")
	t.Cleanup(func() {
		if err := storage.Close(db); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})
	return db
}
