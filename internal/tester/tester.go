// Package tester provides shared fixtures for package tests.
package tester

import (
	"path/filepath"
	"testing"

	"classlink-portal/internal/db"
	"classlink-portal/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB opens a fresh, migrated sqlite database inside the test's temp dir.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(filepath.Join(t.TempDir(), "classlink.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(gdb))

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}

// OpenStore is OpenDB wrapped in a models.Store.
func OpenStore(t testing.TB) *models.Store {
	t.Helper()
	return models.NewStore(OpenDB(t))
}
