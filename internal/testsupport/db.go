// Package testsupport holds helpers shared by the package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"timelog/internal/repository"
)

// NewDB opens a throwaway migrated SQLite database for one test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "timelog.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
