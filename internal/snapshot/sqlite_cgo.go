//go:build cgo

package snapshot

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenCGO connects via the cgo-accelerated mattn/go-sqlite3 driver instead
// of the pure-Go glebarez/sqlite default, for deployments that already
// carry a cgo toolchain and want the faster driver (teacher: db.Connect's
// non-libsql branch used gorm.io/driver/sqlite exclusively; here it is the
// opt-in alternate behind a build tag rather than the default, since the
// ambient stack names the pure-Go driver as primary).
func OpenCGO(path string, debug bool) (*Store, error) {
	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(sqlite.Open(path), config)
	if err != nil {
		return nil, fmt.Errorf("snapshot: connecting to sqlite (cgo): %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("snapshot: migrating sqlite schema (cgo): %w", err)
	}
	return &Store{db: db}, nil
}
