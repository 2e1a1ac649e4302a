package snapshot

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenMySQL connects to a MySQL-compatible server as an alternate store
// backend for deployments that centralize snapshots in a shared database
// rather than a per-project sqlite file (ambient stack alternate; grounded
// on the teacher's db.Connect/db/postgres.go Connect shape, adapted to the
// mysql dialector already present in the dependency pack).
func OpenMySQL(dsn string, debug bool) (*Store, error) {
	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("snapshot: connecting to mysql: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("snapshot: migrating mysql schema: %w", err)
	}
	return &Store{db: db}, nil
}
