package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IsRemoteDSN reports whether dsn names a remote libsql/Turso endpoint
// rather than a local file path (teacher: db.isURL).
func IsRemoteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql")
}

// OpenLibSQL connects to a remote libsql/Turso endpoint, authenticating
// with the TYPECORE_LIBSQL_AUTH_TOKEN environment variable when set
// (teacher: db.Connect's isURL branch and its MORFX_LIBSQL_AUTH_TOKEN,
// renamed to this project's env var convention).
func OpenLibSQL(dsn string, debug bool) (*Store, error) {
	token := os.Getenv("TYPECORE_LIBSQL_AUTH_TOKEN")

	var conn *sql.DB
	if token != "" {
		c, cerr := libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		if cerr != nil {
			return nil, fmt.Errorf("snapshot: creating libsql connector: %w", cerr)
		}
		conn = sql.OpenDB(c)
	} else {
		c, cerr := libsql.NewConnector(dsn)
		if cerr != nil {
			return nil, fmt.Errorf("snapshot: creating libsql connector: %w", cerr)
		}
		conn = sql.OpenDB(c)
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	dialector := sqlite.New(sqlite.Config{
		DriverName: "libsql",
		Conn:       conn,
		DSN:        dsn,
	})
	db, err := gorm.Open(dialector, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: connecting to libsql: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("snapshot: migrating libsql schema: %w", err)
	}
	return &Store{db: db}, nil
}
