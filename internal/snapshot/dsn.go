package snapshot

import "strings"

// OpenStore dispatches dsn to the backend constructor that can serve it,
// mirroring the teacher's db.Connect dispatch (its isURL branch between
// the sqlite and libsql dialectors) generalized over every backend this
// package carries. Go does not let two same-named Connect functions coexist
// the way the teacher's db/sqlite.go and db/postgres.go each declare their
// own, so this package keeps Open/OpenMySQL/OpenLibSQL/OpenCGO distinctly
// named and OpenStore is the single entry point that picks among them.
func OpenStore(dsn string, debug, cgo bool) (*Store, error) {
	switch {
	case IsRemoteDSN(dsn):
		return OpenLibSQL(dsn, debug)
	case isMySQLDSN(dsn):
		return OpenMySQL(strings.TrimPrefix(dsn, "mysql://"), debug)
	case cgo:
		return OpenCGO(dsn, debug)
	default:
		return Open(dsn, debug)
	}
}

// isMySQLDSN recognizes the two DSN shapes gorm.io/driver/mysql accepts: a
// go-sql-driver/mysql "user:pass@tcp(host:port)/db" string, or an explicit
// mysql:// scheme.
func isMySQLDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "mysql://") || strings.Contains(dsn, "@tcp(")
}
