package sheetstore

import (
	"strconv"
	"strings"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type dialect struct {
	name string
	// sqlDriver is the database/sql driver name.
	sqlDriver   string
	tableExists string
	numbered    bool
}

var (
	sqliteDialect = dialect{
		name:        DriverSQLite,
		sqlDriver:   "sqlite",
		tableExists: "SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?",
	}
	postgresDialect = dialect{
		name:        DriverPostgres,
		sqlDriver:   "pgx",
		tableExists: "SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name=?",
		numbered:    true,
	}
)

func dialectFor(driver string) (dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite3":
		return sqliteDialect, true
	case DriverPostgres, "postgresql", "pgx":
		return postgresDialect, true
	}
	return dialect{}, false
}

// rebind rewrites ? placeholders into $n for dialects that number them.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitStatements breaks a schema script into single statements.
func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
