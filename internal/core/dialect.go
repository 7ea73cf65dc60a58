package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Dialect adapts statement text to a database engine.
//
// Statements are written once with PostgreSQL-style $n placeholders; a
// dialect rewrites them and supplies the few queries that need
// engine-specific functions.
type Dialect interface {
	// Name returns the identifier used in configuration ("postgres", "sqlite").
	Name() string
	// Rebind rewrites $n placeholders into the dialect's form.
	Rebind(query string) string
	// MultiVendorQuery lists items with more than one vendor.
	MultiVendorQuery(limit int) string
}

// Supported dialect names.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// ErrUnknownDialect is returned by DialectByName for unsupported names.
var ErrUnknownDialect = errors.New("unknown SQL dialect")

// DialectByName returns the dialect registered under name. An empty name
// selects PostgreSQL.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DialectPostgres, "postgresql", "pg":
		return Postgres, nil
	case DialectSQLite, "sqlite3":
		return SQLite, nil
	default:
		return nil, fmt.Errorf("%w %q (use %s or %s)", ErrUnknownDialect, name, DialectPostgres, DialectSQLite)
	}
}

var (
	// Postgres targets PostgreSQL through pgx.
	Postgres Dialect = postgresDialect{}
	// SQLite targets SQLite through database/sql.
	SQLite Dialect = sqliteDialect{}
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return DialectPostgres }

func (postgresDialect) Rebind(query string) string { return query }

func (postgresDialect) MultiVendorQuery(limit int) string {
	return fmt.Sprintf(`SELECT
    i.code,
    i.name,
    COUNT(iv.vendor_id) AS vendor_count,
    STRING_AGG(v.name || ' (P' || iv.priority || ')', ', ' ORDER BY iv.priority) AS vendors
FROM items i
JOIN item_vendors iv ON iv.item_id = i.id
JOIN vendors v ON v.id = iv.vendor_id
GROUP BY i.id, i.code, i.name
HAVING COUNT(iv.vendor_id) > 1
ORDER BY vendor_count DESC, i.name
LIMIT %d`, limit)
}

type sqliteDialect struct{}

var dollarParam = regexp.MustCompile(`\$(\d+)`)

func (sqliteDialect) Name() string { return DialectSQLite }

// Rebind maps $n to ?n, which SQLite binds by position and allows to repeat.
func (sqliteDialect) Rebind(query string) string {
	return dollarParam.ReplaceAllString(query, "?$1")
}

func (sqliteDialect) MultiVendorQuery(limit int) string {
	return fmt.Sprintf(`SELECT
    i.code,
    i.name,
    COUNT(iv.vendor_id) AS vendor_count,
    (
        SELECT GROUP_CONCAT(label, ', ')
        FROM (
            SELECT v2.name || ' (P' || iv2.priority || ')' AS label
            FROM item_vendors iv2
            JOIN vendors v2 ON v2.id = iv2.vendor_id
            WHERE iv2.item_id = i.id
            ORDER BY iv2.priority
        )
    ) AS vendors
FROM items i
JOIN item_vendors iv ON iv.item_id = i.id
GROUP BY i.id, i.code, i.name
HAVING COUNT(iv.vendor_id) > 1
ORDER BY vendor_count DESC, i.name
LIMIT %d`, limit)
}
