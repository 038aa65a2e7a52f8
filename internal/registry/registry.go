// Package registry provides the SQLite-backed global property registry:
// the system-wide mapping of property names to datatypes, kept in sync
// with the schema document directory.
package registry

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/othala/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS properties (
	name     TEXT PRIMARY KEY,
	datatype TEXT NOT NULL DEFAULT 'Page',
	multi    INTEGER NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS categories (
	name       TEXT PRIMARY KEY,
	parent     TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_properties_category ON properties(category);
`

// PropertyRegistry defines the registry operations the resolution core
// and the sync/watch machinery depend on. Consumers should depend on
// this interface rather than the concrete *DB type.
type PropertyRegistry interface {
	UpsertCategory(row CategoryRow, props []PropertyRow) error
	DeleteCategory(name string) error
	GetChecksum(name string) (string, error)
	AllChecksums() (map[string]string, error)
	ListCategories() ([]CategoryRow, error)
	DatatypeOf(name string) (models.Datatype, bool)
	Close() error
}

// Verify *DB satisfies PropertyRegistry at compile time.
var _ PropertyRegistry = (*DB)(nil)

// DB wraps a sql.DB with registry-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("registry: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registry: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registry: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
