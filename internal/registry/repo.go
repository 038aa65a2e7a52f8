package registry

import (
	"fmt"
	"time"

	"github.com/starford/othala/internal/models"
)

// CategoryRow represents a row in the categories table.
type CategoryRow struct {
	Name      string
	Parent    string
	Checksum  string
	UpdatedAt time.Time
}

// PropertyRow represents a row in the properties table.
type PropertyRow struct {
	Name     string
	Datatype models.Datatype
	Multi    bool
	Category string
}

// UpsertCategory replaces a category's row and its property registrations
// within a transaction. Properties previously registered by the category
// but absent from props are removed.
func (db *DB) UpsertCategory(row CategoryRow, props []PropertyRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("registry: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO categories (name, parent, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			parent     = excluded.parent,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, row.Name, row.Parent, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("registry: upsert category: %w", err)
	}

	// Replace this category's property registrations: delete old then
	// bulk insert. A property name already registered by another category
	// keeps its original datatype (names are wiki-global, first writer
	// wins; conflicting redeclarations cannot occur upstream).
	_, _ = tx.Exec(`DELETE FROM properties WHERE category = ?`, row.Name)
	if len(props) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO properties (name, datatype, multi, category)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("registry: prepare property insert: %w", err)
		}
		defer stmt.Close()
		for _, p := range props {
			multi := 0
			if p.Multi {
				multi = 1
			}
			if _, err := stmt.Exec(p.Name, string(p.Datatype), multi, p.Category); err != nil {
				return fmt.Errorf("registry: insert property: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteCategory removes a category and its property registrations.
func (db *DB) DeleteCategory(name string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("registry: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM properties WHERE category = ?`, name)
	_, _ = tx.Exec(`DELETE FROM categories WHERE name = ?`, name)

	return tx.Commit()
}

// GetChecksum returns the stored document checksum for a category, or
// empty string if not registered.
func (db *DB) GetChecksum(name string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM categories WHERE name = ?`, name).Scan(&cs)
	if err != nil {
		return "", nil // not registered is fine
	}
	return cs, nil
}

// AllChecksums returns every registered category's document checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT name, checksum FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("registry: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}

// ListCategories returns every registered category ordered by name.
func (db *DB) ListCategories() ([]CategoryRow, error) {
	rows, err := db.conn.Query(`SELECT name, parent, checksum, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("registry: list categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var r CategoryRow
		if err := rows.Scan(&r.Name, &r.Parent, &r.Checksum, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DatatypeOf looks up the registered datatype of a property name.
// A miss is not an error: callers fall back to models.DatatypePage.
func (db *DB) DatatypeOf(name string) (models.Datatype, bool) {
	var dt string
	err := db.conn.QueryRow(`SELECT datatype FROM properties WHERE name = ?`, name).Scan(&dt)
	if err != nil {
		return models.DatatypePage, false
	}
	return models.ParseDatatype(dt), true
}
