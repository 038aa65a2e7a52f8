// Package testutil provides shared test helpers for setting up schema
// directories and registry databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/othala/internal/registry"
	"github.com/starford/othala/internal/schemastore"
)

// TestRegistry creates a temporary SQLite registry that is automatically
// cleaned up.
func TestRegistry(t *testing.T) *registry.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "othala-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := registry.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSchemaDir creates a temporary schema directory with a schemastore
// provider.
func TestSchemaDir(t *testing.T) (string, *schemastore.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := schemastore.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteSchema writes one schema document into dir.
func WriteSchema(t *testing.T, dir, category, doc string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, category+".yaml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}
