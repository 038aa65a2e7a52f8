// Package schemastore supplies raw category schema documents. The
// resolution core treats it as a read-only lookup.
package schemastore

import "github.com/starford/othala/internal/models"

// SchemaInfo is lightweight metadata about one stored schema document.
type SchemaInfo struct {
	Category string
	Path     string
	Checksum string
}

// Provider is the interface for schema document lookup.
type Provider interface {
	// GetSchema returns the raw schema of the named category, or
	// apperr.ErrNotFound when no document exists for it.
	GetSchema(name string) (*models.CategorySchema, error)
	// List returns metadata for every stored schema document.
	List() ([]SchemaInfo, error)
}
