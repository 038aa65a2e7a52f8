package schemastore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/models"
)

// FS implements Provider backed by a directory of YAML schema documents,
// one file per category (<name>.yaml or <name>.yml).
type FS struct {
	root string // absolute path to the schema directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("schemastore: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("schemastore: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schemastore: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a category name to an absolute document path and
// rejects names that would escape the schema root.
func (f *FS) safePath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned == "." || filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("schemastore: invalid category name: %q", name)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("schemastore: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("schemastore: path escapes schema root: %q", name)
	}
	return abs, nil
}

// GetSchema reads and parses the document for the named category.
func (f *FS) GetSchema(name string) (*models.CategorySchema, error) {
	var data []byte
	var readErr error
	for _, ext := range []string{".yaml", ".yml"} {
		abs, err := f.safePath(name + ext)
		if err != nil {
			return nil, err
		}
		data, readErr = os.ReadFile(abs)
		if readErr == nil {
			break
		}
	}
	if readErr != nil {
		return nil, fmt.Errorf("schemastore: %s: %w", name, apperr.ErrNotFound)
	}
	return Parse(name, data)
}

// List walks the schema root and returns metadata for every document.
// Results are sorted by category name for deterministic iteration.
func (f *FS) List() ([]SchemaInfo, error) {
	var out []SchemaInfo
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isSchemaFile(d.Name()) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, SchemaInfo{
			Category: CategoryFromPath(rel),
			Path:     rel,
			Checksum: checksum.Sum(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("schemastore: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// Parse decodes a YAML schema document. The category field defaults to
// the file-derived name when the document omits it; property datatypes
// are left as written (normalization happens during resolution).
func Parse(name string, data []byte) (*models.CategorySchema, error) {
	var doc models.CategorySchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemastore: parse %s: %w", name, err)
	}
	if doc.Category == "" {
		doc.Category = name
	}
	return &doc, nil
}

// CategoryFromPath derives a category name from a document path
// relative to the schema root.
func CategoryFromPath(rel string) string {
	base := filepath.Base(rel)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base
}

func isSchemaFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
