package registry

import (
	"log/slog"
	"time"

	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/schemastore"
)

// Sync walks the schema directory and brings the registry up to date:
//   - new/changed documents are parsed and upserted
//   - documents removed from disk are deleted from the registry
func Sync(db PropertyRegistry, store schemastore.Provider, logger *slog.Logger) error {
	infos, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		disk[info.Category] = struct{}{}

		if checksums[info.Category] == info.Checksum {
			continue
		}

		doc, err := store.GetSchema(info.Category)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("category", info.Category), slog.String("error", err.Error()))
			continue
		}
		if err := registerSchema(db, doc, info.Checksum); err != nil {
			logger.Warn("sync: register failed", slog.String("category", info.Category), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: registered", slog.String("category", info.Category))
		}
	}

	// Remove stale entries.
	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if err := db.DeleteCategory(name); err != nil {
				logger.Warn("sync: delete failed", slog.String("category", name), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("category", name))
			}
		}
	}

	return nil
}

// registerSchema upserts one parsed schema document: the category row
// plus one property row per declaration, top-level and subobject alike.
func registerSchema(db PropertyRegistry, doc *models.CategorySchema, cs string) error {
	var props []PropertyRow
	add := func(p models.PropertyDefinition) {
		props = append(props, PropertyRow{
			Name:     p.Name,
			Datatype: models.ParseDatatype(string(p.Datatype)),
			Multi:    p.Multi,
			Category: doc.Category,
		})
	}
	for _, p := range doc.Properties {
		add(p)
	}
	for _, sub := range doc.Subobjects {
		for _, p := range sub.Properties {
			add(p)
		}
	}

	return db.UpsertCategory(CategoryRow{
		Name:      doc.Category,
		Parent:    doc.Parent,
		Checksum:  cs,
		UpdatedAt: time.Now(),
	}, props)
}
