package resolver

import (
	"fmt"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// Multi composes several independently resolved effective schemas into
// one deduplicated set with source attribution. It holds an Inheritance
// capability and calls it per category; category relationships are data,
// never Go type structure.
type Multi struct {
	inh *Inheritance
}

// NewMulti creates a multi-category resolver on top of inh.
func NewMulti(inh *Inheritance) *Multi {
	return &Multi{inh: inh}
}

// position locates a property/subobject inside the composed slices.
type position struct {
	slice, idx int
}

// ResolveAll resolves every named category and composes the results in
// input order. The first category declaring a name becomes its sole
// owner; later declarations are dropped from their own slice but still
// contribute to required-flag promotion on the owner's copy.
//
// ResolveAll performs no implicit reordering: callers wanting a
// selection-independent default order must pre-sort the names.
func (m *Multi) ResolveAll(names []string) (*models.ComposedSchema, error) {
	if len(names) == 0 {
		return nil, apperr.ErrEmptySelection
	}

	composed := &models.ComposedSchema{
		Slices:           make([]models.CategorySlice, 0, len(names)),
		PropertySources:  make(map[string]string),
		SubobjectSources: make(map[string]string),
		SharedProperties: make(map[string]bool),
		SharedSubobjects: make(map[string]bool),
	}
	propAt := make(map[string]position)
	subAt := make(map[string]position)

	for _, name := range names {
		eff, err := m.inh.Resolve(name)
		if err != nil {
			// All-or-nothing: one bad category fails the whole selection.
			return nil, fmt.Errorf("compose: %w", err)
		}
		composed.Warnings = append(composed.Warnings, eff.Warnings...)

		si := len(composed.Slices)
		composed.Slices = append(composed.Slices, models.CategorySlice{Category: eff.Category})
		cur := &composed.Slices[si]

		for _, p := range eff.Properties {
			if at, ok := propAt[p.Name]; ok {
				composed.SharedProperties[p.Name] = true
				owned := &composed.Slices[at.slice].Properties[at.idx]
				merged, changed := promote(owned.Required, p.Required)
				owned.Required = merged
				owned.Multi = owned.Multi || p.Multi
				if changed {
					composed.Warnings = append(composed.Warnings, models.Warning{
						Kind:     "property",
						Name:     p.Name,
						Category: eff.Category,
						Message:  promotedMessage,
					})
				}
				continue
			}
			propAt[p.Name] = position{slice: si, idx: len(cur.Properties)}
			cur.Properties = append(cur.Properties, p)
			composed.PropertySources[p.Name] = eff.Category
		}

		// Subobjects are handled symmetrically to properties: same dedup,
		// same promotion, same source map.
		for _, sub := range eff.Subobjects {
			if at, ok := subAt[sub.Name]; ok {
				composed.SharedSubobjects[sub.Name] = true
				owned := &composed.Slices[at.slice].Subobjects[at.idx]
				merged, changed := promote(owned.Required, sub.Required)
				owned.Required = merged
				if changed {
					composed.Warnings = append(composed.Warnings, models.Warning{
						Kind:     "subobject",
						Name:     sub.Name,
						Category: eff.Category,
						Message:  promotedMessage,
					})
				}
				mergeSubProperties(owned, sub, eff.Category, composed)
				continue
			}
			subAt[sub.Name] = position{slice: si, idx: len(cur.Subobjects)}
			cur.Subobjects = append(cur.Subobjects, sub)
			composed.SubobjectSources[sub.Name] = eff.Category
		}
	}

	return composed, nil
}

// mergeSubProperties folds a later declaration's nested properties into
// the owning subobject: unseen names are appended, seen names only
// promote the required flag.
func mergeSubProperties(owned *models.SubobjectDefinition, later models.SubobjectDefinition, category string, composed *models.ComposedSchema) {
	byName := make(map[string]int, len(owned.Properties))
	for i, p := range owned.Properties {
		byName[p.Name] = i
	}
	for _, p := range later.Properties {
		if i, ok := byName[p.Name]; ok {
			existing := &owned.Properties[i]
			merged, changed := promote(existing.Required, p.Required)
			existing.Required = merged
			existing.Multi = existing.Multi || p.Multi
			if changed {
				composed.Warnings = append(composed.Warnings, models.Warning{
					Kind:     "property",
					Name:     p.Name,
					Category: category,
					Message:  promotedMessage,
				})
			}
			continue
		}
		byName[p.Name] = len(owned.Properties)
		owned.Properties = append(owned.Properties, p)
	}
}
