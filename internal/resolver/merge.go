package resolver

import "github.com/starford/othala/internal/models"

// promotedMessage is the wording exposed to callers when an
// optional/required conflict is resolved.
const promotedMessage = "promoted to required"

// promote merges two required flags over the lattice optional < required.
// changed reports whether the two declarations disagreed, i.e. whether a
// promotion warning should be recorded.
func promote(a, b bool) (merged, changed bool) {
	return a || b, a != b
}

// propMerger accumulates property declarations for a sequence of
// categories, deduplicating by name. The first declaration of a name
// fixes its position and owner; later declarations of the same name only
// contribute to required-flag promotion.
type propMerger struct {
	byName   map[string]int
	props    []models.PropertyDefinition
	owners   []string
	warnings []models.Warning
}

func newPropMerger() *propMerger {
	return &propMerger{byName: make(map[string]int)}
}

// add merges one declaration made by category into the accumulated set.
// It returns true when the name was first seen (category becomes owner).
func (m *propMerger) add(category string, p models.PropertyDefinition) bool {
	if i, ok := m.byName[p.Name]; ok {
		existing := &m.props[i]
		merged, changed := promote(existing.Required, p.Required)
		existing.Required = merged
		existing.Multi = existing.Multi || p.Multi
		if changed {
			m.warnings = append(m.warnings, models.Warning{
				Kind:     "property",
				Name:     p.Name,
				Category: category,
				Message:  promotedMessage,
			})
		}
		return false
	}
	m.byName[p.Name] = len(m.props)
	m.props = append(m.props, p)
	m.owners = append(m.owners, category)
	return true
}

// subMerger is the subobject counterpart of propMerger. Subobjects
// follow the same dedup and promotion rules as top-level properties;
// their nested property lists are merged with a nested propMerger each.
type subMerger struct {
	byName   map[string]int
	subs     []models.SubobjectDefinition
	nested   []*propMerger
	owners   []string
	warnings []models.Warning
}

func newSubMerger() *subMerger {
	return &subMerger{byName: make(map[string]int)}
}

func (m *subMerger) add(category string, s models.SubobjectDefinition) bool {
	if i, ok := m.byName[s.Name]; ok {
		existing := &m.subs[i]
		merged, changed := promote(existing.Required, s.Required)
		existing.Required = merged
		if changed {
			m.warnings = append(m.warnings, models.Warning{
				Kind:     "subobject",
				Name:     s.Name,
				Category: category,
				Message:  promotedMessage,
			})
		}
		for _, p := range s.Properties {
			m.nested[i].add(category, p)
		}
		return false
	}
	m.byName[s.Name] = len(m.subs)
	nested := newPropMerger()
	for _, p := range s.Properties {
		nested.add(category, p)
	}
	m.subs = append(m.subs, s)
	m.nested = append(m.nested, nested)
	m.owners = append(m.owners, category)
	return true
}

// result materializes the merged subobjects with their merged nested
// property lists, and collects nested promotion warnings.
func (m *subMerger) result() ([]models.SubobjectDefinition, []models.Warning) {
	out := make([]models.SubobjectDefinition, len(m.subs))
	warnings := m.warnings
	for i, s := range m.subs {
		s.Properties = m.nested[i].props
		out[i] = s
		warnings = append(warnings, m.nested[i].warnings...)
	}
	return out, warnings
}
