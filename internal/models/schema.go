// Package models defines the domain types for Othala.
package models

// Datatype is the wiki-global value type of a property.
//
// Property names are globally unique in datatype across the whole system
// (guaranteed upstream), so two categories can never declare the same
// property with different types. Unknown or missing type names fall back
// to DatatypePage.
type Datatype string

// Known datatypes.
const (
	DatatypePage    Datatype = "Page"
	DatatypeText    Datatype = "Text"
	DatatypeNumber  Datatype = "Number"
	DatatypeBoolean Datatype = "Boolean"
	DatatypeDate    Datatype = "Date"
	DatatypeURL     Datatype = "URL"
	DatatypeCode    Datatype = "Code"
)

var knownDatatypes = map[Datatype]struct{}{
	DatatypePage:    {},
	DatatypeText:    {},
	DatatypeNumber:  {},
	DatatypeBoolean: {},
	DatatypeDate:    {},
	DatatypeURL:     {},
	DatatypeCode:    {},
}

// ParseDatatype maps a type name to a Datatype, falling back to
// DatatypePage for empty or unknown names.
func ParseDatatype(s string) Datatype {
	dt := Datatype(s)
	if _, ok := knownDatatypes[dt]; ok {
		return dt
	}
	return DatatypePage
}

// PropertyDefinition describes one property of a category schema.
type PropertyDefinition struct {
	Name     string   `yaml:"name" json:"name"`
	Datatype Datatype `yaml:"type" json:"type"`
	Required bool     `yaml:"required" json:"required"`
	Multi    bool     `yaml:"multi" json:"multi"`
}

// SubobjectDefinition is a named, reusable group of properties nested
// under a category.
type SubobjectDefinition struct {
	Name       string               `yaml:"name" json:"name"`
	Required   bool                 `yaml:"required" json:"required"`
	Properties []PropertyDefinition `yaml:"properties" json:"properties"`
}

// CategorySchema is the raw schema document of one category as supplied
// by the schema store. Read-only to the resolution core.
type CategorySchema struct {
	Category   string                `yaml:"category" json:"category"`
	Parent     string                `yaml:"parent,omitempty" json:"parent,omitempty"`
	Properties []PropertyDefinition  `yaml:"properties" json:"properties"`
	Subobjects []SubobjectDefinition `yaml:"subobjects,omitempty" json:"subobjects,omitempty"`
}

// Warning records a non-fatal resolution event, e.g. a property that was
// declared optional at one level and required at another.
type Warning struct {
	Kind     string `json:"kind"`     // "property" or "subobject"
	Name     string `json:"name"`     // property/subobject name
	Category string `json:"category"` // category whose declaration triggered the event
	Message  string `json:"message"`  // human-readable, e.g. "promoted to required"
}

// EffectiveSchema is the result of merging a category's schema with its
// full ancestor chain. Ancestor declarations come first, the requested
// category's own declarations last; within a level the raw declaration
// order is preserved.
type EffectiveSchema struct {
	Category   string                `json:"category"`
	Ancestors  []string              `json:"ancestors,omitempty"` // root first, direct parent last
	Properties []PropertyDefinition  `json:"properties"`
	Subobjects []SubobjectDefinition `json:"subobjects,omitempty"`
	Warnings   []Warning             `json:"warnings,omitempty"`
}

// CategorySlice is one category's share of a composed schema after
// deduplication: only the properties and subobjects this category owns.
type CategorySlice struct {
	Category   string                `json:"category"`
	Properties []PropertyDefinition  `json:"properties"`
	Subobjects []SubobjectDefinition `json:"subobjects,omitempty"`
}

// ComposedSchema is the result of composing several independently
// resolved effective schemas. Each property/subobject name appears in
// exactly one slice; the source maps record which category owns it.
type ComposedSchema struct {
	Slices           []CategorySlice   `json:"slices"`
	PropertySources  map[string]string `json:"property_sources"`
	SubobjectSources map[string]string `json:"subobject_sources"`
	SharedProperties map[string]bool   `json:"-"` // names declared by more than one selected category
	SharedSubobjects map[string]bool   `json:"-"`
	Warnings         []Warning         `json:"warnings,omitempty"`
}

// Categories returns the selection in composition order.
func (c *ComposedSchema) Categories() []string {
	out := make([]string, len(c.Slices))
	for i, s := range c.Slices {
		out[i] = s.Category
	}
	return out
}

// GenerationUnit is the per-category slice of a composed schema used to
// emit one template and one form section. Shared fields are collapsed
// into the first unit of a selection.
type GenerationUnit struct {
	Category   string                `json:"category"`
	Identity   string                `json:"identity"` // category name + digest of the ordered field set
	Properties []PropertyDefinition  `json:"properties"`
	Subobjects []SubobjectDefinition `json:"subobjects,omitempty"`
}
