package resolver

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/schemastore"
)

// memStore is an in-memory schemastore.Provider for tests.
type memStore map[string]*models.CategorySchema

func (m memStore) GetSchema(name string) (*models.CategorySchema, error) {
	s, ok := m[name]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	// Return a copy so resolution never mutates the fixture.
	cp := *s
	cp.Properties = append([]models.PropertyDefinition(nil), s.Properties...)
	cp.Subobjects = append([]models.SubobjectDefinition(nil), s.Subobjects...)
	return &cp, nil
}

func (m memStore) List() ([]schemastore.SchemaInfo, error) {
	var out []schemastore.SchemaInfo
	for name := range m {
		out = append(out, schemastore.SchemaInfo{Category: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// memTypes is an in-memory DatatypeLookup for tests.
type memTypes map[string]models.Datatype

func (m memTypes) DatatypeOf(name string) (models.Datatype, bool) {
	dt, ok := m[name]
	if !ok {
		return models.DatatypePage, false
	}
	return dt, true
}

func prop(name string, dt models.Datatype, required bool) models.PropertyDefinition {
	return models.PropertyDefinition{Name: name, Datatype: dt, Required: required}
}

func bookNovelStore() memStore {
	return memStore{
		"Book": {
			Category: "Book",
			Properties: []models.PropertyDefinition{
				prop("title", models.DatatypeText, true),
				prop("author", models.DatatypePage, false),
			},
		},
		"Novel": {
			Category: "Novel",
			Parent:   "Book",
			Properties: []models.PropertyDefinition{
				prop("genre", models.DatatypeText, false),
				prop("author", models.DatatypePage, true),
			},
		},
	}
}

func TestResolve_NoParentReturnsOwnSchema(t *testing.T) {
	r := NewInheritance(bookNovelStore(), nil)
	eff, err := r.Resolve("Book")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []models.PropertyDefinition{
		prop("title", models.DatatypeText, true),
		prop("author", models.DatatypePage, false),
	}
	if !reflect.DeepEqual(eff.Properties, want) {
		t.Errorf("properties = %+v, want %+v", eff.Properties, want)
	}
	if len(eff.Ancestors) != 0 {
		t.Errorf("ancestors = %v, want none", eff.Ancestors)
	}
	if len(eff.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", eff.Warnings)
	}
}

func TestResolve_InheritedWithPromotion(t *testing.T) {
	r := NewInheritance(bookNovelStore(), nil)
	eff, err := r.Resolve("Novel")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Ancestor properties first, own properties appended.
	want := []models.PropertyDefinition{
		prop("title", models.DatatypeText, true),
		prop("author", models.DatatypePage, true), // promoted
		prop("genre", models.DatatypeText, false),
	}
	if !reflect.DeepEqual(eff.Properties, want) {
		t.Errorf("properties = %+v, want %+v", eff.Properties, want)
	}

	if len(eff.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", eff.Warnings)
	}
	w := eff.Warnings[0]
	if w.Name != "author" || w.Message != "promoted to required" || w.Category != "Novel" {
		t.Errorf("warning = %+v", w)
	}

	if !reflect.DeepEqual(eff.Ancestors, []string{"Book"}) {
		t.Errorf("ancestors = %v, want [Book]", eff.Ancestors)
	}
}

func TestResolve_PromotionIsMonotonic(t *testing.T) {
	// required at the ancestor, optional at the descendant: still required.
	store := memStore{
		"Base": {
			Category:   "Base",
			Properties: []models.PropertyDefinition{prop("name", models.DatatypeText, true)},
		},
		"Derived": {
			Category:   "Derived",
			Parent:     "Base",
			Properties: []models.PropertyDefinition{prop("name", models.DatatypeText, false)},
		},
	}
	r := NewInheritance(store, nil)
	eff, err := r.Resolve("Derived")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(eff.Properties) != 1 || !eff.Properties[0].Required {
		t.Errorf("properties = %+v, want single required name", eff.Properties)
	}
	if len(eff.Warnings) != 1 {
		t.Errorf("warnings = %v, want one promotion", eff.Warnings)
	}
}

func TestResolve_DeepChainOrdering(t *testing.T) {
	store := memStore{
		"A": {Category: "A", Properties: []models.PropertyDefinition{prop("a", models.DatatypeText, false)}},
		"B": {Category: "B", Parent: "A", Properties: []models.PropertyDefinition{prop("b", models.DatatypeText, false)}},
		"C": {Category: "C", Parent: "B", Properties: []models.PropertyDefinition{prop("c", models.DatatypeText, false)}},
	}
	r := NewInheritance(store, nil)
	eff, err := r.Resolve("C")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	var names []string
	for _, p := range eff.Properties {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"a", "b", "c"}) {
		t.Errorf("order = %v, want [a b c]", names)
	}
	if !reflect.DeepEqual(eff.Ancestors, []string{"A", "B"}) {
		t.Errorf("ancestors = %v, want [A B] (root first)", eff.Ancestors)
	}
}

func TestResolve_UnknownCategory(t *testing.T) {
	r := NewInheritance(memStore{}, nil)
	_, err := r.Resolve("Ghost")
	if !errors.Is(err, apperr.ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestResolve_MissingParentIsUnknown(t *testing.T) {
	store := memStore{
		"Child": {Category: "Child", Parent: "Gone"},
	}
	r := NewInheritance(store, nil)
	_, err := r.Resolve("Child")
	if !errors.Is(err, apperr.ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestResolve_CyclicInheritance(t *testing.T) {
	store := memStore{
		"A": {Category: "A", Parent: "B"},
		"B": {Category: "B", Parent: "A"},
	}
	r := NewInheritance(store, nil)
	_, err := r.Resolve("A")
	if !errors.Is(err, apperr.ErrCyclicInheritance) {
		t.Errorf("err = %v, want ErrCyclicInheritance", err)
	}

	// Self-parent is the degenerate cycle.
	store["Self"] = &models.CategorySchema{Category: "Self", Parent: "Self"}
	if _, err := r.Resolve("Self"); !errors.Is(err, apperr.ErrCyclicInheritance) {
		t.Errorf("self-parent err = %v, want ErrCyclicInheritance", err)
	}
}

func TestResolve_DatatypeFallback(t *testing.T) {
	store := memStore{
		"Thing": {
			Category: "Thing",
			Properties: []models.PropertyDefinition{
				{Name: "registered"},            // found in registry
				{Name: "stray"},                 // registry miss: Page
				{Name: "odd", Datatype: "Blob"}, // unknown type name: Page
			},
		},
	}
	types := memTypes{"registered": models.DatatypeNumber}
	r := NewInheritance(store, types)
	eff, err := r.Resolve("Thing")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := map[string]models.Datatype{}
	for _, p := range eff.Properties {
		got[p.Name] = p.Datatype
	}
	if got["registered"] != models.DatatypeNumber {
		t.Errorf("registered = %v, want Number", got["registered"])
	}
	if got["stray"] != models.DatatypePage {
		t.Errorf("stray = %v, want Page", got["stray"])
	}
	if got["odd"] != models.DatatypePage {
		t.Errorf("odd = %v, want Page", got["odd"])
	}
}

func TestResolve_SubobjectPromotion(t *testing.T) {
	store := memStore{
		"Base": {
			Category: "Base",
			Subobjects: []models.SubobjectDefinition{{
				Name:       "edition",
				Properties: []models.PropertyDefinition{prop("year", models.DatatypeNumber, false)},
			}},
		},
		"Derived": {
			Category: "Derived",
			Parent:   "Base",
			Subobjects: []models.SubobjectDefinition{{
				Name:       "edition",
				Required:   true,
				Properties: []models.PropertyDefinition{prop("publisher", models.DatatypePage, false)},
			}},
		},
	}
	r := NewInheritance(store, nil)
	eff, err := r.Resolve("Derived")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(eff.Subobjects) != 1 {
		t.Fatalf("subobjects = %+v, want one merged", eff.Subobjects)
	}
	sub := eff.Subobjects[0]
	if !sub.Required {
		t.Errorf("subobject not promoted to required")
	}
	var names []string
	for _, p := range sub.Properties {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"year", "publisher"}) {
		t.Errorf("nested order = %v, want [year publisher]", names)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewInheritance(bookNovelStore(), nil)
	first, err := r.Resolve("Novel")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := r.Resolve("Novel")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolutions differ:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}
