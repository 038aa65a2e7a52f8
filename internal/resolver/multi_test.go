package resolver

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

func personEmployeeStore() memStore {
	return memStore{
		"Person": {
			Category: "Person",
			Properties: []models.PropertyDefinition{
				prop("name", models.DatatypeText, true),
				prop("birthdate", models.DatatypeDate, false),
			},
		},
		"Employee": {
			Category: "Employee",
			Properties: []models.PropertyDefinition{
				prop("name", models.DatatypeText, true),
				prop("employer", models.DatatypePage, true),
			},
		},
	}
}

func newTestMulti(store memStore) *Multi {
	return NewMulti(NewInheritance(store, nil))
}

func TestResolveAll_EmptySelection(t *testing.T) {
	m := newTestMulti(memStore{})
	if _, err := m.ResolveAll(nil); !errors.Is(err, apperr.ErrEmptySelection) {
		t.Errorf("err = %v, want ErrEmptySelection", err)
	}
}

func TestResolveAll_UnknownCategoryFailsWhole(t *testing.T) {
	m := newTestMulti(personEmployeeStore())
	_, err := m.ResolveAll([]string{"Person", "Ghost"})
	if !errors.Is(err, apperr.ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestResolveAll_FirstOwnerWins(t *testing.T) {
	m := newTestMulti(personEmployeeStore())
	composed, err := m.ResolveAll([]string{"Person", "Employee"})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	if got := composed.Categories(); !reflect.DeepEqual(got, []string{"Person", "Employee"}) {
		t.Fatalf("categories = %v", got)
	}

	// name appears once, owned by Person.
	var personNames, employeeNames []string
	for _, p := range composed.Slices[0].Properties {
		personNames = append(personNames, p.Name)
	}
	for _, p := range composed.Slices[1].Properties {
		employeeNames = append(employeeNames, p.Name)
	}
	if !reflect.DeepEqual(personNames, []string{"name", "birthdate"}) {
		t.Errorf("Person slice = %v", personNames)
	}
	if !reflect.DeepEqual(employeeNames, []string{"employer"}) {
		t.Errorf("Employee slice = %v", employeeNames)
	}

	if composed.PropertySources["name"] != "Person" {
		t.Errorf("source[name] = %q, want Person", composed.PropertySources["name"])
	}
	if !composed.SharedProperties["name"] {
		t.Errorf("name not marked shared")
	}
	if composed.SharedProperties["birthdate"] {
		t.Errorf("birthdate wrongly marked shared")
	}
}

func TestResolveAll_EachNameInExactlyOneSlice(t *testing.T) {
	m := newTestMulti(personEmployeeStore())
	composed, err := m.ResolveAll([]string{"Employee", "Person"})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	seen := map[string]int{}
	for _, s := range composed.Slices {
		for _, p := range s.Properties {
			seen[p.Name]++
		}
	}
	for name, count := range seen {
		if count != 1 {
			t.Errorf("%s appears %d times across slices", name, count)
		}
	}
	// Reversed order: Employee owns name now.
	if composed.PropertySources["name"] != "Employee" {
		t.Errorf("source[name] = %q, want Employee", composed.PropertySources["name"])
	}
}

func TestResolveAll_CrossCategoryPromotion(t *testing.T) {
	store := memStore{
		"Draft": {
			Category:   "Draft",
			Properties: []models.PropertyDefinition{prop("status", models.DatatypeText, false)},
		},
		"Published": {
			Category:   "Published",
			Properties: []models.PropertyDefinition{prop("status", models.DatatypeText, true)},
		},
	}
	m := newTestMulti(store)
	composed, err := m.ResolveAll([]string{"Draft", "Published"})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	// Draft owns status, but Published's declaration promotes it.
	owned := composed.Slices[0].Properties[0]
	if owned.Name != "status" || !owned.Required {
		t.Errorf("owned = %+v, want required status", owned)
	}
	if len(composed.Warnings) != 1 {
		t.Fatalf("warnings = %+v, want exactly one", composed.Warnings)
	}
	w := composed.Warnings[0]
	if w.Name != "status" || w.Category != "Published" || w.Message != "promoted to required" {
		t.Errorf("warning = %+v", w)
	}
}

func TestResolveAll_SubobjectsSymmetric(t *testing.T) {
	store := memStore{
		"Album": {
			Category: "Album",
			Subobjects: []models.SubobjectDefinition{{
				Name:       "track",
				Properties: []models.PropertyDefinition{prop("length", models.DatatypeNumber, false)},
			}},
		},
		"Release": {
			Category: "Release",
			Subobjects: []models.SubobjectDefinition{{
				Name:       "track",
				Required:   true,
				Properties: []models.PropertyDefinition{prop("isrc", models.DatatypeText, false)},
			}},
		},
	}
	m := newTestMulti(store)
	composed, err := m.ResolveAll([]string{"Album", "Release"})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	if len(composed.Slices[0].Subobjects) != 1 || len(composed.Slices[1].Subobjects) != 0 {
		t.Fatalf("slices = %+v, want track owned by Album only", composed.Slices)
	}
	track := composed.Slices[0].Subobjects[0]
	if !track.Required {
		t.Errorf("track not promoted to required")
	}
	var names []string
	for _, p := range track.Properties {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"length", "isrc"}) {
		t.Errorf("nested properties = %v", names)
	}
	if composed.SubobjectSources["track"] != "Album" {
		t.Errorf("subobject source = %q, want Album", composed.SubobjectSources["track"])
	}
	if !composed.SharedSubobjects["track"] {
		t.Errorf("track not marked shared")
	}
}

func TestResolveAll_InheritedSchemasCompose(t *testing.T) {
	store := bookNovelStore()
	store["Person"] = &models.CategorySchema{
		Category:   "Person",
		Properties: []models.PropertyDefinition{prop("name", models.DatatypeText, true)},
	}
	m := newTestMulti(store)
	composed, err := m.ResolveAll([]string{"Novel", "Person"})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	// Novel's slice carries the full inherited set (title from Book).
	var novelNames []string
	for _, p := range composed.Slices[0].Properties {
		novelNames = append(novelNames, p.Name)
	}
	if !reflect.DeepEqual(novelNames, []string{"title", "author", "genre"}) {
		t.Errorf("Novel slice = %v", novelNames)
	}
	// The inheritance-level promotion warning survives composition.
	found := false
	for _, w := range composed.Warnings {
		if w.Name == "author" && w.Message == "promoted to required" {
			found = true
		}
	}
	if !found {
		t.Errorf("author promotion warning missing: %+v", composed.Warnings)
	}
}

func TestResolveAll_Idempotent(t *testing.T) {
	m := newTestMulti(personEmployeeStore())
	first, err := m.ResolveAll([]string{"Person", "Employee"})
	if err != nil {
		t.Fatalf("first ResolveAll: %v", err)
	}
	second, err := m.ResolveAll([]string{"Person", "Employee"})
	if err != nil {
		t.Fatalf("second ResolveAll: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("compositions differ:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}
