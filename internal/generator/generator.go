// Package generator consumes a composed schema and emits generation
// artifacts: per-category entity templates and one composite creation
// form.
package generator

import (
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/models"
)

// Artifacts is the full output of one generation run.
type Artifacts struct {
	// Name joins the selected category names alphabetically, so the
	// same selection always names the same artifact regardless of
	// resolution input order.
	Name      string                  `json:"name"`
	Units     []models.GenerationUnit `json:"units"`
	Templates []Template              `json:"templates"`
	Form      Form                    `json:"form"`
}

// Template is one generated entity template body.
type Template struct {
	Category string `json:"category"`
	Identity string `json:"identity"`
	Body     string `json:"body"`
}

// Form is the generated composite creation form.
type Form struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Generate builds one generation unit per category in composition order
// and emits the template and form artifacts for them.
func Generate(cs *models.ComposedSchema) *Artifacts {
	units := Units(cs)
	templates := make([]Template, len(units))
	for i, u := range units {
		templates[i] = Template{
			Category: u.Category,
			Identity: u.Identity,
			Body:     templateBody(u),
		}
	}
	name := CompositeName(cs.Categories())
	return &Artifacts{
		Name:      name,
		Units:     units,
		Templates: templates,
		Form:      Form{Name: name, Body: formBody(name, units)},
	}
}

// Units slices the composed schema into generation units, one per
// category. Fields declared by more than one selected category are
// placed in the first unit only; later units keep just their
// exclusively-owned fields.
func Units(cs *models.ComposedSchema) []models.GenerationUnit {
	units := make([]models.GenerationUnit, len(cs.Slices))
	for i, s := range cs.Slices {
		units[i] = models.GenerationUnit{Category: s.Category}
	}

	for i, s := range cs.Slices {
		for _, p := range s.Properties {
			target := i
			if cs.SharedProperties[p.Name] {
				target = 0
			}
			units[target].Properties = append(units[target].Properties, p)
		}
		for _, sub := range s.Subobjects {
			target := i
			if cs.SharedSubobjects[sub.Name] {
				target = 0
			}
			units[target].Subobjects = append(units[target].Subobjects, sub)
		}
	}

	for i := range units {
		units[i].Identity = identityKey(units[i])
	}
	return units
}

// identityKey derives the deterministic per-unit identity: the category
// name plus a digest of the unit's ordered field names. Two units with
// the same category but different field sets get distinct identities.
func identityKey(u models.GenerationUnit) string {
	parts := []string{u.Category}
	for _, p := range u.Properties {
		parts = append(parts, "p:"+p.Name)
	}
	for _, s := range u.Subobjects {
		parts = append(parts, "s:"+s.Name)
	}
	return u.Category + "-" + checksum.SumStrings(parts)[:16]
}
