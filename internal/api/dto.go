package api

import (
	"github.com/starford/othala/internal/generator"
	"github.com/starford/othala/internal/models"
)

// Boolean-valued fields cross the wire as integers (1/0) rather than
// native booleans, for cross-system reliability.

// PropertyDTO is the wire form of a property definition.
type PropertyDTO struct {
	Name     string `json:"name" example:"author" validate:"required"`
	Type     string `json:"type" example:"Page" validate:"required"`
	Required int    `json:"required" example:"1"`
	Multi    int    `json:"multi" example:"0"`
}

// SubobjectDTO is the wire form of a subobject definition.
type SubobjectDTO struct {
	Name       string        `json:"name" example:"edition" validate:"required"`
	Required   int           `json:"required" example:"0"`
	Properties []PropertyDTO `json:"properties"`
}

// WarningDTO is the wire form of a resolution warning.
type WarningDTO struct {
	Kind     string `json:"kind" example:"property"`
	Name     string `json:"name" example:"author"`
	Category string `json:"category" example:"Novel"`
	Message  string `json:"message" example:"promoted to required"`
}

// EffectiveSchemaResponse is the wire form of an effective schema.
type EffectiveSchemaResponse struct {
	Category   string         `json:"category" example:"Novel" validate:"required"`
	Ancestors  []string       `json:"ancestors,omitempty" example:"Book"`
	Properties []PropertyDTO  `json:"properties"`
	Subobjects []SubobjectDTO `json:"subobjects,omitempty"`
	Warnings   []WarningDTO   `json:"warnings,omitempty"`
}

// CategorySliceDTO is one category's share of a composed schema.
type CategorySliceDTO struct {
	Category   string         `json:"category"`
	Properties []PropertyDTO  `json:"properties"`
	Subobjects []SubobjectDTO `json:"subobjects,omitempty"`
}

// ResolveRequest selects the categories to resolve or generate for.
type ResolveRequest struct {
	Categories []string `json:"categories" example:"Person,Employee" validate:"required"`
}

// ResolveResponse is the wire form of a composed schema.
type ResolveResponse struct {
	Slices           []CategorySliceDTO `json:"slices"`
	PropertySources  map[string]string  `json:"property_sources"`
	SubobjectSources map[string]string  `json:"subobject_sources"`
	Warnings         []WarningDTO       `json:"warnings,omitempty"`
}

// UnitDTO is the wire form of a generation unit.
type UnitDTO struct {
	Category   string         `json:"category"`
	Identity   string         `json:"identity"`
	Properties []PropertyDTO  `json:"properties"`
	Subobjects []SubobjectDTO `json:"subobjects,omitempty"`
}

// TemplateDTO is one generated template artifact.
type TemplateDTO struct {
	Category string `json:"category"`
	Identity string `json:"identity"`
	Body     string `json:"body"`
}

// FormDTO is the generated composite form artifact.
type FormDTO struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// GenerateResponse wraps all artifacts of one generation run.
type GenerateResponse struct {
	Name      string        `json:"name"`
	Units     []UnitDTO     `json:"units"`
	Templates []TemplateDTO `json:"templates"`
	Form      FormDTO       `json:"form"`
	Warnings  []WarningDTO  `json:"warnings,omitempty"`
}

// CreatePageRequest is the request body for page creation. Values may
// be single strings or arrays of strings per field.
type CreatePageRequest struct {
	Title      string         `json:"title" example:"The Dispossessed" validate:"required"`
	Categories []string       `json:"categories" validate:"required"`
	Values     map[string]any `json:"values"`
}

// CreatePageResponse is returned after a successful page creation.
type CreatePageResponse struct {
	Path      string       `json:"path" example:"The Dispossessed.wiki"`
	Composite string       `json:"composite" example:"Book_Novel"`
	Warnings  []WarningDTO `json:"warnings,omitempty"`
}

// CategoryListResponse wraps the category catalog.
type CategoryListResponse struct {
	Categories []string `json:"categories"`
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func propertyDTO(p models.PropertyDefinition) PropertyDTO {
	return PropertyDTO{
		Name:     p.Name,
		Type:     string(p.Datatype),
		Required: b2i(p.Required),
		Multi:    b2i(p.Multi),
	}
}

func propertyDTOs(ps []models.PropertyDefinition) []PropertyDTO {
	out := make([]PropertyDTO, len(ps))
	for i, p := range ps {
		out[i] = propertyDTO(p)
	}
	return out
}

func subobjectDTOs(subs []models.SubobjectDefinition) []SubobjectDTO {
	out := make([]SubobjectDTO, len(subs))
	for i, s := range subs {
		out[i] = SubobjectDTO{
			Name:       s.Name,
			Required:   b2i(s.Required),
			Properties: propertyDTOs(s.Properties),
		}
	}
	return out
}

func warningDTOs(ws []models.Warning) []WarningDTO {
	out := make([]WarningDTO, len(ws))
	for i, w := range ws {
		out[i] = WarningDTO(w)
	}
	return out
}

func effectiveSchemaResponse(eff *models.EffectiveSchema) EffectiveSchemaResponse {
	return EffectiveSchemaResponse{
		Category:   eff.Category,
		Ancestors:  eff.Ancestors,
		Properties: propertyDTOs(eff.Properties),
		Subobjects: subobjectDTOs(eff.Subobjects),
		Warnings:   warningDTOs(eff.Warnings),
	}
}

func resolveResponse(cs *models.ComposedSchema) ResolveResponse {
	slices := make([]CategorySliceDTO, len(cs.Slices))
	for i, s := range cs.Slices {
		slices[i] = CategorySliceDTO{
			Category:   s.Category,
			Properties: propertyDTOs(s.Properties),
			Subobjects: subobjectDTOs(s.Subobjects),
		}
	}
	return ResolveResponse{
		Slices:           slices,
		PropertySources:  cs.PropertySources,
		SubobjectSources: cs.SubobjectSources,
		Warnings:         warningDTOs(cs.Warnings),
	}
}

func generateResponse(arts *generator.Artifacts, cs *models.ComposedSchema) GenerateResponse {
	units := make([]UnitDTO, len(arts.Units))
	for i, u := range arts.Units {
		units[i] = UnitDTO{
			Category:   u.Category,
			Identity:   u.Identity,
			Properties: propertyDTOs(u.Properties),
			Subobjects: subobjectDTOs(u.Subobjects),
		}
	}
	templates := make([]TemplateDTO, len(arts.Templates))
	for i, t := range arts.Templates {
		templates[i] = TemplateDTO(t)
	}
	return GenerateResponse{
		Name:      arts.Name,
		Units:     units,
		Templates: templates,
		Form:      FormDTO(arts.Form),
		Warnings:  warningDTOs(cs.Warnings),
	}
}

// normalizeValues coerces the flexible JSON value map into the
// string-list form the page service consumes.
func normalizeValues(in map[string]any) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = []string{val}
		case []any:
			var list []string
			for _, item := range val {
				if s, ok := item.(string); ok {
					list = append(list, s)
				}
			}
			out[k] = list
		}
	}
	return out
}
