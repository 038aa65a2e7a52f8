package generator

import (
	"fmt"
	"strings"

	"github.com/starford/othala/internal/models"
)

// formBody emits the composite creation form: one template section per
// generation unit, rendered in unit order so shared fields appear once
// in the first section.
func formBody(name string, units []models.GenerationUnit) string {
	var b strings.Builder

	b.WriteString("<noinclude>\nThis is the \"" + name + "\" form.\n</noinclude><includeonly>\n")
	b.WriteString("{{{info|page name=<page name>}}}\n")

	for _, u := range units {
		if len(u.Properties) == 0 && len(u.Subobjects) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("{{{for template|%s}}}\n", u.Category))
		b.WriteString("{| class=\"formtable\"\n")
		for _, p := range u.Properties {
			b.WriteString("! " + p.Name + ":\n")
			b.WriteString("| " + fieldSpec(p.Name, p) + "\n")
		}
		for _, sub := range u.Subobjects {
			for _, p := range sub.Properties {
				label := sub.Name + " " + p.Name
				b.WriteString("! " + label + ":\n")
				sp := p
				sp.Required = sp.Required && sub.Required
				b.WriteString("| " + fieldSpec(SubobjectParam(sub.Name, p.Name), sp) + "\n")
			}
		}
		b.WriteString("|}\n{{{end template}}}\n")
	}

	b.WriteString("{{{standard input|save}}} {{{standard input|cancel}}}\n</includeonly>\n")
	return b.String()
}

// fieldSpec renders one form field declaration with its input type,
// mandatory marker, and list handling.
func fieldSpec(param string, p models.PropertyDefinition) string {
	parts := []string{"field", param}
	if input := inputType(p.Datatype); input != "" {
		parts = append(parts, "input type="+input)
	}
	if p.Required {
		parts = append(parts, "mandatory")
	}
	if p.Multi {
		parts = append(parts, "list", "delimiter="+MultiValueSeparator)
	}
	return "{{{" + strings.Join(parts, "|") + "}}}"
}

// inputType maps a datatype to the form input widget. Page-valued
// fields autocomplete on existing pages; Text uses the default input.
func inputType(dt models.Datatype) string {
	switch dt {
	case models.DatatypePage:
		return "combobox"
	case models.DatatypeBoolean:
		return "checkbox"
	case models.DatatypeDate:
		return "datepicker"
	case models.DatatypeCode:
		return "textarea"
	default:
		return ""
	}
}
