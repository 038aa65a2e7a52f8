package generator

import (
	"fmt"
	"strings"

	"github.com/starford/othala/internal/models"
)

// RenderPage renders the initial page body for a selection: one
// template call per generation unit with the supplied field values,
// followed by one category tag per unit. Parameters with no value are
// omitted entirely; multi-values are joined with the separator marker.
func RenderPage(units []models.GenerationUnit, values map[string][]string) string {
	var b strings.Builder

	for _, u := range units {
		b.WriteString("{{" + u.Category)
		for _, p := range u.Properties {
			writeParam(&b, p.Name, values[p.Name])
		}
		for _, sub := range u.Subobjects {
			for _, p := range sub.Properties {
				param := SubobjectParam(sub.Name, p.Name)
				writeParam(&b, param, values[param])
			}
		}
		b.WriteString("\n}}\n")
	}

	b.WriteString("\n")
	for _, u := range units {
		b.WriteString(fmt.Sprintf("[[Category:%s]]\n", u.Category))
	}
	return b.String()
}

func writeParam(b *strings.Builder, name string, vals []string) {
	var nonEmpty []string
	for _, v := range vals {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n|%s=%s", name, strings.Join(nonEmpty, MultiValueSeparator)))
}
