package generator

import (
	"sort"
	"strings"
)

// CompositeName joins category names alphabetically with underscores.
// The input order never influences the artifact name.
func CompositeName(categories []string) string {
	sorted := make([]string, len(categories))
	copy(sorted, categories)
	sort.Strings(sorted)
	return strings.Join(sorted, "_")
}
