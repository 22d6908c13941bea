// Package dispatch decides which catalogs apply to a source unit by
// intersecting the unit's detected import signals with each catalog's
// declared trigger signatures.
package dispatch

import (
	"strings"

	"github.com/convlint/convlint/internal/catalog"
	"github.com/convlint/convlint/internal/extract"
)

// Applicable returns the catalogs whose trigger signatures intersect the
// unit's import signals. A force override selects its catalog regardless of
// detection. A unit may match zero, one, or several catalogs; each one is
// evaluated independently downstream.
func Applicable(unit *extract.SourceUnit, catalogs []*catalog.Catalog, force string) []*catalog.Catalog {
	imports := unit.Imports()

	var out []*catalog.Catalog
	for _, c := range catalogs {
		if c.Name == force || triggered(c, imports) {
			out = append(out, c)
		}
	}
	return out
}

func triggered(c *catalog.Catalog, imports []string) bool {
	for _, sig := range c.TriggerSignatures() {
		for _, prefix := range catalog.ExpandTrigger(sig) {
			for _, imp := range imports {
				if importMatches(imp, prefix) {
					return true
				}
			}
		}
	}
	return false
}

// importMatches treats a trigger as a dotted-path prefix: "langchain"
// matches both "langchain" and "langchain.chains".
func importMatches(imp, prefix string) bool {
	return imp == prefix || strings.HasPrefix(imp, prefix+".")
}
