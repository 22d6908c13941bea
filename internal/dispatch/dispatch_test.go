package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convlint/convlint/internal/catalog"
	"github.com/convlint/convlint/internal/extract"
)

func mustCatalog(t *testing.T, yaml string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(yaml), "test.yaml")
	require.NoError(t, err)
	return c
}

func unitWithImports(imports ...string) *extract.SourceUnit {
	unit := &extract.SourceUnit{Path: "unit.py"}
	for i, imp := range imports {
		unit.Signals = append(unit.Signals, extract.Signal{Kind: extract.KindImport, Value: imp, Line: i + 1})
	}
	return unit
}

const asyncWebCatalog = `catalog: async-web
version: "1.0"
rules:
  - id: R1
    domain: async-web
    severity: fail
    trigger_signature: [async_framework_import]
    predicate: call_site(requests.get) within async_function
    title: Blocking HTTP call in async handler
`

const retrievalCatalog = `catalog: retrieval-pipeline
version: "1.0"
rules:
  - id: P1
    domain: retrieval-pipeline
    severity: warn
    trigger_signature: [langchain, llama_index]
    predicate: import_present(pickle)
    title: Unsafe index deserialization
`

func TestApplicable(t *testing.T) {
	catalogs := []*catalog.Catalog{
		mustCatalog(t, asyncWebCatalog),
		mustCatalog(t, retrievalCatalog),
	}

	testCases := []struct {
		name     string
		imports  []string
		force    string
		expected []string
	}{
		{
			name:     "alias expansion matches fastapi",
			imports:  []string{"fastapi"},
			expected: []string{"async-web"},
		},
		{
			name:     "submodule import matches prefix",
			imports:  []string{"langchain.chains"},
			expected: []string{"retrieval-pipeline"},
		},
		{
			name:     "mixed imports match several catalogs",
			imports:  []string{"aiohttp", "llama_index"},
			expected: []string{"async-web", "retrieval-pipeline"},
		},
		{
			name:     "no trigger intersection matches nothing",
			imports:  []string{"flask", "numpy"},
			expected: nil,
		},
		{
			name:     "prefix must align on dotted boundary",
			imports:  []string{"langchainx"},
			expected: nil,
		},
		{
			name:     "force overrides detection",
			imports:  []string{"numpy"},
			force:    "retrieval-pipeline",
			expected: []string{"retrieval-pipeline"},
		},
		{
			name:     "force adds to detected catalogs",
			imports:  []string{"fastapi"},
			force:    "retrieval-pipeline",
			expected: []string{"async-web", "retrieval-pipeline"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			applicable := Applicable(unitWithImports(tc.imports...), catalogs, tc.force)
			names := []string{}
			for _, c := range applicable {
				names = append(names, c.Name)
			}
			if tc.expected == nil {
				assert.Empty(t, names)
			} else {
				assert.Equal(t, tc.expected, names)
			}
		})
	}
}
