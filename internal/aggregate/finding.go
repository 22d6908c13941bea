package aggregate

import "github.com/convlint/convlint/internal/catalog"

// Finding is the user-facing unit: one or more deduplicated matches collapsed
// to a single severity-ranked entry. Immutable once emitted.
type Finding struct {
	RuleID      string           `json:"rule_id"`
	Catalog     string           `json:"catalog"`
	Domain      string           `json:"domain"`
	Severity    catalog.Severity `json:"severity"`
	FilePath    string           `json:"file_path"`
	Line        int              `json:"line"`
	Title       string           `json:"title"`
	Remediation string           `json:"remediation,omitempty"`
	ExampleRef  string           `json:"example_ref,omitempty"`
}
