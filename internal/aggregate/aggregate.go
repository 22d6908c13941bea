// Package aggregate collapses raw matches into deduplicated, severity-ranked
// findings with a deterministic, diff-stable ordering.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/convlint/convlint/internal/match"
)

// Aggregate deduplicates matches by (rule id, unit path, line) and sorts the
// resulting findings by severity descending, then unit path, then rule id.
// Two different rules firing at the same location both surface; only repeats
// of the same rule at the same location collapse.
func Aggregate(matches []match.Match) []Finding {
	seen := make(map[string]bool)
	findings := make([]Finding, 0, len(matches))

	for _, m := range matches {
		key := fmt.Sprintf("%s|%s|%d", m.Rule.ID, m.Unit.Path, m.Line)
		if seen[key] {
			continue
		}
		seen[key] = true

		findings = append(findings, Finding{
			RuleID:      m.Rule.ID,
			Catalog:     m.CatalogName,
			Domain:      m.Rule.Domain,
			Severity:    m.Rule.Severity,
			FilePath:    m.Unit.Path,
			Line:        m.Line,
			Title:       m.Rule.Title,
			Remediation: m.Remediation,
			ExampleRef:  m.Rule.ExampleRef,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.RuleID < b.RuleID
	})
	return findings
}
