// Package report assembles the terminal artifact of a run and renders it as
// SARIF for machines or colorized text for humans. Rendering is a pure
// function of the Report value; all filtering and ranking happens upstream.
package report

import (
	"time"

	"github.com/convlint/convlint/internal/aggregate"
	"github.com/convlint/convlint/internal/catalog"
)

// Warning is a non-fatal degradation recorded during a run: a unit that
// could not be read, fully extracted, or checked within its time budget.
type Warning struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Report is the ordered findings plus run metadata. Written once per run.
type Report struct {
	RunID           string              `json:"run_id"`
	CatalogsApplied []string            `json:"catalogs_applied"`
	FilesScanned    int                 `json:"files_scanned"`
	ElapsedMS       int64               `json:"elapsed_ms"`
	SeverityCounts  map[string]int      `json:"severity_counts"`
	Findings        []aggregate.Finding `json:"findings"`
	Warnings        []Warning           `json:"warnings"`
}

// New builds a Report with severity counts derived from the findings.
func New(runID string, catalogsApplied []string, filesScanned int, elapsed time.Duration, findings []aggregate.Finding, warnings []Warning) *Report {
	counts := map[string]int{
		string(catalog.SeverityFail): 0,
		string(catalog.SeverityWarn): 0,
		string(catalog.SeverityInfo): 0,
	}
	for _, f := range findings {
		counts[string(f.Severity)]++
	}

	return &Report{
		RunID:           runID,
		CatalogsApplied: catalogsApplied,
		FilesScanned:    filesScanned,
		ElapsedMS:       elapsed.Milliseconds(),
		SeverityCounts:  counts,
		Findings:        findings,
		Warnings:        warnings,
	}
}
