package report

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/convlint/convlint/internal/catalog"
)

const toolURI = "https://github.com/convlint/convlint"

// RenderSARIF writes the structured rendering of the report. Field names and
// ordering are stable across runs on unchanged input so the artifact can be
// diffed in CI.
func RenderSARIF(r *Report, w io.Writer) error {
	sarifReport, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("convlint", toolURI)

	for _, f := range r.Findings {
		rule := run.AddRule(f.RuleID).
			WithDescription(f.Title).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(f.Severity),
			})
		if f.ExampleRef != "" {
			rule.WithHelpURI(f.ExampleRef)
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FilePath)).
				WithRegion(sarif.NewRegion().WithStartLine(maxLine(f.Line))),
		)

		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(resultMessage(f.Title, f.Remediation))).
			WithLevel(toSarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	run.PropertyBag = *sarif.NewPropertyBag()
	run.Properties["run_id"] = r.RunID
	run.Properties["catalogs_applied"] = r.CatalogsApplied
	run.Properties["files_scanned"] = r.FilesScanned
	run.Properties["severity_counts"] = r.SeverityCounts
	run.Properties["warnings"] = r.Warnings

	sarifReport.AddRun(run)
	return sarifReport.PrettyWrite(w)
}

func resultMessage(title, remediation string) string {
	if remediation == "" {
		return title
	}
	return title + ": " + remediation
}

// SARIF regions require a positive start line; absence-style findings carry
// line 0 and anchor at the top of the file.
func maxLine(line int) int {
	if line < 1 {
		return 1
	}
	return line
}

func toSarifLevel(severity catalog.Severity) string {
	switch severity {
	case catalog.SeverityFail:
		return "error"
	case catalog.SeverityWarn:
		return "warning"
	default:
		return "note"
	}
}
