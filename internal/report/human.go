package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/convlint/convlint/internal/catalog"
)

var (
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel = color.New(color.FgYellow).SprintFunc()
	infoLabel = color.New(color.FgCyan).SprintFunc()
	dimText   = color.New(color.Faint).SprintFunc()
)

// RenderHuman writes the human-readable rendering of the report.
func RenderHuman(r *Report, w io.Writer) error {
	for _, f := range r.Findings {
		location := f.FilePath
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", f.FilePath, f.Line)
		}
		fmt.Fprintf(w, "%s %s %s  %s\n", severityLabel(f.Severity), f.RuleID, location, f.Title)
		if f.Remediation != "" {
			fmt.Fprintf(w, "      %s\n", f.Remediation)
		}
	}
	if len(r.Findings) > 0 {
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Not fully checked:")
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  %s (%s): %s\n", warning.Path, warning.Kind, warning.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d finding(s) (%d fail, %d warn, %d info) across %d file(s), catalogs: %s\n",
		len(r.Findings),
		r.SeverityCounts[string(catalog.SeverityFail)],
		r.SeverityCounts[string(catalog.SeverityWarn)],
		r.SeverityCounts[string(catalog.SeverityInfo)],
		r.FilesScanned,
		catalogList(r.CatalogsApplied),
	)
	fmt.Fprintf(w, "%s\n", dimText("run "+r.RunID))
	return nil
}

func severityLabel(s catalog.Severity) string {
	switch s {
	case catalog.SeverityFail:
		return failLabel("FAIL")
	case catalog.SeverityWarn:
		return warnLabel("WARN")
	default:
		return infoLabel("INFO")
	}
}

func catalogList(applied []string) string {
	if len(applied) == 0 {
		return "(none)"
	}
	return strings.Join(applied, ", ")
}
