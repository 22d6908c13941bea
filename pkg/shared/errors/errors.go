package errors

import (
	"fmt"
	"strings"
)

// CatalogIssue describes one invalid rule inside a catalog file.
type CatalogIssue struct {
	RuleID  string
	Problem string
}

func (i CatalogIssue) String() string {
	if i.RuleID == "" {
		return i.Problem
	}
	return fmt.Sprintf("rule %q: %s", i.RuleID, i.Problem)
}

// CatalogError is fatal: a catalog with any invalid rule never loads, and all
// offending rules are reported together so the author can fix them in one pass.
type CatalogError struct {
	Path   string
	Issues []CatalogIssue
}

// Error implements the error interface, listing every collected issue.
func (e *CatalogError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("catalog %q is invalid: %s", e.Path, strings.Join(parts, "; "))
}

// NewCatalogError creates a CatalogError for the given catalog source path.
func NewCatalogError(path string, issues []CatalogIssue) *CatalogError {
	return &CatalogError{Path: path, Issues: issues}
}

// WarningKind distinguishes the non-fatal degradations a run can record.
type WarningKind string

const (
	WarningExtraction WarningKind = "extraction"
	WarningTimeout    WarningKind = "timeout"
	WarningRead       WarningKind = "read"
)

// UnitWarning is non-fatal: one source unit could not be fully checked. The
// run continues and the warning surfaces in the report metadata.
type UnitWarning struct {
	Kind    WarningKind
	Path    string
	Message string
}

// Error implements the error interface for UnitWarning.
func (w *UnitWarning) Error() string {
	return fmt.Sprintf("%s warning for %q: %s", w.Kind, w.Path, w.Message)
}

// NewExtractionWarning records a partially recognized source unit.
func NewExtractionWarning(path, message string) *UnitWarning {
	return &UnitWarning{Kind: WarningExtraction, Path: path, Message: message}
}

// NewTimeoutWarning records a unit whose extraction or matching overran its budget.
func NewTimeoutWarning(path, message string) *UnitWarning {
	return &UnitWarning{Kind: WarningTimeout, Path: path, Message: message}
}

// NewReadWarning records an input file that could not be read at all.
func NewReadWarning(path, message string) *UnitWarning {
	return &UnitWarning{Kind: WarningRead, Path: path, Message: message}
}
