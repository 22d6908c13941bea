// Package engine orchestrates a review run: load catalogs once, fan
// extraction and matching out across workers, join into the aggregator, and
// assemble the final report.
package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/convlint/convlint/internal/aggregate"
	"github.com/convlint/convlint/internal/catalog"
	"github.com/convlint/convlint/internal/dispatch"
	"github.com/convlint/convlint/internal/extract"
	"github.com/convlint/convlint/internal/match"
	"github.com/convlint/convlint/internal/report"
	"github.com/convlint/convlint/pkg/shared/config"
	"github.com/convlint/convlint/pkg/shared/errors"
)

// Status is the outcome of a run measured against the fail-on threshold.
type Status int

const (
	StatusOK       Status = iota // no findings
	StatusFindings               // findings, all below the threshold
	StatusFailed                 // at least one finding at or above the threshold
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFindings:
		return "findings"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// RunParams holds the invocation surface of one review run.
type RunParams struct {
	Paths        []string
	CatalogHome  string
	CatalogNames []string // empty selects every catalog under CatalogHome
	ForceCatalog string   // applies this catalog to every unit regardless of detection
	FailOn       catalog.Severity
	Workers      int
	UnitTimeout  time.Duration
}

// Engine evaluates heuristic catalogs against source files.
type Engine struct {
	cfg    *config.Config
	logger hclog.Logger
	cache  *extract.Cache
}

// New creates an Engine with the provided configuration.
func New(cfg *config.Config, logger hclog.Logger) (*Engine, error) {
	cache, err := extract.NewCache(cfg.Engine.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction cache: %w", err)
	}
	return &Engine{cfg: cfg, logger: logger, cache: cache}, nil
}

// Run executes one review. Catalog errors are fatal and abort before any
// matching; per-unit read, extraction, and timeout problems degrade to
// warnings in the report. Cancelling the context abandons in-flight units
// and returns without a partial report.
func (e *Engine) Run(ctx context.Context, params RunParams) (*report.Report, Status, error) {
	start := time.Now()

	if len(params.Paths) == 0 {
		return nil, StatusFailed, fmt.Errorf("no input paths given")
	}

	catalogs, err := e.selectCatalogs(params)
	if err != nil {
		return nil, StatusFailed, err
	}

	workers := params.Workers
	if workers <= 0 {
		workers = e.cfg.Engine.Workers
	}
	if workers <= 0 {
		workers = 1
	}
	timeout := params.UnitTimeout
	if timeout <= 0 {
		timeout = time.Duration(e.cfg.Engine.UnitTimeout)
	}
	failOn := params.FailOn
	if failOn == "" {
		failOn = catalog.SeverityFail
	}

	e.logger.Info("run starting", "files", len(params.Paths), "catalogs", len(catalogs), "workers", workers)

	type unitOutcome struct {
		matches  []match.Match
		warnings []report.Warning
	}
	results := make(chan unitOutcome, len(params.Paths))

	forEveryPathWithBoundedGoroutines(ctx, workers, params.Paths, func(i int, path string) {
		raw, err := os.ReadFile(path)
		if err != nil {
			e.logger.Warn("failed to read input", "path", path, "error", err)
			results <- unitOutcome{warnings: []report.Warning{warningOf(errors.NewReadWarning(path, err.Error()))}}
			return
		}

		unitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		done := make(chan unitOutcome, 1)
		go func() {
			var out unitOutcome
			unit := e.cache.Extract(path, string(raw))
			for _, w := range unit.Warnings {
				out.warnings = append(out.warnings, warningOf(errors.NewExtractionWarning(path, w)))
			}
			if unit.ExtractionFailed() {
				// an empty signal set would satisfy absence predicates
				done <- out
				return
			}
			for _, c := range dispatch.Applicable(unit, catalogs, params.ForceCatalog) {
				out.matches = append(out.matches, match.Run(unit, c)...)
			}
			done <- out
		}()

		select {
		case out := <-done:
			results <- out
		case <-unitCtx.Done():
			if ctx.Err() != nil {
				// run-level cancellation: drop the unit, no partial output
				return
			}
			e.logger.Warn("unit exceeded time budget", "path", path, "timeout", timeout)
			results <- unitOutcome{warnings: []report.Warning{
				warningOf(errors.NewTimeoutWarning(path, fmt.Sprintf("skipped after %s", timeout))),
			}}
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, StatusFailed, err
	}

	close(results)
	var allMatches []match.Match
	var warnings []report.Warning
	for out := range results {
		allMatches = append(allMatches, out.matches...)
		warnings = append(warnings, out.warnings...)
	}
	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Path != warnings[j].Path {
			return warnings[i].Path < warnings[j].Path
		}
		return warnings[i].Message < warnings[j].Message
	})

	findings := aggregate.Aggregate(allMatches)
	status := statusFor(findings, failOn)
	rep := report.New(uuid.NewString(), appliedNames(catalogs), len(params.Paths), time.Since(start), findings, warnings)

	e.logger.Info("run finished", "status", status, "findings", len(findings), "warnings", len(warnings))
	return rep, status, nil
}

// selectCatalogs loads the catalog home once per run and narrows to the
// requested names. Any load or selection problem is fatal.
func (e *Engine) selectCatalogs(params RunParams) ([]*catalog.Catalog, error) {
	home := params.CatalogHome
	if home == "" {
		home = e.cfg.Catalogs.Home
	}

	loaded, err := catalog.LoadDir(home)
	if err != nil {
		return nil, err
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no catalogs found under %q", home)
	}

	byName := make(map[string]*catalog.Catalog, len(loaded))
	for _, c := range loaded {
		byName[c.Name] = c
	}
	if params.ForceCatalog != "" {
		if _, ok := byName[params.ForceCatalog]; !ok {
			return nil, fmt.Errorf("forced catalog %q not found under %q", params.ForceCatalog, home)
		}
	}

	if len(params.CatalogNames) == 0 {
		return loaded, nil
	}
	selected := make([]*catalog.Catalog, 0, len(params.CatalogNames)+1)
	picked := make(map[string]bool)
	for _, name := range params.CatalogNames {
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("catalog %q not found under %q", name, home)
		}
		if !picked[name] {
			picked[name] = true
			selected = append(selected, c)
		}
	}
	// a forced catalog is evaluated even when not among the selected names
	if params.ForceCatalog != "" && !picked[params.ForceCatalog] {
		selected = append(selected, byName[params.ForceCatalog])
	}
	return selected, nil
}

func statusFor(findings []aggregate.Finding, failOn catalog.Severity) Status {
	if len(findings) == 0 {
		return StatusOK
	}
	for _, f := range findings {
		if f.Severity.Rank() >= failOn.Rank() {
			return StatusFailed
		}
	}
	return StatusFindings
}

func appliedNames(catalogs []*catalog.Catalog) []string {
	names := make([]string, 0, len(catalogs))
	for _, c := range catalogs {
		names = append(names, c.Name+"@"+c.Version)
	}
	sort.Strings(names)
	return names
}

func warningOf(w *errors.UnitWarning) report.Warning {
	return report.Warning{Kind: string(w.Kind), Path: w.Path, Message: w.Message}
}
