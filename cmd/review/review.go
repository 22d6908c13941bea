package review

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/convlint/convlint/internal/catalog"
	"github.com/convlint/convlint/internal/engine"
	"github.com/convlint/convlint/internal/report"
	"github.com/convlint/convlint/pkg/shared/config"
	"github.com/convlint/convlint/pkg/shared/logger"
)

// ErrThresholdExceeded signals that the run produced at least one finding at
// or above the fail-on severity. The root command maps it to exit code 2.
var ErrThresholdExceeded = errors.New("findings at or above the fail-on threshold")

// RunOptionsReview holds the arguments for the review command.
type RunOptionsReview struct {
	Catalogs     []string
	CatalogsHome string
	ForceCatalog string
	Format       string
	FailOn       string
	Output       string
	Jobs         int
}

var (
	AppConfig          *config.Config
	reviewOptions      RunOptionsReview
	exampleReviewUsage = `  # Reviewing files against every catalog under the configured catalogs home
  convlint review app.py pipeline.py

  # Reviewing against named catalogs only, with a SARIF artifact for CI
  convlint review --catalogs async-web --format structured --output report.sarif server.py

  # Forcing a catalog regardless of import detection, for a narrow re-review
  convlint review --force-catalog retrieval-pipeline ingest.py

  # Gating on warnings, with multiple concurrent workers
  convlint review --fail-on warn -j 4 app.py server.py ingest.py`
)

// ReviewCmd represents the review command.
var ReviewCmd = &cobra.Command{
	Use:                   "review [--catalogs/-c NAME,...] [--format/-f human|structured] [--fail-on SEVERITY] [-j WORKERS] PATH [PATH...]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReviewUsage,
	Short:                 "Evaluates heuristic rule catalogs against the given source files",
	RunE:                  runReviewCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runReviewCommand executes the review command.
func runReviewCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !hasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-review")

	if err := validateReviewArgs(&reviewOptions, args); err != nil {
		logger.Error("invalid review arguments", "error", err)
		return err
	}

	eng, err := engine.New(AppConfig, logger)
	if err != nil {
		logger.Error("failed to initialize engine", "error", err)
		return err
	}

	rep, status, err := eng.Run(cmd.Context(), engine.RunParams{
		Paths:        args,
		CatalogHome:  reviewOptions.CatalogsHome,
		CatalogNames: reviewOptions.Catalogs,
		ForceCatalog: reviewOptions.ForceCatalog,
		FailOn:       catalog.Severity(reviewOptions.FailOn),
		Workers:      reviewOptions.Jobs,
	})
	if err != nil {
		logger.Error("review run failed", "error", err)
		return err
	}

	if err := renderReport(rep, &reviewOptions); err != nil {
		logger.Error("failed to render report", "error", err)
		return err
	}

	if status == engine.StatusFailed {
		return ErrThresholdExceeded
	}
	logger.Info("review command completed", "status", status.String())
	return nil
}

func renderReport(rep *report.Report, opts *RunOptionsReview) error {
	var out io.Writer = os.Stdout
	if opts.Output != "" {
		file, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", opts.Output, err)
		}
		defer file.Close()
		out = file
	}

	if opts.Format == formatStructured {
		return report.RenderSARIF(rep, out)
	}
	return report.RenderHuman(rep, out)
}

func init() {
	ReviewCmd.Flags().StringSliceVarP(&reviewOptions.Catalogs, "catalogs", "c", nil, "catalog names to apply (default: all catalogs under the catalogs home)")
	ReviewCmd.Flags().StringVar(&reviewOptions.CatalogsHome, "catalogs-home", "", "directory holding catalog packs (overrides config)")
	ReviewCmd.Flags().StringVar(&reviewOptions.ForceCatalog, "force-catalog", "", "apply this catalog to every file regardless of import detection")
	ReviewCmd.Flags().StringVarP(&reviewOptions.Format, "format", "f", formatHuman, "report format: human or structured (SARIF)")
	ReviewCmd.Flags().StringVar(&reviewOptions.FailOn, "fail-on", string(catalog.SeverityFail), "minimum severity that fails the run: info, warn or fail")
	ReviewCmd.Flags().StringVarP(&reviewOptions.Output, "output", "o", "", "write the report to a file instead of stdout")
	ReviewCmd.Flags().IntVarP(&reviewOptions.Jobs, "jobs", "j", 0, "number of concurrent workers (default from config)")
}
