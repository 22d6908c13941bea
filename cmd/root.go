package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/convlint/convlint/cmd/review"
	"github.com/convlint/convlint/cmd/version"
	"github.com/convlint/convlint/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "convlint [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Convlint reviews source files against versioned heuristic catalogs.",
		Long: `Convlint is a deterministic review engine: it loads versioned catalogs of
heuristic rules, extracts structural signals from source files, evaluates each
applicable rule predicate, and reports deduplicated, severity-ranked findings
with remediation guidance.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(review.ReviewCmd)
}

func Execute() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, review.ErrThresholdExceeded) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config: %v\n", err)
		os.Exit(1)
	}

	review.Init(AppConfig)
}
