package review

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/convlint/convlint/internal/catalog"
)

const (
	formatHuman      = "human"
	formatStructured = "structured"
)

// validateReviewArgs checks the flags and positional arguments of the review
// command. Input files themselves are not probed here: an unreadable file
// degrades to a report warning instead of failing the invocation.
func validateReviewArgs(opts *RunOptionsReview, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one file path is required")
	}
	if opts.Format != formatHuman && opts.Format != formatStructured {
		return fmt.Errorf("unsupported format %q (want %q or %q)", opts.Format, formatHuman, formatStructured)
	}
	if _, ok := catalog.ParseSeverity(opts.FailOn); !ok {
		return fmt.Errorf("unsupported fail-on severity %q (want info, warn or fail)", opts.FailOn)
	}
	if opts.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative")
	}
	return nil
}

// hasFlags reports whether any flag was explicitly set on the command line.
func hasFlags(flags *pflag.FlagSet) bool {
	changed := false
	flags.Visit(func(*pflag.Flag) { changed = true })
	return changed
}
