package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"mzify/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "mzify",
	Short:         "Migrate RPG Maker MV plugins to MZ",
	Long:          "mzify applies conservative, rule-based rewrites to RPG Maker MV plugin scripts and reports every change it made.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// main registers subcommands and persistent flags, then executes the root command.
// Usage errors exit with status 2, any other failure with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)

	registerRootFlags(rootCmd.PersistentFlags())
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInputsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func registerRootFlags(fs *pflag.FlagSet) {
	fs.String("color", "auto", "colorize output (auto|on|off)")
	fs.Bool("quiet", false, "suppress non-essential output")
	fs.String("config", "", "path to mzify.toml (default: search upwards from the working directory)")
	fs.String("log-level", "", "log level (debug|info|warn|error)")
	fs.String("log-file", "", "also write JSON logs to this file (rotated)")
}

// errInputsFailed is returned after per-input failures were already reported.
var errInputsFailed = errors.New("one or more inputs failed")

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
