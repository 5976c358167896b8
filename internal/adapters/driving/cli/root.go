// Package cli implements the eldin command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/eldin/internal/core/ports/driven"
	"github.com/custodia-labs/eldin/internal/core/ports/driving"
	"github.com/custodia-labs/eldin/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

// Services wired by buildApp. Commands check for nil so tests can
// inject mocks without the full wiring.
var (
	askService   driving.AskService
	adminService driving.ProviderAdminService
	docProvider  driven.DocumentProvider
	docStore     driven.DocumentStore
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "eldin",
	Short: "Citation-backed Q&A gateway over licensed documents",
	Long: `Eldin answers questions with bounded, cited excerpts from licensed
analyst documents. Every answer cites its sources and every request
leaves exactly one audit record.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.eldin)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
