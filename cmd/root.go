// Package cmd implements the fdassist command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fdassist/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "fdassist",
	Short: "FDA regulatory assistant for medical device submissions",
	Long: `fdassist answers questions about FDA cybersecurity and regulatory
guidance and analyzes submission packages for compliance gaps.

Questions are routed to a specialist agent backed by the indexed guidance
corpora. Uploading submission documents switches to gap-analysis mode,
which runs the full specialist pipeline and produces a compliance report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. DEBUG in the environment lowers
// the level; FDASSIST_LOG_JSON switches to JSON output for log shippers.
func newLogger() *slog.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("FDASSIST_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}
