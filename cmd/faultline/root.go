package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/faultline-dev/faultline/internal/logging"
)

// toolVersion is the value attached to execution metadata and reported
// by the version subcommand.
const toolVersion = "0.1.0"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "faultline",
	Short: "Static analyzer for structural latency landmines",
	Long: `faultline inspects declarations and lowered IR from a systems-language
codebase and reports structural patterns known to cause microarchitectural
latency: cache-line spanning, false sharing, overly strong atomic ordering,
heap churn on hot paths, virtual dispatch, and more.

It never parses the analyzed language or a real IR text/bitcode format
itself — a frontend adapter is expected to reduce both to the JSON
bundle formats analyze consumes.`,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(parseLogLevel(rootFlags.logLevel), rootFlags.logFormat)
		return nil
	},
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	f.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text|json)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(hypothesizeCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = toolVersion
}
