// Command restro runs the restaurant engine: an HTTP server over a seeded
// demo store, and one-shot CSV exports.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var devMode bool

var rootCmd = &cobra.Command{
	Use:           "restro",
	Short:         "restro: multi-tenant restaurant operations engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "human-readable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

// newLogger returns a JSON logger, or a debug text logger with --dev.
func newLogger() *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
