// Package main provides the pdfrag CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pdfrag/internal/config"
	"pdfrag/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	cfgPath     string
	logLevel    string
	humanOutput bool

	// cfg is loaded once in the root pre-run hook.
	cfg *config.AppConfig
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdfrag",
	Short: "Ask questions about your PDF documents",
	Long: `pdfrag ingests PDF documents into a local vector store and answers
questions about them with a retrieval-augmented language model.

Run without a subcommand to open the interactive terminal UI.
Other commands print JSON by default; pass --human for plain text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadConfig,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config (default ./config.yaml or ~/.config/pdfrag/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// loadConfig reads the configuration and installs the stderr logger. Commands
// that own the terminal install their own logger afterwards.
func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgPath == "" {
		var path string
		cfg, path, err = config.LoadDefault()
		if err == nil {
			slog.Debug("loaded config", "path", path)
		}
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cmd.Annotations[annotationLogToFile] == "true" {
		return nil
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return withExitCode(ExitConfigError, err)
	}
	return nil
}
