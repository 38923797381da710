package main

import (
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdfrag/internal/logging"
	"pdfrag/internal/tui"
)

// annotationLogToFile marks commands that own the terminal; their logs go to
// a file in the data directory.
const annotationLogToFile = "log-to-file"

func init() {
	rootCmd.Annotations = map[string]string{annotationLogToFile: "true"}
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:         "tui",
	Short:       "Open the interactive terminal UI (default)",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationLogToFile: "true"},
	RunE:        runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	logPath := filepath.Join(cfg.DataDir, "pdfrag.log")
	closer, err := logging.SetupFile(logPath, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer closer.Close()

	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer a.Close()
	if a.initErr != nil {
		slog.Warn("starting UI with a degraded engine", "error", a.initErr)
	}

	p := tea.NewProgram(tui.New(a.engine), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
