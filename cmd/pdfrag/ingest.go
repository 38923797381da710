package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Extract, chunk, embed and store PDF documents",
	Long: `Ingest one or more PDF files into the configured vector store.

Each file is reported separately. After attempting all of them the
command exits with a not-ready error when the models or store failed to
initialize, otherwise with a data error when any file failed.

Examples:
  pdfrag ingest paper.pdf
  pdfrag ingest --human docs/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		res := a.engine.Ingest(cmd.Context(), path)
		if !res.Success {
			failed++
		}
		if humanOutput {
			outputHuman(out, "%s: %s\n", path, res.Message)
			if res.Summary != "" {
				outputHuman(out, "  Summary: %s\n", res.Summary)
			}
			continue
		}
		if err := outputJSON(out, IngestResponse{
			Path:    path,
			Success: res.Success,
			Message: res.Message,
			Chunks:  res.Chunks,
			Summary: res.Summary,
		}); err != nil {
			return err
		}
	}
	if a.initErr != nil {
		return withExitCode(ExitNotReady, a.initErr)
	}
	if failed > 0 {
		return withExitCode(ExitDataError, fmt.Errorf("%d of %d files failed to ingest", failed, len(args)))
	}
	return nil
}
