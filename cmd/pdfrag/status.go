package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report model readiness and the number of stored chunks",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer a.Close()

	resp := StatusResponse{
		Ready:       a.engine.Ready(),
		Embedder:    a.embedder.ModelName(),
		Generator:   a.generator.ModelName(),
		VectorStore: cfg.VectorStore.Type,
		Collection:  cfg.VectorStore.Collection,
		Projection:  a.engine.ProjectionState().String(),
	}
	if n, err := a.engine.Count(cmd.Context()); err == nil {
		resp.Chunks = n
	}
	if a.initErr != nil {
		resp.Error = a.initErr.Error()
	}

	out := cmd.OutOrStdout()
	if humanOutput {
		state := "ready"
		if !resp.Ready {
			state = "not ready"
		}
		outputHuman(out, "Engine:     %s\n", state)
		outputHuman(out, "Embedder:   %s\n", resp.Embedder)
		outputHuman(out, "Generator:  %s\n", resp.Generator)
		outputHuman(out, "Store:      %s (%s), %d chunks\n", resp.VectorStore, resp.Collection, resp.Chunks)
		outputHuman(out, "Projection: %s\n", resp.Projection)
		if resp.Error != "" {
			outputHuman(out, "Error:      %s\n", resp.Error)
		}
	} else if err := outputJSON(out, resp); err != nil {
		return err
	}
	if a.initErr != nil {
		return withExitCode(ExitNotReady, a.initErr)
	}
	return nil
}
