package main

import (
	"time"

	"github.com/spf13/cobra"
)

var projectionWait time.Duration

func init() {
	projectionCmd.Flags().DurationVar(&projectionWait, "wait", 30*time.Second, "How long to wait for the projection to finish (0 returns immediately)")
	rootCmd.AddCommand(projectionCmd)
}

var projectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Print the 3-D PCA projection of the stored chunk vectors",
	Long: `Compute the principal-component projection of every stored chunk and
print its coordinates with the chunk texts.

The output is {"ready": false} when no projection finished within --wait.`,
	Args: cobra.NoArgs,
	RunE: runProjection,
}

func runProjection(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer a.Close()

	if projectionWait > 0 {
		done := make(chan struct{})
		go func() {
			a.engine.WaitProjections()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(projectionWait):
		case <-cmd.Context().Done():
		}
	}

	resp := ProjectionResponse{State: a.engine.ProjectionState().String()}
	if p, ok := a.engine.Projection(); ok {
		resp.Ready = true
		resp.Payload = &p
	}

	out := cmd.OutOrStdout()
	if !humanOutput {
		return outputJSON(out, resp)
	}
	if !resp.Ready {
		outputHuman(out, "Projection not ready (%s)\n", resp.State)
		return nil
	}
	outputHuman(out, "%d points\n", resp.Payload.Len())
	for i := range resp.Payload.Text {
		outputHuman(out, "%9.4f %9.4f %9.4f  %s\n", resp.Payload.X[i], resp.Payload.Y[i], resp.Payload.Z[i],
			truncate(resp.Payload.Text[i], ContextPreviewLen/2))
	}
	return nil
}
