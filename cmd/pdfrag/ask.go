package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var askShowContext bool

func init() {
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "Include the retrieved passages in the output")
	rootCmd.AddCommand(askCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Answer a question from the ingested documents",
	Long: `Answer a question using the passages nearest to it in the vector store.

All arguments are joined into a single question.

Examples:
  pdfrag ask "What is the warranty period?"
  pdfrag ask --human --show-context who signed the contract`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer a.Close()

	question := strings.Join(args, " ")
	details := a.engine.AnswerDetails(cmd.Context(), question)

	resp := AskResponse{Question: question, Answer: details.Answer}
	if askShowContext {
		for _, c := range details.Chunks {
			resp.Context = append(resp.Context, c.Text)
		}
	}

	out := cmd.OutOrStdout()
	if humanOutput {
		outputHuman(out, "%s\n", resp.Answer)
		if len(resp.Context) > 0 {
			outputHuman(out, "\nContext:\n")
			for i, text := range resp.Context {
				outputHuman(out, "  [%d] %s\n", i+1, truncate(strings.Join(strings.Fields(text), " "), ContextPreviewLen))
			}
		}
	} else if err := outputJSON(out, resp); err != nil {
		return err
	}
	if a.initErr != nil {
		return withExitCode(ExitNotReady, a.initErr)
	}
	return nil
}
