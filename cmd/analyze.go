package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/questa/internal/engine"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Classify a question, score its difficulty and extract keywords",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := questionText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withEngine(cmd, func(e *engine.Engine) error {
			res, err := e.Analyze(cmd.Context(), engine.AnalyzeRequest{
				Content:        content,
				TypeHint:       typ,
				DifficultyHint: difficulty,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			fmt.Fprintf(out, "Type:        %s\n", res.Type)
			fmt.Fprintf(out, "Difficulty:  %s (%.4f)\n", res.Difficulty, res.DifficultyScore)
			fmt.Fprintf(out, "Words:       %d\n", res.WordCount)
			fmt.Fprintf(out, "Sentences:   %d\n", res.SentenceCount)
			fmt.Fprintf(out, "Keywords:    %s\n", strings.Join(res.Keywords, ", "))
			for _, c := range res.RelevantConcepts {
				fmt.Fprintf(out, "Concept:     %s (%.2f)\n", c.Name, c.Relevance)
			}
			return nil
		})
	},
}

func init() {
	analyzeCmd.Flags().String("type", "", "Override the question type (math, physics, chemistry, biology, computer_science, other)")
	analyzeCmd.Flags().String("difficulty", "", "Override the difficulty level (easy, medium, hard, expert)")
	analyzeCmd.Flags().Bool("json", false, "Print the analysis as JSON")
}
