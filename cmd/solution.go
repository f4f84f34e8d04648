package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/questa/internal/engine"
)

var solutionCmd = &cobra.Command{
	Use:   "solution [question]",
	Short: "Generate a worked solution for a question",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := questionText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")
		steps, _ := cmd.Flags().GetBool("steps")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withEngine(cmd, func(e *engine.Engine) error {
			sol, err := e.GenerateSolution(cmd.Context(), engine.SolutionRequest{
				Content:    content,
				StepByStep: steps,
				TypeHint:   typ,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, sol)
			}
			fmt.Fprintln(out, sol.Content)
			if steps {
				fmt.Fprintf(out, "\n%s\n", sol.StepsText())
			}
			return nil
		})
	},
}

func init() {
	solutionCmd.Flags().Bool("steps", false, "Include a step-by-step explanation")
	solutionCmd.Flags().String("type", "", "Override the question type")
	solutionCmd.Flags().Bool("json", false, "Print the solution as JSON")
}
