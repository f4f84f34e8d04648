package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/questa/internal/engine"
)

var solveCmd = &cobra.Command{
	Use:   "solve [equation]",
	Short: "Solve a linear equation in one variable, showing each step",
	Example: `  questa solve "2x + 3 = 15"
  echo "Solve for x: x + 9 = 34" | questa solve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := questionText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		return withEngine(cmd, func(e *engine.Engine) error {
			sol, err := e.SolveEquation(cmd.Context(), content)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, sol)
			}
			st := stylesFor(out)
			fmt.Fprintf(out, "Equation: %s\n\n", sol.Equation)
			for i, s := range sol.Steps {
				fmt.Fprintf(out, "%s %s\n", st.muted.Render(fmt.Sprintf("Step %d:", i+1)), s)
			}
			fmt.Fprintf(out, "\n%s\n", st.ok.Render(sol.Summary()))
			return nil
		})
	},
}

func init() {
	solveCmd.Flags().Bool("json", false, "Print the solution as JSON")
}
