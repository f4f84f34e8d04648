package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/questa/internal/engine"
)

var hintsCmd = &cobra.Command{
	Use:   "hints [question]",
	Short: "Generate progressive hints for a question",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := questionText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withEngine(cmd, func(e *engine.Engine) error {
			num := e.Config().Engine.DefaultNumHints
			if cmd.Flags().Changed("num") {
				num, _ = cmd.Flags().GetInt("num")
			}
			maxLevel := e.Config().Engine.DefaultMaxLevel
			if cmd.Flags().Changed("max-level") {
				maxLevel, _ = cmd.Flags().GetInt("max-level")
			}

			hints, err := e.GenerateHints(cmd.Context(), engine.HintRequest{
				Content:  content,
				NumHints: num,
				MaxLevel: maxLevel,
				TypeHint: typ,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, hints)
			}
			st := stylesFor(out)
			for _, h := range hints {
				label := st.label.Render(fmt.Sprintf("Hint %d:", h.Level))
				fmt.Fprintf(out, "%s %s\n", label, indent(h.Content, "        "))
			}
			return nil
		})
	},
}

func init() {
	hintsCmd.Flags().IntP("num", "n", 1, "Number of hints to generate")
	hintsCmd.Flags().Int("max-level", 3, "Highest hint level to reveal")
	hintsCmd.Flags().String("type", "", "Override the question type")
	hintsCmd.Flags().Bool("json", false, "Print the hints as JSON")
}
