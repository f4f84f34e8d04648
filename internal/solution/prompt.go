package solution

import (
	"fmt"
	"strings"
)

const solutionSystemPrompt = `You are a careful tutor who writes clear, correct worked solutions. State the answer in the summary and explain the reasoning in the explanation.`

func buildSolutionUserMessage(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Solve this %s question: %q\n", strings.ReplaceAll(string(req.typeTag()), "_", " "), req.Content)
	if kw := req.keywords(); len(kw) > 0 {
		fmt.Fprintf(&b, "Key terms: %s\n", strings.Join(kw, ", "))
	}
	if req.Analysis != nil && len(req.Analysis.RelevantConcepts) > 0 {
		b.WriteString("Background:\n")
		for _, c := range req.Analysis.RelevantConcepts {
			fmt.Fprintf(&b, "- %s\n", c.Explanation)
		}
	}
	if req.StepByStep {
		b.WriteString("\nExplain the solution step by step, writing each step on its own line as 'Step N: ...'.")
	} else {
		b.WriteString("\nKeep the explanation brief.")
	}
	return b.String()
}
