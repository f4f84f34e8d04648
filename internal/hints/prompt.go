package hints

import (
	"fmt"
	"strings"

	"github.com/abhisek/questa/internal/analysis"
)

const hintSystemPrompt = `You are a patient tutor helping a student work through a question on their own. You write one hint at a time. Each hint must convey the guidance you are given, in your own words, without revealing the final answer unless you are told it is the last level.`

// specificity describes how direct a level's hint should be.
func specificity(level int) string {
	switch level {
	case 1:
		return "subtle"
	case 2:
		return "more direct"
	default:
		return "very specific"
	}
}

func subject(t analysis.TypeTag) string {
	switch t {
	case analysis.TypeMath:
		return "math problem"
	case analysis.TypePhysics:
		return "physics problem"
	case analysis.TypeChemistry:
		return "chemistry problem"
	case analysis.TypeBiology:
		return "biology question"
	case analysis.TypeComputerScience:
		return "computer science question"
	}
	return "question"
}

func buildHintUserMessage(content string, a *analysis.Result, level, levels int, guidance string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "For the %s: %q\n", subject(a.Type), content)
	fmt.Fprintf(&b, "Hint level: %d of %d\n", level, levels)
	fmt.Fprintf(&b, "Difficulty: %s\n", a.Difficulty)
	if len(a.Keywords) > 0 {
		fmt.Fprintf(&b, "Key terms: %s\n", strings.Join(a.Keywords, ", "))
	}
	writeConcepts(&b, a.RelevantConcepts)
	fmt.Fprintf(&b, "Guidance to convey: %s\n\n", guidance)
	fmt.Fprintf(&b, "Write a %s hint.", specificity(level))
	if level < levels {
		b.WriteString(" Do not give away the answer.")
	}
	return b.String()
}

func writeConcepts(b *strings.Builder, concepts []analysis.Concept) {
	if len(concepts) == 0 {
		return
	}
	b.WriteString("Related concepts:\n")
	for _, c := range concepts {
		fmt.Fprintf(b, "- %s: %s\n", c.Name, c.Explanation)
	}
}
