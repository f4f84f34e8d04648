// Package hints produces progressively more specific hints for a question.
package hints

import (
	"fmt"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/equation"
)

// Hint is one level of guidance. Level 1 is the least specific.
type Hint struct {
	Level   int    `json:"level"`
	Content string `json:"content"`
}

// Request describes a hint generation call.
type Request struct {
	// Content is the question text.
	Content string

	// Analysis is the question's analysis. Its Type selects the strategy
	// and its Keywords fill the templates.
	Analysis *analysis.Result

	// NumHints is the number of hints wanted. Clamped to MaxLevel.
	NumHints int

	// MaxLevel is the highest level that may be returned.
	MaxLevel int

	// Equation is an already solved equation for the question. When nil
	// and the question is math, the generator tries to solve one itself.
	Equation *equation.Solution
}

func (r Request) validate() error {
	if r.Analysis == nil {
		return &analysis.ValidationError{Field: "analysis", Message: "is required"}
	}
	if r.NumHints < 1 {
		return &analysis.ValidationError{Field: "num_hints", Message: fmt.Sprintf("must be at least 1, got %d", r.NumHints)}
	}
	if r.MaxLevel < 1 {
		return &analysis.ValidationError{Field: "max_level", Message: fmt.Sprintf("must be at least 1, got %d", r.MaxLevel)}
	}
	return nil
}

// count is the number of hints a valid request yields.
func (r Request) count() int {
	return min(r.NumHints, r.MaxLevel)
}

// NoFurtherHints is the marker used for levels without new information.
func NoFurtherHints(level int) string {
	return fmt.Sprintf("Level %d: no further hints available. Review the previous hints and work through the remaining steps.", level)
}
