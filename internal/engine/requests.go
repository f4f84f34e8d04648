package engine

import (
	"github.com/abhisek/questa/internal/analysis"
)

// AnalyzeRequest is the input to Analyze. Hints are optional enum names.
type AnalyzeRequest struct {
	Content        string `json:"content"`
	TypeHint       string `json:"type_hint,omitempty"`
	DifficultyHint string `json:"difficulty_hint,omitempty"`
}

// HintRequest is the input to GenerateHints.
type HintRequest struct {
	Content  string `json:"content"`
	NumHints int    `json:"num_hints"`
	MaxLevel int    `json:"max_level"`
	TypeHint string `json:"type_hint,omitempty"`
}

// SolutionRequest is the input to GenerateSolution.
type SolutionRequest struct {
	Content    string `json:"content"`
	StepByStep bool   `json:"step_by_step"`
	TypeHint   string `json:"type_hint,omitempty"`
}

// parseTypeHint validates an optional type name.
func parseTypeHint(s string) (*analysis.TypeTag, error) {
	if s == "" {
		return nil, nil
	}
	t, err := analysis.ParseTypeTag(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDifficultyHint(s string) (*analysis.DifficultyTag, error) {
	if s == "" {
		return nil, nil
	}
	d, err := analysis.ParseDifficultyTag(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
