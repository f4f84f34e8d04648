// Package solution produces a summary and an ordered step breakdown for a
// question, solving equations exactly and falling back to templates when a
// generative provider is unavailable.
package solution

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/questa/internal/analysis"
)

// Solution is a summary plus the ordered steps that reach it. Steps may be
// empty when no breakdown was requested.
type Solution struct {
	Content string
	Steps   []string
}

// StepsText joins the steps as "Step 1: ...\nStep 2: ...". It returns the
// empty string when there are no steps.
func (s *Solution) StepsText() string {
	if len(s.Steps) == 0 {
		return ""
	}
	var b strings.Builder
	for i, step := range s.Steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Step %d: %s", i+1, step)
	}
	return b.String()
}

type solutionJSON struct {
	Content string  `json:"content"`
	Steps   *string `json:"steps"`
}

// MarshalJSON renders steps as one newline-delimited string, or null when
// there are none.
func (s *Solution) MarshalJSON() ([]byte, error) {
	out := solutionJSON{Content: s.Content}
	if text := s.StepsText(); text != "" {
		out.Steps = &text
	}
	return json.Marshal(out)
}

// Request describes a solution generation call.
type Request struct {
	// Type selects the strategy. Empty means Analysis.Type.
	Type analysis.TypeTag

	// Analysis supplies keywords for templates and prompts.
	Analysis *analysis.Result

	// Content is the question text.
	Content string

	// StepByStep asks for the ordered breakdown.
	StepByStep bool
}

func (r Request) typeTag() analysis.TypeTag {
	if r.Type != "" {
		return r.Type
	}
	if r.Analysis != nil {
		return r.Analysis.Type
	}
	return analysis.TypeOther
}

func (r Request) keywords() []string {
	if r.Analysis == nil {
		return nil
	}
	return r.Analysis.Keywords
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return &analysis.ValidationError{Field: "content", Message: "must not be empty"}
	}
	if r.Type != "" {
		if _, err := analysis.ParseTypeTag(string(r.Type)); err != nil {
			return err
		}
	}
	return nil
}
