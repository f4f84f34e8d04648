package solution

import "github.com/abhisek/questa/internal/llm"

// SolutionSchema defines the JSON schema for a generated solution.
var SolutionSchema = &llm.Schema{
	Name:        "question-solution",
	Description: "A worked solution with a one-line summary and a step-by-step explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One or two sentences stating the answer",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "The reasoning, one step per sentence or as lines starting with 'Step N:'",
			},
		},
		"required":             []any{"summary", "explanation"},
		"additionalProperties": false,
	},
}
