package hints

import "github.com/abhisek/questa/internal/llm"

// HintSchema defines the JSON schema for a phrased hint.
var HintSchema = &llm.Schema{
	Name:        "question-hint",
	Description: "A single hint for one level of a progressive hint sequence",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "The hint text, one or two sentences",
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}
