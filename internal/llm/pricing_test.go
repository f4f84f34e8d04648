package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  *ModelCost
	}{
		{"gpt-4o-mini", &ModelCost{0.15, 0.6}},
		{"gpt-4o-mini-2024-07-18", &ModelCost{0.15, 0.6}},
		{"claude-haiku-4-5-20251001", &ModelCost{1, 5}},
		{"claude-sonnet", &ModelCost{3, 15}},
		{"gemini-flash", &ModelCost{0.3, 2.5}},
		{"gemini-2.5-flash-001", &ModelCost{0.3, 2.5}},
		{"google/gemini-2.5-pro", &ModelCost{1.25, 10}},
		{"mock", nil},
		{"meta-llama/llama-4-scout", nil},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupCost(tt.model))
		})
	}
}

func TestModelCost(t *testing.T) {
	c := LookupCost("gpt-5-mini")
	require.NotNil(t, c)
	assert.InDelta(t, 0.00045, c.Cost(1000, 100), 1e-12)
}
