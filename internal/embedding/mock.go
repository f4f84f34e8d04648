package embedding

import (
	"context"
	"fmt"
	"sync"
)

// MockEngine is a deterministic Engine for tests. Vectors are looked up by
// exact text; unknown texts get Default, or an error when Default is nil.
type MockEngine struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   int

	// Default is returned for texts with no registered vector.
	Default []float32

	// Err, if set, is returned by every call.
	Err error
}

// NewMockEngine creates a MockEngine with the given text → vector table.
func NewMockEngine(vectors map[string][]float32) *MockEngine {
	if vectors == nil {
		vectors = map[string][]float32{}
	}
	return &MockEngine{vectors: vectors}
}

// Set registers the vector for text.
func (m *MockEngine) Set(text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vec
}

func (m *MockEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.Default != nil {
		return m.Default, nil
	}
	return nil, fmt.Errorf("mock: no vector for %q", text)
}

func (m *MockEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the length of the first registered vector.
func (m *MockEngine) Dimensions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vectors {
		return len(v)
	}
	return len(m.Default)
}

func (m *MockEngine) Name() string { return "mock" }

// Calls returns the number of Embed invocations, batch items included.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
