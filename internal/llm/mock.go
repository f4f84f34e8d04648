package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse scripts one MockProvider reply. A non-nil Err is returned
// instead of a response.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and remembers every
// request it saw. Set Respond to compute replies per request instead, which
// keeps concurrent hint levels deterministic.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request

	Respond func(ctx context.Context, req Request) MockResponse
}

// errScriptExhausted is wrapped in ErrProviderUnavailable once the script
// runs out, so callers exercise their fallback path.
var errScriptExhausted = errors.New("mock: no scripted response left")

// NewMockProvider returns a provider that replays script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	reply, err := m.next(ctx, req)
	if err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &Response{Content: reply.Content, Usage: reply.Usage, Model: m.ModelID(), StopReason: StopEnd}, nil
}

func (m *MockProvider) next(ctx context.Context, req Request) (MockResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	if respond := m.Respond; respond != nil {
		m.mu.Unlock()
		return respond(ctx, req), nil
	}
	defer m.mu.Unlock()
	if len(m.script) == 0 {
		return MockResponse{}, &ErrProviderUnavailable{Err: errScriptExhausted}
	}
	reply := m.script[0]
	m.script = m.script[1:]
	return reply, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, r)
	m.mu.Unlock()
}

// CallCount reports how many requests have been made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
