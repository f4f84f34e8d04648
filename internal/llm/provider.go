package llm

import (
	"context"
	"encoding/json"
)

// Provider generates text for hint phrasing and solution prose. The engine
// treats every Provider error as recoverable and falls back to templates.
type Provider interface {
	// Generate sends one prompt and returns the model output. When
	// req.Schema is set the output is JSON that has been validated against
	// it; truncated structured output fails with *ErrMaxTokensExceeded.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages normally holds one user message built by the hint or
	// solution prompt builders.
	Messages []Message

	// Schema, when set, asks for the vendor's native structured output.
	// When nil the response Content is the text encoded as a JSON string.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the vendor default in place.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON object a caller expects back.
type Schema struct {
	// Name identifies the schema in vendor requests and in the compiled
	// schema cache, e.g. "question-hint".
	Name string

	Description string

	// Definition is a JSON Schema document.
	Definition map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopBlocked   = "blocked"
)

// Response holds the model output.
type Response struct {
	// Content is validated JSON for schema requests and a JSON string
	// otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is one of StopEnd, StopMaxTokens or StopBlocked.
	StopReason string
}

// Text decodes Content when it is a JSON string and returns it verbatim
// otherwise.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
