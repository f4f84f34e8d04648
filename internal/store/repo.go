package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose   string // exact purpose match (LLM events only)
	RequestID string // exact request ID match (LLM events only)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	RequestID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// DegradationEventData records a generative strategy falling back to its
// deterministic counterpart.
type DegradationEventData struct {
	Component    string // classifier, hints, solution
	Reason       string // timeout, unavailable, invalid_response, deadline, error
	ErrorMessage string
}

// DegradationEvent is a stored degradation event.
type DegradationEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	DegradationEventData
}

// DegradationCount is the number of degradations per component and reason.
type DegradationCount struct {
	Component string
	Reason    string
	Count     int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one LLM event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// AppendDegradation records a fallback from a generative strategy.
	AppendDegradation(ctx context.Context, data DegradationEventData) error

	// DegradationCounts aggregates degradations per component and reason.
	DegradationCounts(ctx context.Context) ([]DegradationCount, error)
}

// ArtifactRepo stores generated artifacts with first-writer-wins semantics.
type ArtifactRepo interface {
	// Get returns the stored value for key. Expired rows are treated as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// PutIfAbsent stores value unless an unexpired value already exists, and
	// returns whichever value is stored after the call.
	PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error)
}
