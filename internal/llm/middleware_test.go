package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/questa/internal/store"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestMain fails the package when a test leaves goroutines behind. The
// ignored ones are started by dependencies at init.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreAnyFunction("github.com/redis/go-redis/v9/internal/pool.startGlobalTimeCache.func1"),
	)
}

// slowProvider blocks until its context ends or the delay elapses.
type slowProvider struct {
	delay time.Duration

	mu        sync.Mutex
	inFlight  int
	maxFlight int
}

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxFlight {
		s.maxFlight = s.inFlight
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return &Response{Content: json.RawMessage(`{"hint":"ok"}`), Model: "slow"}, nil
	}
}

func (s *slowProvider) ModelID() string { return "slow" }

func TestTimeout_MapsDeadlineToErrTimeout(t *testing.T) {

	p := WithTimeout(&slowProvider{delay: time.Second}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})

	var to *ErrTimeout
	if !errors.As(err, &to) {
		t.Fatalf("expected ErrTimeout, got %T (%v)", err, err)
	}
	if to.After != 10*time.Millisecond {
		t.Fatalf("After = %s, want 10ms", to.After)
	}
}

func TestTimeout_CallerCancellationIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := WithTimeout(&slowProvider{delay: time.Second}, time.Minute)
	_, err := p.Generate(ctx, Request{})

	var to *ErrTimeout
	if errors.As(err, &to) {
		t.Fatalf("caller cancellation reported as timeout: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTimeout_DisabledReturnsInner(t *testing.T) {
	inner := NewMockProvider()
	if got := WithTimeout(inner, 0); got != Provider(inner) {
		t.Fatal("expected zero timeout to return the inner provider")
	}
}

func TestConcurrencyLimit_CapsInFlight(t *testing.T) {

	slow := &slowProvider{delay: 20 * time.Millisecond}
	p := WithConcurrencyLimit(slow, 2)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Generate(context.Background(), Request{}); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d calls failed", failures.Load())
	}
	if slow.maxFlight > 2 {
		t.Fatalf("max in-flight = %d, want <= 2", slow.maxFlight)
	}
}

func TestConcurrencyLimit_WaitRespectsContext(t *testing.T) {
	slow := &slowProvider{delay: 200 * time.Millisecond}
	p := WithConcurrencyLimit(slow, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Generate(context.Background(), Request{})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while waiting for a slot, got %v", err)
	}
	<-done
}

type recordingEvents struct {
	store.EventRepo
	mu  sync.Mutex
	got []store.LLMRequestEventData
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, d)
	return nil
}

func TestLogging_RecordsEvent(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"hint":"Think about inverse operations."}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	events := &recordingEvents{}
	core, logs := observer.New(zap.DebugLevel)
	p := WithLogging(mock, events, zap.New(core))

	ctx := WithRequestID(WithPurpose(context.Background(), "hint"), "req-42")
	_, err := p.Generate(ctx, Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "rephrase"}},
		Schema:   &Schema{Name: "hint", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events.got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.got))
	}
	e := events.got[0]
	if e.Purpose != "hint" || !e.Success || e.InputTokens != 12 || e.OutputTokens != 7 {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.RequestID != "req-42" || e.Provider != "mock" || e.Model != "mock" {
		t.Fatalf("unexpected event identity: %+v", e)
	}
	if e.ResponseBody != `{"hint":"Think about inverse operations."}` {
		t.Fatalf("unexpected response body: %q", e.ResponseBody)
	}
	for _, want := range []string{"[system]", "[user]", "[schema: hint]"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
	if logs.FilterMessage("llm request").Len() != 1 {
		t.Fatalf("expected one debug log entry, got %d", logs.Len())
	}
}

func TestLogging_NilRepoStillReturnsError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}})
	p := WithLogging(mock, nil, nil)
	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestMockProvider_RespondFunc(t *testing.T) {
	mock := NewMockProvider()
	mock.Respond = func(_ context.Context, req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`"` + req.Messages[0].Content + `"`)}
	}

	resp, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "echo"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `"echo"` {
		t.Fatalf("unexpected content %s", resp.Content)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Config{Provider: "none"}, nil, nil)
	if err != nil || p != nil {
		t.Fatalf("none: got %v, %v; want nil, nil", p, err)
	}

	cfg := DefaultConfig()
	cfg.Provider = "mock"
	p, err = NewProvider(ctx, cfg, nil, nil)
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID = %q, want mock", p.ModelID())
	}
	if _, ok := p.(*TimeoutProvider); !ok {
		t.Fatalf("expected outermost decorator to be the timeout, got %T", p)
	}

	cfg.Provider = "openrouter"
	cfg.OpenRouter.APIKey = "sk-or-test"
	if _, err := NewProvider(ctx, cfg, nil, nil); err != nil {
		t.Fatalf("openrouter: %v", err)
	}

	if _, err := NewProvider(ctx, Config{Provider: "bogus"}, nil, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
