// Package degrade records generative strategies falling back to their
// deterministic counterparts.
package degrade

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/abhisek/questa/internal/llm"
	"github.com/abhisek/questa/internal/store"
	"go.uber.org/zap"
)

// Reasons recorded with each degradation.
const (
	ReasonTimeout         = "timeout"
	ReasonUnavailable     = "unavailable"
	ReasonInvalidResponse = "invalid_response"
	ReasonDeadline        = "deadline"
	ReasonDuplicate       = "duplicate"
	ReasonError           = "error"
)

// Reporter logs degradations and optionally persists them. A nil *Reporter
// is valid and discards everything.
type Reporter struct {
	logger *zap.Logger
	events store.EventRepo
}

// NewReporter creates a Reporter. events may be nil.
func NewReporter(logger *zap.Logger, events store.EventRepo) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{logger: logger, events: events}
}

// Degraded records that component fell back because of err.
func (r *Reporter) Degraded(ctx context.Context, component string, err error) {
	if t, ok := ctx.Value(trackerKey{}).(*tracker); ok {
		t.degraded.Store(true)
	}
	if r == nil {
		return
	}
	reason := Reason(err)

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.logger.Warn("generative strategy degraded",
		zap.String("component", component),
		zap.String("reason", reason),
		zap.Error(err),
	)

	if r.events == nil {
		return
	}
	// The caller's context may already be done; the event still belongs in the log.
	if appendErr := r.events.AppendDegradation(context.WithoutCancel(ctx), store.DegradationEventData{
		Component:    component,
		Reason:       reason,
		ErrorMessage: msg,
	}); appendErr != nil {
		r.logger.Warn("failed to record degradation event", zap.Error(appendErr))
	}
}

// ErrDuplicate marks generated text that repeats another level or step.
var ErrDuplicate = errors.New("generated text duplicates another entry")

// Reason maps an error to a degradation reason.
func Reason(err error) string {
	var (
		timeout *llm.ErrTimeout
		unavail *llm.ErrProviderUnavailable
		rate    *llm.ErrRateLimit
		invalid *llm.ErrInvalidResponse
		maxTok  *llm.ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &timeout):
		return ReasonTimeout
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadline
	case errors.Is(err, ErrDuplicate):
		return ReasonDuplicate
	case errors.As(err, &unavail), errors.As(err, &rate):
		return ReasonUnavailable
	case errors.As(err, &invalid), errors.As(err, &maxTok):
		return ReasonInvalidResponse
	default:
		return ReasonError
	}
}

type trackerKey struct{}

type tracker struct {
	degraded atomic.Bool
}

// Track returns a context under which degradations are noted, and a func
// reporting whether any were.
func Track(ctx context.Context) (context.Context, func() bool) {
	t := &tracker{}
	return context.WithValue(ctx, trackerKey{}, t), t.degraded.Load
}
