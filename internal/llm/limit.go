package llm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// LimitProvider caps the number of in-flight Generate calls. Callers beyond
// the cap wait for a slot or give up when their context ends.
type LimitProvider struct {
	inner Provider
	sem   *semaphore.Weighted
}

// WithConcurrencyLimit wraps a Provider so at most n calls run at once.
// A non-positive n returns p unchanged.
func WithConcurrencyLimit(p Provider, n int) Provider {
	if n <= 0 {
		return p
	}
	return &LimitProvider{inner: p, sem: semaphore.NewWeighted(int64(n))}
}

func (l *LimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.Generate(ctx, req)
}

func (l *LimitProvider) ModelID() string {
	return l.inner.ModelID()
}
