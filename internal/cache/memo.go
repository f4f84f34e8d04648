package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/questa/internal/degrade"
)

// Memo runs a generation at most once per key. Concurrent callers for the
// same key share one in-flight call; across processes the backing Store
// keeps the first value written. A nil *Memo calls fn every time.
type Memo struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewMemo creates a Memo over s. A nil store returns nil.
func NewMemo(s Store, ttl time.Duration, logger *zap.Logger) *Memo {
	if s == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memo{store: s, ttl: ttl, logger: logger}
}

// Do returns the cached value for key, or runs fn and stores its result.
// Store failures are logged and the freshly generated value is returned.
// Errors from fn are not cached, and neither are values produced while a
// generative strategy degraded, so a later call can reach the provider.
func (m *Memo) Do(ctx context.Context, key string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if m == nil {
		return fn(ctx)
	}
	if v, ok := m.lookup(ctx, key); ok {
		return v, nil
	}

	v, err, shared := m.group.Do(key, func() (any, error) {
		if v, ok := m.lookup(ctx, key); ok {
			return v, nil
		}
		genCtx, degraded := degrade.Track(ctx)
		v, err := fn(genCtx)
		if err != nil {
			return nil, err
		}
		if degraded() {
			m.logger.Debug("degraded result not cached", zap.String("key", key))
			return v, nil
		}
		winner, err := m.store.SetIfAbsent(context.WithoutCancel(ctx), key, v, m.ttl)
		if err != nil {
			m.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			return v, nil
		}
		return winner, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.logger.Debug("cache call shared", zap.String("key", key))
	}
	return clone(v.([]byte)), nil
}

func (m *Memo) lookup(ctx context.Context, key string) ([]byte, bool) {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if ok {
		m.logger.Debug("cache hit", zap.String("key", key))
	}
	return v, ok
}

// Cached is Do for JSON-encodable values.
func Cached[T any](ctx context.Context, m *Memo, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	b, err := m.Do(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}
