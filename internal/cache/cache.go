// Package cache stores generated hints and solutions so each question is
// generated at most once. Backends share first-writer-wins semantics: the
// first value stored for a key is the one every reader sees until it expires.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/questa/internal/store"
)

// Store is a byte-oriented artifact store.
type Store interface {
	// Get returns the value for key, reporting false when absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetIfAbsent stores value unless key already holds one, and returns
	// the value held after the call.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error)

	// Close releases the backend's resources.
	Close() error
}

// Backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures the artifact cache.
type Config struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// DefaultConfig returns an in-process cache holding artifacts for a day.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		TTL:     24 * time.Hour,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "questa:",
		},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone, BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("cache: redis backend requires an address")
		}
	default:
		return fmt.Errorf("cache: unknown backend %q", c.Backend)
	}
	if c.TTL < 0 {
		return fmt.Errorf("cache: ttl must not be negative")
	}
	return nil
}

// Open builds the configured Store. The none backend returns (nil, nil).
// artifacts backs the sqlite backend and may be nil otherwise.
func Open(ctx context.Context, cfg Config, artifacts store.ArtifactRepo) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if artifacts == nil {
			return nil, fmt.Errorf("cache: sqlite backend requires a store")
		}
		return NewSQLStore(artifacts), nil
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	}
	return nil, nil
}
