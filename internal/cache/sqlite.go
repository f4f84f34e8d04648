package cache

import (
	"context"
	"time"

	"github.com/abhisek/questa/internal/store"
)

// SQLStore keeps artifacts in the SQLite database. The database is owned
// by the caller; Close does not close it.
type SQLStore struct {
	repo store.ArtifactRepo
}

// NewSQLStore wraps an artifact repository.
func NewSQLStore(repo store.ArtifactRepo) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.repo.Get(ctx, key)
}

func (s *SQLStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	return s.repo.PutIfAbsent(ctx, key, value, ttl)
}

func (s *SQLStore) Close() error { return nil }
