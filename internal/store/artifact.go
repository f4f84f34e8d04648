package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// artifactRepo implements ArtifactRepo on the artifacts table.
type artifactRepo struct {
	db *sql.DB
}

func (r *artifactRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM artifacts WHERE key = ? AND (expires_at = 0 OR expires_at > ?)`,
		key, time.Now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get artifact: %w", err)
	}
	return value, true, nil
}

// PutIfAbsent runs in one transaction so a concurrent writer either sees the
// whole row or none of it.
func (r *artifactRepo) PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin artifact tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var expires int64
	if ttl > 0 {
		expires = now.Add(ttl).UnixMilli()
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM artifacts WHERE key = ? AND expires_at > 0 AND expires_at <= ?`,
		key, now.UnixMilli(),
	); err != nil {
		return nil, fmt.Errorf("expire artifact: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO artifacts (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		key, value, now.UnixMilli(), expires,
	); err != nil {
		return nil, fmt.Errorf("insert artifact: %w", err)
	}

	var stored []byte
	if err := tx.QueryRowContext(ctx, `SELECT value FROM artifacts WHERE key = ?`, key).Scan(&stored); err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit artifact: %w", err)
	}
	return stored, nil
}
