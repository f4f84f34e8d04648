package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

// eventRepo implements EventRepo over raw SQL.
type eventRepo struct {
	db  *sql.DB
	seq *sequencer
}

// sequencer numbers rows across every event table, so an LLM call and the
// degradation it triggered sort in the order they happened.
type sequencer struct {
	mu sync.Mutex
	db *sql.DB
}

func (s *sequencer) next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v int64
	if err := s.db.QueryRowContext(ctx,
		`UPDATE event_sequence SET value = value + 1 WHERE id = 1 RETURNING value`,
	).Scan(&v); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return v, nil
}

// insertEvent stamps a row with the next sequence and the current time,
// then writes cols and vals after them.
func (r *eventRepo) insertEvent(ctx context.Context, table string, cols []string, vals ...any) error {
	seq, err := r.seq.next(ctx)
	if err != nil {
		return err
	}

	all := append([]string{"sequence", "timestamp"}, cols...)
	args := append([]any{seq, time.Now().UnixMilli()}, vals...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(all, ", "), placeholders)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
