package store

import (
	"context"
	"fmt"
)

func (r *eventRepo) AppendDegradation(ctx context.Context, data DegradationEventData) error {
	return r.insertEvent(ctx, "degradation_events",
		[]string{"component", "reason", "error_message"},
		data.Component, data.Reason, data.ErrorMessage,
	)
}

func (r *eventRepo) DegradationCounts(ctx context.Context) ([]DegradationCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT component, reason, COUNT(*)
		FROM degradation_events GROUP BY component, reason ORDER BY component, reason`)
	if err != nil {
		return nil, fmt.Errorf("query degradation counts: %w", err)
	}
	defer rows.Close()

	var out []DegradationCount
	for rows.Next() {
		var c DegradationCount
		if err := rows.Scan(&c.Component, &c.Reason, &c.Count); err != nil {
			return nil, fmt.Errorf("scan degradation count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
