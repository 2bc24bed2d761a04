package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds ledger statistics.
type Stats struct {
	DBPath      string         `json:"db_path"`
	DBSizeBytes int64          `json:"db_size_bytes"`
	TotalRuns   int            `json:"total_runs"`
	TotalEvents int            `json:"total_events"`
	Outcomes    []OutcomeStats `json:"outcomes"`
}

// OutcomeStats holds per-kind, per-outcome event counts.
type OutcomeStats struct {
	Kind    string `json:"kind"`
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// Stats returns ledger statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.TotalRuns); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&st.TotalEvents); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.kind, e.outcome, COUNT(*) as cnt
		FROM events e JOIN runs r ON r.id = e.run_id
		GROUP BY r.kind, e.outcome ORDER BY r.kind, cnt DESC`)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o OutcomeStats
		if err := rows.Scan(&o.Kind, &o.Outcome, &o.Count); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		st.Outcomes = append(st.Outcomes, o)
	}

	return st, rows.Err()
}
