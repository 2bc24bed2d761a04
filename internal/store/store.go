// Package store provides the run ledger interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/convo-notes/internal/model"
)

// ListRunsParams holds parameters for listing runs.
type ListRunsParams struct {
	Kind  string
	Limit int
}

// TagCount is how many files currently carry a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Store defines the run ledger interface.
type Store interface {
	// StartRun opens a run of the given kind for source (export path or directory).
	StartRun(ctx context.Context, kind, source string) (*model.Run, error)

	// Record appends an event to a run.
	Record(ctx context.Context, ev model.Event) error

	// FinishRun stamps a run as finished with a JSON summary.
	FinishRun(ctx context.Context, runID string, summary any) error

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, p ListRunsParams) ([]model.Run, error)

	// History returns every event for an item, oldest first.
	History(ctx context.Context, item string) ([]model.Event, error)

	// TagCounts tallies tags from the latest tagging event of each file.
	TagCounts(ctx context.Context) ([]TagCount, error)

	// Close closes the store.
	Close() error
}
