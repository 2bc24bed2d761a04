package model

import "time"

// Run kinds.
const (
	RunExtract = "extract"
	RunTag     = "tag"
)

// Run is one invocation of a pipeline stage recorded in the ledger.
type Run struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Source     string     `json:"source"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	EventCount int        `json:"events"`
}

// Event is the outcome for one item (conversation or file) within a run.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Item      string    `json:"item"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
