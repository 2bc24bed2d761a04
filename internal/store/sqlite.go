package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/convo-notes/internal/model"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy io.Reader
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// IDs are monotonic within a process, so ORDER BY id is insertion order.
func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		source      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		summary     TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind, started_at DESC);

	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL REFERENCES runs(id),
		item        TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		detail      TEXT,
		tags        TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_item ON events(item, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) StartRun(ctx context.Context, kind, source string) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{ID: s.newID(), Kind: kind, Source: source, StartedAt: now}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, source, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, kind, source, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) Record(ctx context.Context, ev model.Event) error {
	if ev.RunID == "" {
		return fmt.Errorf("event for %s has no run id", ev.Item)
	}
	if ev.ID == "" {
		ev.ID = s.newID()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	var tagsJSON *string
	if len(ev.Tags) > 0 {
		b, _ := json.Marshal(ev.Tags)
		s := string(b)
		tagsJSON = &s
	}
	var detail *string
	if ev.Detail != "" {
		detail = &ev.Detail
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, run_id, item, outcome, detail, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.RunID, ev.Item, ev.Outcome, detail, tagsJSON, ev.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, summary any) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, summary = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), string(b), runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListRunsParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT r.id, r.kind, r.source, r.started_at, r.finished_at, r.summary,
	                 (SELECT COUNT(*) FROM events e WHERE e.run_id = r.id)
	          FROM runs r`
	var args []interface{}
	if p.Kind != "" {
		query += ` WHERE r.kind = ?`
		args = append(args, p.Kind)
	}
	query += ` ORDER BY r.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var (
			r          model.Run
			startedAt  string
			finishedAt sql.NullString
			summary    sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Kind, &r.Source, &startedAt, &finishedAt, &summary, &r.EventCount); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, finishedAt.String)
			r.FinishedAt = &t
		}
		r.Summary = summary.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) History(ctx context.Context, item string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, item, outcome, detail, tags, created_at
		 FROM events WHERE item = ? ORDER BY id`, item)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no history for %s", item)
	}
	return events, nil
}

func (s *SQLiteStore) TagCounts(ctx context.Context) ([]TagCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.run_id, e.item, e.outcome, e.detail, e.tags, e.created_at
		 FROM events e JOIN runs r ON r.id = e.run_id
		 WHERE r.kind = ? AND e.outcome IN ('accepted', 'skipped')
		 ORDER BY e.id`, model.RunTag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	latest := map[string][]string{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		latest[ev.Item] = ev.Tags
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, tagList := range latest {
		seen := map[string]bool{}
		for _, tag := range tagList {
			if !seen[tag] {
				seen[tag] = true
				counts[tag]++
			}
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RunRecorder records events into a single run.
type RunRecorder struct {
	store *SQLiteStore
	runID string
}

// Recorder returns a recorder bound to runID.
func (s *SQLiteStore) Recorder(runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// Record stamps ev with the run id and stores it.
func (r *RunRecorder) Record(ctx context.Context, ev model.Event) error {
	ev.RunID = r.runID
	return r.store.Record(ctx, ev)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(sc scanner) (model.Event, error) {
	var (
		ev        model.Event
		detail    sql.NullString
		tagsJSON  sql.NullString
		createdAt string
	)
	if err := sc.Scan(&ev.ID, &ev.RunID, &ev.Item, &ev.Outcome, &detail, &tagsJSON, &createdAt); err != nil {
		return ev, err
	}
	ev.Detail = detail.String
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &ev.Tags)
	}
	ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return ev, nil
}
