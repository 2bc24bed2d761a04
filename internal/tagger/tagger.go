// Package tagger adds tags to rendered conversation files through an external
// tool, reverting any file the tool modified beyond appending tags.
package tagger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/rcliao/convo-notes/internal/fsutil"
	"github.com/rcliao/convo-notes/internal/model"
	"github.com/rcliao/convo-notes/internal/tags"
	"github.com/rcliao/convo-notes/internal/tool"
)

// Outcome is the terminal state of one file. Accepted means the tool ran and
// only tags changed; Skipped means the file already had tags and the tool was
// not called; Reverted means the tool changed content and the original was
// restored; Failed covers tool errors, timeouts and unreadable files.
type Outcome string

const (
	Accepted Outcome = "accepted"
	Skipped  Outcome = "skipped"
	Reverted Outcome = "reverted"
	Failed   Outcome = "failed"
)

// Recorder receives one event per processed file.
type Recorder interface {
	Record(ctx context.Context, ev model.Event) error
}

// Options configures a Driver. Zero CallsPerMinute leaves tool calls
// unpaced; zero Limit processes every file.
type Options struct {
	Prompt         string
	Timeout        time.Duration
	CallsPerMinute float64
	Force          bool
	Limit          int
	Logger         *slog.Logger
	Recorder       Recorder
}

// Result is the outcome for one file.
type Result struct {
	File    string   `json:"file"`
	Outcome Outcome  `json:"outcome"`
	Tags    []string `json:"tags,omitempty"`
	Issues  []string `json:"issues,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Report aggregates a tagging run. Accepted+Skipped+Reverted+Failed == Total.
type Report struct {
	Total    int      `json:"total"`
	Accepted int      `json:"accepted"`
	Skipped  int      `json:"skipped"`
	Reverted int      `json:"reverted"`
	Failed   int      `json:"failed"`
	Results  []Result `json:"results"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case Accepted:
		r.Accepted++
	case Skipped:
		r.Skipped++
	case Reverted:
		r.Reverted++
	case Failed:
		r.Failed++
	}
}

// Driver runs the per-file tagging state machine.
type Driver struct {
	tool    tool.Tool
	opts    Options
	log     *slog.Logger
	limiter *rate.Limiter
}

// New creates a Driver around t.
func New(t tool.Tool, opts Options) *Driver {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if opts.CallsPerMinute > 0 {
		limit = rate.Limit(opts.CallsPerMinute / 60)
	}
	return &Driver{
		tool:    t,
		opts:    opts,
		log:     logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Files lists the markdown documents in dir, sorted by name.
func Files(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("conversations dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("conversations dir %s is not a directory", dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Run tags every markdown file in dir, honoring Limit. A failure on one file
// never stops the batch.
func (d *Driver) Run(ctx context.Context, dir string) (*Report, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	d.log.Info("found conversation files", "dir", dir, "count", len(files))
	if d.opts.Limit > 0 && len(files) > d.opts.Limit {
		files = files[:d.opts.Limit]
		d.log.Info("limiting run", "limit", d.opts.Limit)
	}

	report := &Report{Total: len(files), Results: make([]Result, 0, len(files))}
	for _, path := range files {
		res := d.ProcessFile(ctx, path)
		report.add(res)
		d.record(ctx, res)
	}
	return report, nil
}

// ProcessFile runs one file through the state machine.
func (d *Driver) ProcessFile(ctx context.Context, path string) Result {
	res := Result{File: path}
	log := d.log.With("file", filepath.Base(path))

	original, err := os.ReadFile(path)
	if err != nil {
		log.Error("read failed", "error", err)
		return d.fail(res, err)
	}
	before := string(original)

	if tagged, existing := tags.AlreadyTagged(before); tagged && !d.opts.Force {
		log.Info("already tagged", "tags", existing)
		res.Outcome = Skipped
		res.Tags = existing
		return res
	}

	if err := d.limiter.Wait(ctx); err != nil {
		log.Error("tool not called", "error", err)
		return d.fail(res, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	err = d.tool.Run(callCtx, tool.Request{Path: path, Input: before, Prompt: d.opts.Prompt})
	cancel()
	if err != nil {
		log.Error("tool failed", "error", err, "timeout", errors.Is(err, tool.ErrTimeout))
		return d.fail(res, err)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		log.Error("re-read failed", "error", err)
		return d.fail(res, err)
	}
	after := string(updated)

	if !tags.Unchanged(before, after) {
		if err := d.restore(path, original); err != nil {
			log.Error("content modified by tool, restore failed", "error", err)
			return d.fail(res, fmt.Errorf("restore original: %w", err))
		}
		log.Warn("content modified by tool, restored original")
		res.Outcome = Reverted
		res.Error = "content modified outside tags"
		return res
	}

	_, res.Tags = tags.AlreadyTagged(after)
	res.Issues = tags.Validate(after)
	res.Outcome = Accepted
	if len(res.Issues) > 0 {
		log.Warn("tag validation issues", "issues", res.Issues)
	}
	log.Info("tagged", "tags", res.Tags)
	return res
}

func (d *Driver) fail(res Result, err error) Result {
	res.Outcome = Failed
	res.Error = err.Error()
	return res
}

func (d *Driver) restore(path string, original []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return fsutil.WriteFileAtomic(path, original, perm)
}

func (d *Driver) record(ctx context.Context, res Result) {
	if d.opts.Recorder == nil {
		return
	}
	detail := res.Error
	if detail == "" && len(res.Issues) > 0 {
		detail = fmt.Sprintf("%d tag issues", len(res.Issues))
	}
	ev := model.Event{
		Item:    filepath.Base(res.File),
		Outcome: string(res.Outcome),
		Detail:  detail,
		Tags:    res.Tags,
	}
	if err := d.opts.Recorder.Record(ctx, ev); err != nil {
		d.log.Warn("ledger record failed", "file", ev.Item, "error", err)
	}
}
