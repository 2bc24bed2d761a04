// Package extract converts a conversation export into markdown files.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rcliao/convo-notes/internal/export"
	"github.com/rcliao/convo-notes/internal/filter"
	"github.com/rcliao/convo-notes/internal/fsutil"
	"github.com/rcliao/convo-notes/internal/markdown"
	"github.com/rcliao/convo-notes/internal/model"
)

// Event outcomes recorded per conversation.
const (
	OutcomeRendered = "rendered"
	OutcomeFiltered = "filtered"
	OutcomeError    = "error"
)

// Recorder receives one event per conversation.
type Recorder interface {
	Record(ctx context.Context, ev model.Event) error
}

// Options configures a Driver.
type Options struct {
	Logger   *slog.Logger
	Recorder Recorder
}

// Report aggregates an extraction run.
type Report struct {
	Total      int            `json:"total"`
	Rendered   int            `json:"rendered"`
	Errored    int            `json:"errored"`
	Filtered   int            `json:"filtered"`
	FilterRate float64        `json:"filter_rate"`
	Reasons    map[string]int `json:"reasons,omitempty"`
	Files      []string       `json:"files,omitempty"`
}

// Driver runs the extraction stage.
type Driver struct {
	opts Options
	log  *slog.Logger
}

// New creates a Driver.
func New(opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{opts: opts, log: logger}
}

// Run loads the export and writes one markdown file per surviving
// conversation into outputDir. Load errors abort the run; per-conversation
// errors are logged and counted.
func (d *Driver) Run(ctx context.Context, exportPath, outputDir string) (*Report, error) {
	conversations, err := export.Load(exportPath)
	if err != nil {
		return nil, err
	}
	d.log.Info("loaded export", "path", exportPath, "conversations", len(conversations))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report := &Report{Total: len(conversations), Reasons: map[string]int{}}
	written := map[string]string{}

	for i, conv := range conversations {
		name := conv.Name
		if name == "" {
			name = fmt.Sprintf("conversation-%d", i+1)
		}
		log := d.log.With("conversation", name, "index", i+1)

		if decision := filter.ShouldFilter(conv); decision.Filtered {
			report.Filtered++
			report.Reasons[decision.Reason]++
			log.Info("filtered", "reason", decision.Reason)
			d.record(ctx, model.Event{Item: name, Outcome: OutcomeFiltered, Detail: decision.Reason})
			continue
		}

		doc := markdown.Render(conv)
		if prev, ok := written[doc.Filename]; ok {
			log.Warn("overwriting file written earlier in this run", "file", doc.Filename, "previous", prev)
		}
		if err := fsutil.WriteFileAtomic(filepath.Join(outputDir, doc.Filename), []byte(doc.Text), 0o644); err != nil {
			report.Errored++
			log.Error("render failed", "error", err)
			d.record(ctx, model.Event{Item: name, Outcome: OutcomeError, Detail: err.Error()})
			continue
		}

		written[doc.Filename] = name
		report.Rendered++
		report.Files = append(report.Files, doc.Filename)
		log.Info("rendered", "file", doc.Filename)
		d.record(ctx, model.Event{Item: name, Outcome: OutcomeRendered, Detail: doc.Filename})
	}

	if report.Total > 0 {
		report.FilterRate = float64(report.Filtered) / float64(report.Total) * 100
	}
	return report, nil
}

func (d *Driver) record(ctx context.Context, ev model.Event) {
	if d.opts.Recorder == nil {
		return
	}
	if err := d.opts.Recorder.Record(ctx, ev); err != nil {
		d.log.Warn("ledger record failed", "item", ev.Item, "error", err)
	}
}
