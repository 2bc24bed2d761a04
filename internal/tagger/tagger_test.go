package tagger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rcliao/convo-notes/internal/model"
	"github.com/rcliao/convo-notes/internal/tool"
)

const body = "# Chat\n\n**Messages:** 2\n\n---\n\n## Human\n\nHi\n\n## Assistant\n\nHello\n"

// fakeTool edits the requested file with a fixed function.
type fakeTool struct {
	calls int
	edit  func(text string) string
	err   error
	block bool
}

func (f *fakeTool) Run(ctx context.Context, req tool.Request) error {
	f.calls++
	if f.block {
		<-ctx.Done()
		return tool.ErrTimeout
	}
	if f.edit != nil {
		current, err := os.ReadFile(req.Path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(req.Path, []byte(f.edit(string(current))), 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func appendTags(tags ...string) func(string) string {
	return func(text string) string {
		for _, tag := range tags {
			text += "\n[[" + tag + "]]"
		}
		return text
	}
}

type memRecorder struct {
	events []model.Event
}

func (m *memRecorder) Record(ctx context.Context, ev model.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestProcessFile_Accepted(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "chat.md", body)
	ft := &fakeTool{edit: appendTags("greeting", "Smalltalk")}
	d := New(ft, Options{Prompt: "tag", Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), path)
	require.Equal(t, Accepted, res.Outcome)
	require.Equal(t, []string{"greeting", "Smalltalk"}, res.Tags)
	require.Len(t, res.Issues, 1, "uppercase tag is reported but does not change the outcome")
	require.Equal(t, 1, ft.calls)
	require.Equal(t, body+"\n[[greeting]]\n[[Smalltalk]]", readDoc(t, path))
}

func TestProcessFile_IdempotentWithoutForce(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "chat.md", body)
	ft := &fakeTool{edit: appendTags("greeting")}
	d := New(ft, Options{Prompt: "tag", Logger: quietLogger()})

	require.Equal(t, Accepted, d.ProcessFile(context.Background(), path).Outcome)
	second := d.ProcessFile(context.Background(), path)
	require.Equal(t, Skipped, second.Outcome)
	require.Equal(t, []string{"greeting"}, second.Tags)
	require.Equal(t, 1, ft.calls, "second run must not call the tool")
}

func TestProcessFile_SentinelOnlyIsNotTagged(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "chat.md", body+"\n[[claude]]")
	ft := &fakeTool{edit: appendTags("greeting")}
	d := New(ft, Options{Prompt: "tag", Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), path)
	require.Equal(t, Accepted, res.Outcome)
	require.Equal(t, 1, ft.calls)
}

func TestProcessFile_Force(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "chat.md", body+"\n[[old]]")
	ft := &fakeTool{edit: appendTags("new")}
	d := New(ft, Options{Prompt: "tag", Force: true, Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), path)
	require.Equal(t, Accepted, res.Outcome)
	require.Equal(t, []string{"old", "new"}, res.Tags)
	require.Equal(t, 1, ft.calls)
}

func TestProcessFile_RevertsModifiedBody(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "chat.md", body)
	ft := &fakeTool{edit: func(text string) string {
		return strings.Replace(text, "Hello", "Hullo", 1) + "\n[[greeting]]"
	}}
	d := New(ft, Options{Prompt: "tag", Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), path)
	require.Equal(t, Reverted, res.Outcome)
	require.Equal(t, body, readDoc(t, path))
}

func TestProcessFile_RevertsRemovedSentinelWithProse(t *testing.T) {
	original := body + "\n[[claude]]"
	path := writeDoc(t, t.TempDir(), "chat.md", original)
	ft := &fakeTool{edit: func(string) string { return body + "\nTags: go\n[[go]]" }}
	d := New(ft, Options{Prompt: "tag", Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), path)
	require.Equal(t, Reverted, res.Outcome)
	require.Equal(t, original, readDoc(t, path))
}

func TestProcessFile_ToolErrorLeavesFile(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "chat.md", body)
	ft := &fakeTool{edit: func(text string) string { return "garbage" }, err: &tool.ExitError{Code: 1}}
	d := New(ft, Options{Prompt: "tag", Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), path)
	require.Equal(t, Failed, res.Outcome)
	require.Contains(t, res.Error, "status 1")
	require.Equal(t, "garbage", readDoc(t, path), "no rollback on tool failure")
}

func TestProcessFile_Timeout(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "chat.md", body)
	ft := &fakeTool{block: true}
	d := New(ft, Options{Prompt: "tag", Timeout: 20 * time.Millisecond, Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), path)
	require.Equal(t, Failed, res.Outcome)
	require.Equal(t, tool.ErrTimeout.Error(), res.Error)
	require.Equal(t, body, readDoc(t, path))
}

func TestProcessFile_MissingFile(t *testing.T) {
	ft := &fakeTool{}
	d := New(ft, Options{Prompt: "tag", Logger: quietLogger()})

	res := d.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "gone.md"))
	require.Equal(t, Failed, res.Outcome)
	require.Zero(t, ft.calls)
}

func TestRun_ReportTotalsAndLimit(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", body)
	writeDoc(t, dir, "b.md", body+"\n[[done]]")
	writeDoc(t, dir, "c.md", body)
	writeDoc(t, dir, "d.md", body)
	writeDoc(t, dir, "notes.txt", "ignored")

	calls := 0
	ft := &fakeTool{}
	ft.edit = func(text string) string {
		calls++
		if calls == 2 {
			return "rewritten"
		}
		return text + "\n[[topic]]"
	}
	rec := &memRecorder{}
	d := New(ft, Options{Prompt: "tag", Limit: 3, Logger: quietLogger(), Recorder: rec})

	report, err := d.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 3, report.Total)
	require.Equal(t, 1, report.Accepted)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 1, report.Reverted)
	require.Equal(t, 0, report.Failed)
	require.Equal(t, report.Total, report.Accepted+report.Skipped+report.Reverted+report.Failed)

	require.Len(t, rec.events, 3)
	require.Equal(t, "a.md", rec.events[0].Item)
	require.Equal(t, string(Accepted), rec.events[0].Outcome)
	require.Equal(t, string(Skipped), rec.events[1].Outcome)
	require.Equal(t, string(Reverted), rec.events[2].Outcome)
	require.Equal(t, body, readDoc(t, filepath.Join(dir, "c.md")))
	require.Equal(t, body, readDoc(t, filepath.Join(dir, "d.md")), "limit excludes d.md")
}

func TestRun_MissingDir(t *testing.T) {
	d := New(&fakeTool{}, Options{Prompt: "tag", Logger: quietLogger()})
	_, err := d.Run(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
