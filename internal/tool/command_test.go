package tool

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script standing in for the agent CLI.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-agent")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// appendScript follows the file path named on the last line of the prompt,
// resolved from its own working directory, the way an agent CLI would.
const appendScript = `cat > /dev/null
file="${2##*Conversation file: }"
printf '\n[[shell]]\n' >> "$file"
`

func TestCommand_AppendsToFile(t *testing.T) {
	script := writeScript(t, appendScript)
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(doc, []byte("body"), 0o644))

	c := &Command{Name: script, AllowedTools: "Read,Write,Edit"}
	err := c.Run(context.Background(), Request{Path: doc, Input: "body", Prompt: "tag it"})
	require.NoError(t, err)

	got, err := os.ReadFile(doc)
	require.NoError(t, err)
	require.Equal(t, "body\n[[shell]]\n", string(got))
}

func TestCommand_RelativePath(t *testing.T) {
	script := writeScript(t, appendScript)
	t.Chdir(t.TempDir())
	require.NoError(t, os.Mkdir("conversations", 0o755))
	doc := filepath.Join("conversations", "doc.md")
	require.NoError(t, os.WriteFile(doc, []byte("body"), 0o644))

	c := &Command{Name: script}
	err := c.Run(context.Background(), Request{Path: doc, Input: "body", Prompt: "tag it"})
	require.NoError(t, err)

	got, err := os.ReadFile(doc)
	require.NoError(t, err)
	require.Equal(t, "body\n[[shell]]\n", string(got))
	_, err = os.Stat(filepath.Join("conversations", "conversations"))
	require.True(t, os.IsNotExist(err))
}

func TestCommand_NonZeroExit(t *testing.T) {
	script := writeScript(t, "echo 'rate limited' >&2\nexit 3\n")
	c := &Command{Name: script}

	err := c.Run(context.Background(), Request{Path: filepath.Join(t.TempDir(), "doc.md"), Prompt: "p"})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Code)
	require.Equal(t, "rate limited", exitErr.Stderr)
}

func TestCommand_Timeout(t *testing.T) {
	script := writeScript(t, "sleep 5\n")
	c := &Command{Name: script}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.Run(ctx, Request{Path: filepath.Join(t.TempDir(), "doc.md"), Prompt: "p"})
	require.True(t, errors.Is(err, ErrTimeout), "expected ErrTimeout, got %v", err)
	require.Less(t, time.Since(start), 4*time.Second)
}

func TestCommand_MissingBinary(t *testing.T) {
	c := &Command{Name: filepath.Join(t.TempDir(), "no-such-agent")}
	err := c.Run(context.Background(), Request{Path: filepath.Join(t.TempDir(), "doc.md")})
	require.Error(t, err)
	var exitErr *ExitError
	require.False(t, errors.As(err, &exitErr))
}

func TestCommand_Args(t *testing.T) {
	c := &Command{Name: "claude", AllowedTools: "Read,Edit", Args: []string{"--model", "haiku"}}
	args := c.args(Request{Path: "/notes/a.md", Prompt: "tag"})
	require.Equal(t, []string{"-p", "tag\n\nConversation file: /notes/a.md", "--allowedTools=Read,Edit", "--model", "haiku"}, args)
}
