package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Command runs a CLI agent as a subprocess:
//
//	<Name> -p <prompt> --allowedTools=<AllowedTools> <Args...>
//
// with the document on stdin and the working directory set to the
// document's directory. The path named in the prompt is absolute so it
// resolves the same from that directory.
type Command struct {
	Name         string
	AllowedTools string
	Args         []string
}

// Run implements Tool. The deadline comes from ctx.
func (c *Command) Run(ctx context.Context, req Request) error {
	if req.Path != "" {
		abs, err := filepath.Abs(req.Path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", req.Path, err)
		}
		req.Path = abs
	}
	cmd := exec.CommandContext(ctx, c.Name, c.args(req)...)
	cmd.Dir = filepath.Dir(req.Path)
	cmd.Stdin = strings.NewReader(req.Input)
	cmd.WaitDelay = 2 * time.Second

	var stderr bytes.Buffer
	cmd.Stdout = &bytes.Buffer{}
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return ErrTimeout
	} else if ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return fmt.Errorf("start %s: %w", c.Name, err)
	}
	return nil
}

func (c *Command) args(req Request) []string {
	prompt := req.Prompt
	if req.Path != "" {
		prompt += "\n\nConversation file: " + req.Path
	}
	args := []string{"-p", prompt}
	if c.AllowedTools != "" {
		args = append(args, "--allowedTools="+c.AllowedTools)
	}
	return append(args, c.Args...)
}
