// Package tool runs the external tag generator against a document.
//
// A Tool receives the document text and an instruction, and is expected to
// append tag lines to the file at Request.Path itself. Callers never trust it
// to stay within that scope and verify the file afterwards.
package tool

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is returned when the tool does not finish before the deadline.
var ErrTimeout = errors.New("tool timed out")

// Request is one tagging call: the document path the tool may edit, the full
// document text, and the tagging instruction.
type Request struct {
	Path   string
	Input  string
	Prompt string
}

// Tool runs the external tagging step for one file. A nil error means the
// tool reported success.
type Tool interface {
	Run(ctx context.Context, req Request) error
}

// ExitError reports a tool that exited with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("tool exited with status %d", e.Code)
	}
	return fmt.Sprintf("tool exited with status %d: %s", e.Code, e.Stderr)
}
