package tool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/rcliao/convo-notes/internal/fsutil"
	"github.com/rcliao/convo-notes/internal/tags"
)

const apiSystemPrompt = "You label conversations. Reply with the tags only, one per line, each written as [[tag]]. No other text."

// messageCreator is the subset of the Anthropic client used here.
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// API asks the Anthropic Messages API for tags and appends them to the file
// itself.
type API struct {
	messages  messageCreator
	model     string
	maxTokens int64
}

// NewAPI creates an API tool using ANTHROPIC_API_KEY.
func NewAPI(model string, maxTokens int64) (*API, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &API{messages: &client.Messages, model: model, maxTokens: maxTokens}, nil
}

// Run implements Tool.
func (a *API) Run(ctx context.Context, req Request) error {
	msg, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: apiSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt + "\n\nConversation:\n\n" + req.Input)),
		},
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("messages api: %w", err)
	}

	var reply strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
			reply.WriteByte('\n')
		}
	}

	found := parseReply(reply.String())
	if len(found) == 0 {
		return fmt.Errorf("no tags in reply: %q", strings.TrimSpace(reply.String()))
	}

	current, err := os.ReadFile(req.Path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	info, err := os.Stat(req.Path)
	if err != nil {
		return fmt.Errorf("stat document: %w", err)
	}
	return fsutil.WriteFileAtomic(req.Path, []byte(tags.Append(string(current), found)), info.Mode().Perm())
}

// parseReply pulls tags out of a model reply: [[tag]] tokens when present,
// otherwise one bare word per line.
func parseReply(reply string) []string {
	if found := tags.Extract(reply); len(found) > 0 {
		return found
	}
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if line == "" || strings.ContainsAny(line, "[]") {
			continue
		}
		out = append(out, line)
	}
	return out
}
