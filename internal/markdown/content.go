// Package markdown turns export conversations into markdown documents.
package markdown

import (
	"strings"

	"github.com/rcliao/convo-notes/internal/model"
)

// NoContent is rendered for messages with no usable text.
const NoContent = "[No content]"

// contentSource is one candidate representation of a message body.
type contentSource struct {
	Name    string
	Extract func(model.Message) (string, bool)
}

// contentSources is tried in order; the first source that yields text wins.
var contentSources = []contentSource{
	{Name: "content", Extract: fromContentBlocks},
	{Name: "text", Extract: fromText},
	{Name: "attachments", Extract: fromAttachments},
}

// ExtractContent returns the best-effort text of a message.
func ExtractContent(msg model.Message) string {
	text, _ := extract(msg)
	return text
}

// ContentSource names the representation ExtractContent would use:
// "content", "text", "attachments" or "none".
func ContentSource(msg model.Message) string {
	_, name := extract(msg)
	return name
}

func extract(msg model.Message) (string, string) {
	for _, src := range contentSources {
		if text, ok := src.Extract(msg); ok {
			return text, src.Name
		}
	}
	return NoContent, "none"
}

// Only the first block is consulted.
func fromContentBlocks(msg model.Message) (string, bool) {
	if len(msg.Content) == 0 || msg.Content[0].Text == "" {
		return "", false
	}
	return msg.Content[0].Text, true
}

func fromText(msg model.Message) (string, bool) {
	return msg.Text, msg.Text != ""
}

func fromAttachments(msg model.Message) (string, bool) {
	var parts []string
	for _, att := range msg.Attachments {
		if att.ExtractedContent == "" {
			continue
		}
		name := att.FileName
		if name == "" {
			name = "file"
		}
		parts = append(parts, "[Attachment: "+name+"]", att.ExtractedContent)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n\n"), true
}
