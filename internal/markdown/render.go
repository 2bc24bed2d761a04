package markdown

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rcliao/convo-notes/internal/model"
)

// UntitledConversation is used when a conversation has no name.
const UntitledConversation = "Untitled Conversation"

// Document is a rendered conversation.
type Document struct {
	Filename string
	Text     string
}

// Render builds the markdown document for a conversation. Output is a pure
// function of the input.
func Render(conv model.Conversation) Document {
	title := conv.Name
	if title == "" {
		title = UntitledConversation
	}

	lines := []string{"# " + title, ""}
	if conv.CreatedAt != "" {
		lines = append(lines, "**Created:** "+FormatTimestamp(conv.CreatedAt))
	}
	if conv.UpdatedAt != "" && conv.UpdatedAt != conv.CreatedAt {
		lines = append(lines, "**Updated:** "+FormatTimestamp(conv.UpdatedAt))
	}
	lines = append(lines,
		fmt.Sprintf("**Messages:** %d", len(conv.Messages)),
		"",
		"---",
		"",
	)

	for _, msg := range conv.Messages {
		lines = append(lines, senderHeading(msg.Sender), "", ExtractContent(msg), "")
	}

	return Document{
		Filename: Filename(conv),
		Text:     strings.Join(lines, "\n"),
	}
}

// Filename returns "[YYYY-MM-DD_]<sanitized title>.md" for a conversation.
func Filename(conv model.Conversation) string {
	title := conv.Name
	if title == "" {
		title = UntitledConversation
	}
	return datePrefix(conv.CreatedAt) + SanitizeFilename(title, DefaultMaxLength) + ".md"
}

func senderHeading(sender string) string {
	switch sender {
	case model.SenderHuman:
		return "## Human"
	case model.SenderAssistant:
		return "## Assistant"
	case "":
		return "## Unknown"
	default:
		return "## " + titleWords(sender)
	}
}

// titleWords title-cases each run of letters on its own, so "tool_use"
// becomes "Tool_Use" and "HUMAN" becomes "Human".
func titleWords(s string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}
