// Package filter decides which conversations carry enough signal to render.
package filter

import (
	"strings"
	"unicode/utf8"

	"github.com/rcliao/convo-notes/internal/model"
)

// Filter reasons.
const (
	ReasonEmpty       = "Empty conversation (0 characters)"
	ReasonNoAssistant = "No assistant response"
	ReasonNoMessages  = "No messages"
)

// Stats summarizes a conversation for filtering.
type Stats struct {
	Messages   int `json:"messages"`
	Human      int `json:"human"`
	Assistant  int `json:"assistant"`
	TotalChars int `json:"total_chars"`
}

// Decision is the filter verdict for one conversation.
type Decision struct {
	Filtered bool   `json:"filtered"`
	Reason   string `json:"reason,omitempty"`
	Stats    Stats  `json:"stats"`
}

// Measure computes the counts used by ShouldFilter. TotalChars sums the
// trimmed length of every message's text and of every content block's text;
// a message carrying both contributes both.
func Measure(conv model.Conversation) Stats {
	st := Stats{Messages: len(conv.Messages)}
	for _, msg := range conv.Messages {
		switch msg.Sender {
		case model.SenderHuman:
			st.Human++
		case model.SenderAssistant:
			st.Assistant++
		}
		st.TotalChars += utf8.RuneCountInString(strings.TrimSpace(msg.Text))
		for _, block := range msg.Content {
			st.TotalChars += utf8.RuneCountInString(strings.TrimSpace(block.Text))
		}
	}
	return st
}

// ShouldFilter reports whether conv should be skipped, and why.
func ShouldFilter(conv model.Conversation) Decision {
	st := Measure(conv)
	d := Decision{Filtered: true, Stats: st}
	switch {
	case st.TotalChars == 0:
		d.Reason = ReasonEmpty
	case st.Human > 0 && st.Assistant == 0:
		d.Reason = ReasonNoAssistant
	case st.Messages == 0:
		d.Reason = ReasonNoMessages
	default:
		d.Filtered = false
	}
	return d
}
