package filter

import (
	"testing"

	"github.com/rcliao/convo-notes/internal/model"
)

func TestShouldFilter_NoAssistant(t *testing.T) {
	conv := model.Conversation{
		Name:      "Test",
		CreatedAt: "2025-01-01T10:00:00Z",
		Messages:  []model.Message{{Sender: "human", Text: "Hi"}},
	}
	d := ShouldFilter(conv)
	if !d.Filtered || d.Reason != ReasonNoAssistant {
		t.Errorf("expected %q, got %+v", ReasonNoAssistant, d)
	}
}

func TestShouldFilter_Empty(t *testing.T) {
	cases := map[string]model.Conversation{
		"no messages":       {Name: "a"},
		"whitespace only":   {Messages: []model.Message{{Sender: "human", Text: "  \n"}, {Sender: "assistant", Text: "\t"}}},
		"attachments only":  {Messages: []model.Message{{Sender: "human", Attachments: []model.Attachment{{ExtractedContent: "data"}}}, {Sender: "assistant"}}},
		"empty block texts": {Messages: []model.Message{{Sender: "assistant", Content: []model.ContentBlock{{Text: ""}, {Text: " "}}}}},
	}
	for name, conv := range cases {
		t.Run(name, func(t *testing.T) {
			d := ShouldFilter(conv)
			if !d.Filtered || d.Reason != ReasonEmpty {
				t.Errorf("expected %q, got %+v", ReasonEmpty, d)
			}
		})
	}
}

func TestShouldFilter_Keeps(t *testing.T) {
	conv := model.Conversation{Messages: []model.Message{
		{Sender: "human", Text: "Hi"},
		{Sender: "assistant", Content: []model.ContentBlock{{Text: "Hello"}}},
	}}
	d := ShouldFilter(conv)
	if d.Filtered {
		t.Errorf("expected conversation to be kept, got %+v", d)
	}
}

func TestShouldFilter_AssistantOnlyKept(t *testing.T) {
	conv := model.Conversation{Messages: []model.Message{{Sender: "assistant", Text: "Unprompted"}}}
	if d := ShouldFilter(conv); d.Filtered {
		t.Errorf("assistant-only conversation with text should be kept, got %+v", d)
	}
}

func TestMeasure_CountsTextAndBlocksIndependently(t *testing.T) {
	conv := model.Conversation{Messages: []model.Message{
		{Sender: "human", Text: " abc ", Content: []model.ContentBlock{{Text: "abc"}, {Text: "de"}}},
		{Sender: "system", Text: "héllo"},
	}}
	st := Measure(conv)
	if st.TotalChars != 3+3+2+5 {
		t.Errorf("expected 13 chars, got %d", st.TotalChars)
	}
	if st.Messages != 2 || st.Human != 1 || st.Assistant != 0 {
		t.Errorf("unexpected counts: %+v", st)
	}
}
