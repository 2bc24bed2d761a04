// Package model defines the conversation export and run ledger data types.
package model

import "encoding/json"

// Sender values with dedicated headings.
const (
	SenderHuman     = "human"
	SenderAssistant = "assistant"
)

// Conversation is one thread from the chat export. It is read-only to the pipeline.
type Conversation struct {
	UUID      string    `json:"uuid,omitempty"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
	Messages  []Message `json:"chat_messages"`
}

// UnmarshalJSON accepts messages under either "chat_messages" (Claude export)
// or "messages". The former wins when both are present.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw struct {
		UUID         string    `json:"uuid"`
		Name         string    `json:"name"`
		CreatedAt    string    `json:"created_at"`
		UpdatedAt    string    `json:"updated_at"`
		ChatMessages []Message `json:"chat_messages"`
		Messages     []Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.UUID = raw.UUID
	c.Name = raw.Name
	c.CreatedAt = raw.CreatedAt
	c.UpdatedAt = raw.UpdatedAt
	c.Messages = raw.ChatMessages
	if c.Messages == nil {
		c.Messages = raw.Messages
	}
	return nil
}

// Message is a single turn. Only one textual representation is rendered.
type Message struct {
	Sender      string         `json:"sender"`
	Content     []ContentBlock `json:"content,omitempty"`
	Text        string         `json:"text,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

// ContentBlock is a structured content entry. Only Text is consulted.
type ContentBlock struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// Attachment is a file attached to a message, with its extracted text if any.
type Attachment struct {
	FileName         string `json:"file_name,omitempty"`
	ExtractedContent string `json:"extracted_content,omitempty"`
}
