// Package export reads the bulk conversation export.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rcliao/convo-notes/internal/model"
)

// Load reads the export at path: a JSON array of conversations, in export order.
func Load(path string) ([]model.Conversation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	var conversations []model.Conversation
	if err := json.NewDecoder(file).Decode(&conversations); err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}
	return conversations, nil
}
