package markdown

import (
	"strings"
	"time"
)

// Accepted ISO-8601 shapes, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp, keeping its own offset.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders value as "YYYY-MM-DD HH:MM". Unparseable values
// are returned verbatim.
func FormatTimestamp(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return value
	}
	return t.Format("2006-01-02 15:04")
}

// datePrefix returns "YYYY-MM-DD_" for a parseable timestamp, else "".
func datePrefix(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02") + "_"
}
