package markdown

import "testing"

func TestFormatTimestamp(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2025-01-01T10:00:00Z", "2025-01-01 10:00"},
		{"2025-01-01T10:00:00.123456Z", "2025-01-01 10:00"},
		{"2025-01-01T10:00:00+02:00", "2025-01-01 10:00"},
		{"2025-01-01T10:00:00", "2025-01-01 10:00"},
		{"2025-01-01 23:59:59", "2025-01-01 23:59"},
		{"2025-01-01", "2025-01-01 00:00"},
		{"not a date", "not a date"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.in); got != tc.want {
			t.Errorf("FormatTimestamp(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestDatePrefix(t *testing.T) {
	if got := datePrefix("2024-12-31T23:00:00-05:00"); got != "2024-12-31_" {
		t.Errorf("expected local date prefix, got %q", got)
	}
	if got := datePrefix("garbage"); got != "" {
		t.Errorf("expected empty prefix, got %q", got)
	}
}
