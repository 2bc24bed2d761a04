// Package tags inspects and verifies [[tag]] annotations in rendered documents.
package tags

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Sentinel is always preserved and exempt from validation.
const Sentinel = "claude"

var tagPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// Extract returns every bracket-delimited token in text, in order of appearance.
// Duplicates are kept.
func Extract(text string) []string {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// AlreadyTagged reports whether text carries any tag other than the sentinel,
// and returns those tags.
func AlreadyTagged(text string) (bool, []string) {
	var found []string
	for _, tag := range Extract(text) {
		if tag != Sentinel {
			found = append(found, tag)
		}
	}
	return len(found) > 0, found
}

// Strip removes every bracket-delimited token from text.
func Strip(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}

// Unchanged reports whether before and after are identical once tags are
// removed and surrounding whitespace is trimmed.
func Unchanged(before, after string) bool {
	return strings.TrimSpace(Strip(before)) == strings.TrimSpace(Strip(after))
}

// Validate lists format problems with the tags in text. Each tag is checked
// for whitespace, uppercase letters, and any other character that is not a
// lowercase letter, digit or hyphen; a tag may collect several issues.
func Validate(text string) []string {
	var issues []string
	for _, tag := range Extract(text) {
		if tag == Sentinel {
			continue
		}
		if strings.ContainsFunc(tag, unicode.IsSpace) {
			issues = append(issues, fmt.Sprintf("Tag '%s' contains whitespace", tag))
		}
		if strings.ContainsFunc(tag, unicode.IsUpper) {
			issues = append(issues, fmt.Sprintf("Tag '%s' contains uppercase letters", tag))
		}
		if strings.ContainsFunc(tag, isInvalidTagRune) {
			issues = append(issues, fmt.Sprintf("Tag '%s' contains invalid characters (only lowercase letters, numbers, and hyphens allowed)", tag))
		}
	}
	return issues
}

// isInvalidTagRune matches characters not already covered by the whitespace
// and uppercase checks.
func isInvalidTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		return false
	case unicode.IsSpace(r), unicode.IsUpper(r):
		return false
	}
	return true
}

// Line formats a tag as a document line.
func Line(tag string) string {
	return "[[" + tag + "]]"
}

// Append returns text with one tag line per tag added at the end.
func Append(text string, tagList []string) string {
	if len(tagList) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	for _, tag := range tagList {
		b.WriteString(Line(tag))
		b.WriteByte('\n')
	}
	return b.String()
}
