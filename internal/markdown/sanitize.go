package markdown

import (
	"strings"
	"unicode"
)

// DefaultMaxLength bounds sanitized file names, in characters.
const DefaultMaxLength = 50

const unsafeFilenameChars = `<>:"/\|?*`

// SanitizeFilename maps a conversation title to a filesystem-safe name of at
// most maxLength characters. A non-positive maxLength means DefaultMaxLength.
func SanitizeFilename(title string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var b strings.Builder
	inSpace := false
	for _, r := range title {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if strings.ContainsRune(unsafeFilenameChars, r) {
			r = '_'
		}
		b.WriteRune(r)
	}

	name := strings.Trim(b.String(), "._")
	if runes := []rune(name); len(runes) > maxLength {
		name = strings.TrimRight(string(runes[:maxLength]), "_")
	}
	if name == "" {
		return "untitled"
	}
	return name
}
