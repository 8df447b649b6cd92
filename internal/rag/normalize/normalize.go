// Package normalize cleans raw extracted text before it is chunked.
package normalize

import (
	"strings"
	"unicode/utf8"
)

// Text removes C0 controls other than tab, line feed and carriage return,
// removes C1 controls, turns U+FFFD into a space and trims the result.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, " ")
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
		case r >= 0x80 && r <= 0x9f:
		case r == utf8.RuneError:
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
