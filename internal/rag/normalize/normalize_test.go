package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hello world.", "Hello world."},
		{"keeps tab and newlines", "a\tb\nc\r\nd", "a\tb\nc\r\nd"},
		{"drops c0 controls", "a\x00b\x07c\x1bd", "abcd"},
		{"drops del", "a\x7fb", "ab"},
		{"drops c1 controls", "a\u0085b\u009fc", "abc"},
		{"replacement char becomes space", "a\ufffdb", "a b"},
		{"invalid utf8 becomes space", "a\xffb", "a b"},
		{"trims", "  \n hello \t ", "hello"},
		{"only controls", "\x01\x02\x03", ""},
		{"keeps non latin", "Grüße 世界", "Grüße 世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestText_NoForbiddenRunes(t *testing.T) {
	var b strings.Builder
	for r := rune(0); r < 0x200; r++ {
		b.WriteRune(r)
	}
	b.WriteRune('\ufffd')

	out := Text(b.String())
	for _, r := range out {
		if r < 0x20 {
			assert.Contains(t, []rune{'\t', '\n', '\r'}, r)
		}
		assert.False(t, r >= 0x80 && r <= 0x9f, "c1 control %U survived", r)
		assert.NotEqual(t, '\ufffd', r)
	}
}
