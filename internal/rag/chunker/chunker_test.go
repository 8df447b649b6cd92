package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"terminal punctuation", "One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"no whitespace after the dot", "Version 2.5 is out. Yes", []string{"Version 2.5 is out.", "Yes"}},
		{"paragraphs", "First line\n\nSecond line.\nThird", []string{"First line", "Second line.", "Third"}},
		{"carriage returns", "A.\r\nB.\rC.", []string{"A.", "B.", "C."}},
		{"blank fragments", "  \n\n  . \n", []string{"."}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentences(tt.in))
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	assert.Empty(t, Chunk("", 300))
	assert.Empty(t, Chunk("   \n\t\r\n  ", 300))
}

func TestChunk_Packing(t *testing.T) {
	text := "Alpha beta. Gamma delta. Epsilon."

	t.Run("everything fits", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha beta. Gamma delta. Epsilon."}, Chunk(text, 300))
	})

	t.Run("exact budget is allowed", func(t *testing.T) {
		// "Alpha beta. Gamma delta." is 24 runes
		assert.Equal(t, []string{"Alpha beta. Gamma delta.", "Epsilon."}, Chunk(text, 24))
	})

	t.Run("one over the budget closes the chunk", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha beta.", "Gamma delta. Epsilon."}, Chunk(text, 23))
	})

	t.Run("over-long sentence stands alone", func(t *testing.T) {
		got := Chunk("Hi. This sentence is far too long for the budget. Ok.", 10)
		assert.Equal(t, []string{"Hi.", "This sentence is far too long for the budget.", "Ok."}, got)
	})

	t.Run("paragraphs pack together", func(t *testing.T) {
		assert.Equal(t, []string{"Title Body text."}, Chunk("Title\n\nBody text.", 300))
	})

	t.Run("non-positive size uses the default", func(t *testing.T) {
		assert.Equal(t, Chunk(text, 300), Chunk(text, 0))
		assert.Equal(t, Chunk(text, 300), Chunk(text, -5))
	})

	t.Run("length counts runes", func(t *testing.T) {
		// each sentence is 4 runes but 8 bytes
		got := Chunk("äöü. ßéè.", 9)
		assert.Equal(t, []string{"äöü. ßéè."}, got)
	})
}

func TestChunk_Properties(t *testing.T) {
	var b strings.Builder
	words := []string{"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit"}
	for i := 0; i < 200; i++ {
		b.WriteString(words[i%len(words)])
		switch {
		case i%37 == 36:
			b.WriteString(strings.Repeat("x", 90))
			b.WriteString(". ")
		case i%11 == 10:
			b.WriteString("!\n\n")
		case i%5 == 4:
			b.WriteString(". ")
		default:
			b.WriteString(" ")
		}
	}
	text := b.String()
	sentences := Sentences(text)
	require.NotEmpty(t, sentences)

	for _, size := range []int{1, 20, 64, 300, 5000} {
		chunks := Chunk(text, size)

		// no sentence dropped, reordered or altered
		assert.Equal(t, strings.Join(sentences, " "), strings.Join(chunks, " "), "size=%d", size)

		for _, c := range chunks {
			assert.NotEmpty(t, strings.TrimSpace(c))
			if utf8.RuneCountInString(c) > size {
				// only a single sentence may exceed the budget
				assert.Contains(t, sentences, c, "size=%d", size)
			}
		}
	}
}
