// Package chunker splits extracted text into sentence-aligned chunks of
// bounded length.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/akolanti/DocQA/internal/config"
)

var paragraphBreak = regexp.MustCompile(`\n+`)

// Chunk packs the sentences of text greedily into chunks of at most
// maxChunkSize runes. A sentence longer than the budget is kept whole as its
// own chunk. A non-positive size means the default.
func Chunk(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = config.DefaultMaxChunkSize
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	emit := func() {
		if strings.TrimSpace(current.String()) != "" {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range Sentences(text) {
		n := utf8.RuneCountInString(sentence)
		switch {
		case currentLen == 0:
			current.WriteString(sentence)
			currentLen = n
		case currentLen+1+n <= maxChunkSize:
			current.WriteByte(' ')
			current.WriteString(sentence)
			currentLen += 1 + n
		default:
			emit()
			current.WriteString(sentence)
			currentLen = n
		}
	}
	emit()
	return chunks
}

// Sentences returns the trimmed, non-empty sentences of text in order.
// Paragraphs are separated by newlines; inside a paragraph a sentence ends
// after '.', '!' or '?' when whitespace follows.
func Sentences(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, paragraph := range paragraphBreak.Split(text, -1) {
		out = append(out, splitSentences(paragraph)...)
	}
	return out
}

func splitSentences(paragraph string) []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	runes := []rune(paragraph)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if unicode.IsSpace(runes[i+1]) {
				add(string(runes[start : i+1]))
				start = i + 1
			}
		}
	}
	add(string(runes[start:]))
	return out
}
