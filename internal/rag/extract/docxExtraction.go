package extract

import (
	"github.com/lu4p/cat"
)

// extractDOCX hands the archive to cat. Its failures only mean there is no text.
func (e *Extractor) extractDOCX(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("docx reader panicked", "panic", r)
			text = ""
		}
	}()

	text, err := cat.FromBytes(data)
	if err != nil {
		e.logger.Warn("Error extracting content from docx", "error", err)
		return ""
	}
	return text
}
