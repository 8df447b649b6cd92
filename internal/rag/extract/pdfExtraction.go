package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dslipak/pdf"
)

const (
	defaultFontSize = 10.0
	// gaps wider than this share of the font size become a space inside a run
	wordGapRatio = 0.2
	// gaps wider than this split the run into two items
	runBreakRatio = 2.0
	// glyphs whose baselines differ by more than this share of the font size start a new run
	baselineRatio = 0.3
)

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pdf reader panicked", "panic", r)
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("failed opening pdf", "error", err)
		return ""
	}

	numPages := reader.NumPage()
	e.logger.Debug("extractPDF", "number of pages", numPages)

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if ctx.Err() != nil {
			e.logger.Warn("pdf extraction cancelled", "page", i, "error", ctx.Err())
			break
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			e.logger.Debug("extractPDF", "null page", i)
			pages = append(pages, "")
			continue
		}

		content, err := e.protectExtract(page)
		if err != nil {
			// a broken page contributes nothing, the rest of the document still counts
			e.logger.Warn("Error parsing page content", "page", i, "error", err)
			content = ""
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n")
}

// protectExtract isolates the library call: a panic or a stuck page becomes an error.
func (e *Extractor) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page content panicked: %v", r)}
			}
		}()
		glyphs := page.Content().Text
		resChan <- result{content: ReadingOrder(glyphRuns(glyphs), e.lineTolerance)}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(e.pageTimeout):
		// the library call cannot be cancelled; the goroutine keeps running until
		// Content returns and its result is dropped into the buffered channel
		return "", errors.New("page extraction timed out")
	}
}

// glyphRuns merges the per-glyph output of the pdf reader, in content stream
// order, into runs that sit on one baseline with no large horizontal gap.
func glyphRuns(glyphs []pdf.Text) []TextItem {
	var items []TextItem
	var run strings.Builder
	var runX, runY, endX, size float64

	flush := func() {
		if t := strings.TrimSpace(run.String()); t != "" {
			items = append(items, TextItem{X: runX, Y: runY, Text: t})
		}
		run.Reset()
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if run.Len() > 0 {
			gap := g.X - endX
			sameBaseline := math.Abs(g.Y-runY) <= size*baselineRatio
			switch {
			case !sameBaseline || gap < -size || gap > size*runBreakRatio:
				flush()
			case gap > size*wordGapRatio && !strings.HasSuffix(run.String(), " ") && strings.TrimSpace(g.S) != "":
				run.WriteByte(' ')
			}
		}
		if run.Len() == 0 {
			if strings.TrimSpace(g.S) == "" {
				continue
			}
			runX, runY = g.X, g.Y
			size = g.FontSize
			if size <= 0 {
				size = defaultFontSize
			}
		}
		run.WriteString(g.S)
		endX = g.X + g.W
	}
	flush()
	return items
}
