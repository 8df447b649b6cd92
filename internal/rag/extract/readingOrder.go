package extract

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// TextItem is a run of text anchored at the origin of its text matrix.
type TextItem struct {
	X    float64
	Y    float64
	Text string
}

type textLine struct {
	y     float64
	items []TextItem
}

// ReadingOrder lays positioned items out top to bottom, left to right.
// Items whose Y is within tolerance of an existing line's Y join that line.
func ReadingOrder(items []TextItem, tolerance float64) string {
	sorted := make([]TextItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Text) != "" {
			sorted = append(sorted, it)
		}
	}
	slices.SortStableFunc(sorted, func(a, b TextItem) int {
		if c := cmp.Compare(b.Y, a.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})

	lines := groupLines(sorted, tolerance)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		slices.SortStableFunc(l.items, func(a, b TextItem) int { return cmp.Compare(a.X, b.X) })
		texts := make([]string, len(l.items))
		for i, it := range l.items {
			texts[i] = it.Text
		}
		out = append(out, strings.Join(texts, " "))
	}
	return strings.Join(out, "\n")
}

// groupLines expects items sorted by descending Y. A line keeps the Y of the
// item that opened it, so lines come out in the order they were discovered.
func groupLines(sorted []TextItem, tolerance float64) []textLine {
	var lines []textLine
	for _, it := range sorted {
		idx := slices.IndexFunc(lines, func(l textLine) bool {
			return math.Abs(l.y-it.Y) <= tolerance
		})
		if idx < 0 {
			lines = append(lines, textLine{y: it.Y})
			idx = len(lines) - 1
		}
		lines[idx].items = append(lines[idx].items, it)
	}
	return lines
}
