package answer

import (
	"strconv"
	"strings"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

const contextSeparator = "\n\n"

// Payload is what the completion provider receives.
type Payload struct {
	Question string
	Context  string
	Sources  []string
}

// Assemble joins match contents in the given order, one blank line apart.
// No length budget is applied.
func Assemble(matches []commonModels.QueryMatch, question string) Payload {
	contents := make([]string, 0, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		contents = append(contents, m.Content)
		sources = append(sources, SourceRef(m))
	}
	return Payload{
		Question: question,
		Context:  strings.Join(contents, contextSeparator),
		Sources:  sources,
	}
}

// SourceRef identifies a section as documentID#order.
func SourceRef(m commonModels.QueryMatch) string {
	return m.DocumentId + "#" + strconv.Itoa(m.SectionOrder)
}
