package llm

import (
	"context"
	"fmt"

	"github.com/akolanti/DocQA/internal/rag/answer"
)

type Provider interface {
	Generate(ctx context.Context, payload answer.Payload) (string, error)
}

// UserPrompt is the user turn sent to every provider; the system turn is config.ModelContext.
func UserPrompt(payload answer.Payload) string {
	return fmt.Sprintf("Context:\n%s\n\nUser Question: %s", payload.Context, payload.Question)
}
