package embedding

import "context"

// Embedder turns text into a vector. A nil or empty vector with a nil error
// means the provider had nothing for this text.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}
