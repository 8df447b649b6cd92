package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag/answer"
	"github.com/akolanti/DocQA/internal/rag/ingest"
)

type MockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1}, nil
}

type MockRetriever struct {
	OnRetrieve func(ctx context.Context, v []float32) ([]commonModels.QueryMatch, error)
	Calls      int
}

func (m *MockRetriever) Retrieve(ctx context.Context, v []float32) ([]commonModels.QueryMatch, error) {
	m.Calls++
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, v)
	}
	return []commonModels.QueryMatch{{DocumentId: "doc-1", SectionOrder: 1, Content: "default context"}}, nil
}

// MockCache implements vectorDB.AnswerCache
type MockCache struct {
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (string, bool, error)
	saved             chan string
	once              sync.Once
}

func (m *MockCache) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockCache) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	m.Saved() <- a
	return nil
}

// Saved receives every answer written to the cache.
func (m *MockCache) Saved() chan string {
	m.once.Do(func() { m.saved = make(chan string, 4) })
	return m.saved
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, payload answer.Payload) (string, error)
	Calls      int
}

func (m *MockLLM) Generate(ctx context.Context, payload answer.Payload) (string, error) {
	m.Calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, payload)
	}
	return "mocked llm response", nil
}

type MockIngester struct {
	OnIngest func(ctx context.Context, documentID, location, mimeType string) ingest.Outcome
}

func (m *MockIngester) Ingest(ctx context.Context, documentID, location, mimeType string) ingest.Outcome {
	return m.OnIngest(ctx, documentID, location, mimeType)
}
