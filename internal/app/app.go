// Package app builds the collaborators described by config.Settings once, for
// both the API server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/blobStore"
	"github.com/akolanti/DocQA/internal/data/redisStore"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocQA/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocQA/internal/rag/extract"
	"github.com/akolanti/DocQA/internal/rag/ingest"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/internal/rag/llm/gemini"
	"github.com/akolanti/DocQA/internal/rag/llm/openaiLLM"
	"github.com/akolanti/DocQA/internal/rag/retrieval"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/internal/rag/vectorDB/pgvectorDB"
	"github.com/akolanti/DocQA/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type Components struct {
	Settings  config.Settings
	Jobs      jobModel.JobStore
	Documents commonModels.DocumentStore
	Blobs     blobStore.BlobStore
	Sections  vectorDB.Store
	RAG       rag.Service

	closers []func() error
	logger  *logger_i.Logger
}

// Build connects every backend named in s. On error everything opened so far is closed.
func Build(ctx context.Context, s config.Settings) (*Components, error) {
	c := &Components{Settings: s, logger: logger_i.NewLogger("app")}
	if err := c.build(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Components) build(ctx context.Context) error {
	if err := c.buildStores(ctx); err != nil {
		return err
	}
	if err := c.buildBlobs(ctx); err != nil {
		return err
	}

	sections, cache, err := c.buildSections(ctx)
	if err != nil {
		return err
	}
	c.Sections = sections

	docEmbedder, queryEmbedder, err := c.buildEmbedders(ctx)
	if err != nil {
		return err
	}
	provider, err := c.buildLLM(ctx)
	if err != nil {
		return err
	}

	orchestrator := ingest.NewOrchestrator(c.Blobs, extract.New(), docEmbedder, sections, c.Documents, c.Settings.MaxChunkSize)
	c.RAG = rag.NewService(rag.Dependencies{
		Documents: c.Documents,
		Ingester:  orchestrator,
		Embedder:  queryEmbedder,
		Retriever: retrieval.NewEngine(sections),
		Cache:     cache,
		LLM:       provider,
	})
	return nil
}

func (c *Components) buildStores(ctx context.Context) error {
	jobRedis, jobErr := redisStore.New(ctx, c.Settings.RedisAddr, c.Settings.RedisPassword, config.RedisJobStore)
	docRedis, docErr := redisStore.New(ctx, c.Settings.RedisAddr, c.Settings.RedisPassword, config.RedisDocumentStore)
	if err := errors.Join(jobErr, docErr); err != nil {
		if jobRedis != nil {
			_ = jobRedis.Close()
		}
		if docRedis != nil {
			_ = docRedis.Close()
		}
		if !c.Settings.FallbackToMemory {
			return err
		}
		c.logger.Error("Redis stores are offline, using in-memory stores", "error", err)
		c.Jobs = store.InitInMemoryJobStore()
		c.Documents = store.InitInMemoryDocumentStore()
		return nil
	}
	c.closers = append(c.closers, jobRedis.Close, docRedis.Close)
	c.Jobs = store.NewRedisJobStore(jobRedis)
	c.Documents = store.NewRedisDocumentStore(docRedis)
	return nil
}

func (c *Components) buildBlobs(ctx context.Context) error {
	local, err := blobStore.NewFileStore(c.Settings.BlobRoot)
	if err != nil {
		return err
	}
	var remote *blobStore.GCSStore
	if c.Settings.GCSBucket != "" {
		remote, err = blobStore.NewGCSStore(ctx, c.Settings.GCSBucket)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, remote.Close)
	}
	c.Blobs = blobStore.NewRouter(local, remote)
	return nil
}

// buildSections returns a nil cache for pgvector; the semantic cache only exists in qdrant.
func (c *Components) buildSections(ctx context.Context) (vectorDB.Store, vectorDB.AnswerCache, error) {
	switch c.Settings.VectorBackend {
	case config.VectorBackendPgvector:
		pg, err := pgvectorDB.New(ctx, c.Settings.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		c.closers = append(c.closers, pg.Close)
		return pg, nil, nil
	case config.VectorBackendQdrant:
		q, err := qdrantDB.New(ctx, c.Settings.QdrantHost, c.Settings.QdrantPort, c.Settings.QdrantAPIKey)
		if err != nil {
			return nil, nil, err
		}
		c.closers = append(c.closers, q.Close)
		return q, q, nil
	}
	return nil, nil, fmt.Errorf("unknown vector backend %q", c.Settings.VectorBackend)
}

// buildEmbedders returns the document embedder and the question embedder.
func (c *Components) buildEmbedders(ctx context.Context) (embedding.Embedder, embedding.Embedder, error) {
	switch c.Settings.EmbeddingProvider {
	case config.ProviderOpenAI:
		e := openaiEmbedding.New(c.Settings.EmbeddingModel, c.Settings.OpenAIAPIKey, c.Settings.OpenAIBaseURL)
		return e, e, nil
	case config.ProviderGoogle:
		e, err := googleEmbedding.New(ctx, c.Settings.EmbeddingModel, c.Settings.GoogleAPIKey)
		if err != nil {
			return nil, nil, err
		}
		return e, e.ForQueries(), nil
	}
	return nil, nil, fmt.Errorf("unknown embedding provider %q", c.Settings.EmbeddingProvider)
}

func (c *Components) buildLLM(ctx context.Context) (llm.Provider, error) {
	switch c.Settings.LLMProvider {
	case config.ProviderOpenAI:
		return openaiLLM.New(c.Settings.LLMModel, c.Settings.OpenAIAPIKey, c.Settings.OpenAIBaseURL), nil
	case config.ProviderGoogle:
		return gemini.New(ctx, c.Settings.LLMModel, c.Settings.GoogleAPIKey)
	}
	return nil, fmt.Errorf("unknown llm provider %q", c.Settings.LLMProvider)
}

// Close releases backends in reverse order of opening.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}
