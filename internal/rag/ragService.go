package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/rag/answer"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/ingest"
	"github.com/akolanti/DocQA/internal/rag/llm"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

const (
	ErrCodeEmbedding        = "EMBEDDING_FAILURE"
	ErrCodeVectorDB         = "VECTOR_DB_FAILURE"
	ErrCodeLLM              = "LLM_GENERATION_FAILURE"
	ErrCodeIngestion        = "INGESTION_FAILURE"
	ErrCodeDocumentNotFound = "DOCUMENT_NOT_FOUND"
)

var errEmptyQueryEmbedding = errors.New("embedding provider returned no vector for the question")

// Service is the only thing the worker, the MCP tools and the CLI talk to.
// The concrete struct stays private so callers cannot reach the stores or
// providers behind it.
type Service interface {
	Ask(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Search(ctx context.Context, question string) ([]commonModels.QueryMatch, error)
}

type Ingester interface {
	Ingest(ctx context.Context, documentID, location, mimeType string) ingest.Outcome
}

type Retriever interface {
	Retrieve(ctx context.Context, queryEmbedding []float32) ([]commonModels.QueryMatch, error)
}

type service struct {
	documents   commonModels.DocumentStore
	ingester    Ingester
	embedder    embedding.Embedder
	retriever   Retriever
	cache       vectorDB.AnswerCache
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

// Dependencies for NewService. Cache may be nil; the other fields are required.
type Dependencies struct {
	Documents commonModels.DocumentStore
	Ingester  Ingester
	// Embedder is used for questions only; document chunks are embedded by the Ingester.
	Embedder  embedding.Embedder
	Retriever Retriever
	Cache     vectorDB.AnswerCache
	LLM       llm.Provider
}

func NewService(deps Dependencies) Service {
	return &service{
		documents:   deps.Documents,
		ingester:    deps.Ingester,
		embedder:    deps.Embedder,
		retriever:   deps.Retriever,
		cache:       deps.Cache,
		llmProvider: deps.LLM,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Ask(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.AskTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	queryEmbedding, err := s.executeEmbeddingStep(processContext, log, &jobt)
	if err == nil && len(queryEmbedding) == 0 {
		err = errEmptyQueryEmbedding
	}
	if err != nil {
		return s.jobError(log, jobt, err, ErrCodeEmbedding, http.StatusInternalServerError, true)
	}

	if cachedAnswer, found := s.executeCacheCheckStep(processContext, log, &jobt, queryEmbedding); found {
		return returnOutput(jobt, cachedAnswer, nil)
	}

	matches, err := s.executeRetrievalStep(processContext, log, &jobt, queryEmbedding)
	if err != nil {
		return s.jobError(log, jobt, err, ErrCodeVectorDB, http.StatusInternalServerError, true)
	}
	if len(matches) == 0 {
		log.Info("No context found for question")
		return returnOutput(jobt, config.NoContextAnswer, nil)
	}

	payload := answer.Assemble(matches, jobt.JobPayload.Question)
	generated, err := s.executeLLMStep(processContext, log, &jobt, payload)
	if err != nil {
		return s.jobError(log, jobt, err, ErrCodeLLM, http.StatusInternalServerError, true)
	}

	if s.cache != nil {
		saveCtx := context.WithoutCancel(ctx)
		go func() {
			if err := s.cache.SaveToCache(saveCtx, utils.GetNewUUID(), queryEmbedding, generated); err != nil {
				log.Warn("Failed to save to cache", "error", err)
			}
		}()
	}

	return returnOutput(jobt, generated, payload.Sources)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", job.Id, "documentId", job.JobPayload.DocumentId)
	start := time.Now()
	defer func() { log.Debug("IngestDocument finished", "elapsed", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestProcessing
	doc, err := s.documents.Get(ctx, job.JobPayload.DocumentId)
	if err != nil {
		if errors.Is(err, commonModels.ErrDocumentNotFound) {
			return s.jobError(log, job, err, ErrCodeDocumentNotFound, http.StatusNotFound, false)
		}
		return s.jobError(log, job, err, ErrCodeIngestion, http.StatusInternalServerError, true)
	}

	outcome := s.ingester.Ingest(ctx, doc.Id, doc.Location, doc.MimeType)
	job.JobPayload.SectionsWritten = outcome.SectionsWritten
	job.JobPayload.ChunksSkipped = outcome.ChunksSkipped

	if outcome.Status != commonModels.DocumentReady {
		cause := outcome.Err
		if cause == nil {
			cause = fmt.Errorf("document ended in status %s", outcome.Status)
		}
		// an unreadable document stays unreadable on a rerun
		retry := !errors.Is(cause, commonModels.ErrNoExtractableText)
		return s.jobError(log, job, cause, ErrCodeIngestion, http.StatusUnprocessableEntity, retry)
	}
	if outcome.Err != nil {
		log.Warn("Document ready but status update failed", "error", outcome.Err)
	}

	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) Search(ctx context.Context, question string) ([]commonModels.QueryMatch, error) {
	vector, err := s.embedder.GetEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrCodeEmbedding, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%s: %w", ErrCodeEmbedding, errEmptyQueryEmbedding)
	}
	matches, err := s.retriever.Retrieve(ctx, vector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrCodeVectorDB, err)
	}
	return matches, nil
}
