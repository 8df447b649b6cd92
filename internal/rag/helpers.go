package rag

import (
	"context"
	"time"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/answer"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string, sources []string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.JobPayload.Sources = sources
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("Ask", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(log *logger_i.Logger, job jobModel.Job, err error, code string, httpCode int, canRetry bool) jobModel.Job {
	log.Error(code, "error", err, "step", job.CurrentStep)

	job.Error = jobModel.JobError{
		Code:    httpCode,
		Message: code + ": " + err.Error(),
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, err := s.cache.GetCachedAnswer(ctx, emb)
	if err != nil {
		log.Warn("Cache lookup failed, continuing without cache", "error", err)
		return "", false
	}
	return ans, found
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]commonModels.QueryMatch, error) {
	*job = logOutput(*job, jobModel.RetrievalCall, log)
	return s.retriever.Retrieve(ctx, emb)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, payload answer.Payload) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, payload)
}
