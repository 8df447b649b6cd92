package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/customHttpClient"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"

	retryDelay = 5 * time.Second
)

// Client embeds text with a Gemini embedding model.
type Client struct {
	genAi     *genai.Client
	model     string
	taskType  string
	dimension int32
	logger    *logger_i.Logger
}

func New(ctx context.Context, modelName string, apiKey string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.Client(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}
	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", modelName)
	return &Client{
		genAi:     c,
		model:     modelName,
		taskType:  TaskDocument,
		dimension: config.EmbeddingOutputDimensionality,
		logger:    logger,
	}, nil
}

// ForQueries returns a copy that embeds with the query task type.
func (c *Client) ForQueries() *Client {
	q := *c
	q.taskType = TaskQuery
	return &q
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "task", c.taskType)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("google_embedding", time.Since(start)) }()

	result, err := c.doCall(ctx, text)
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying in 5 seconds")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
		result, err = c.doCall(ctx, text)
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, nil
	}
	return result.Embeddings[0].Values, nil
}

func (c *Client) doCall(ctx context.Context, text string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             c.taskType,
	})
}
