package mcpServer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/jobModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultSearchLimit = 5

var errEmptyQuery = errors.New("query must not be empty")

type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to search the uploaded documents for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of sections to return (default 5)"`
}

type SearchOutput struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

type SearchResult struct {
	DocumentID   string  `json:"document_id"`
	SectionOrder int     `json:"section_order"`
	Content      string  `json:"content"`
	Similarity   float32 `json:"similarity"`
	FileName     string  `json:"file_name,omitempty"`
}

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the uploaded documents"`
}

type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

type DocumentStatusInput struct {
	DocumentID string `json:"document_id" jsonschema:"id returned when the document was uploaded"`
}

type DocumentStatusOutput struct {
	DocumentID   string `json:"document_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Find the document sections most similar to a query",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question using only the uploaded documents",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_status",
		Description: "Report the ingestion status of an uploaded document",
	}, s.handleDocumentStatus)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchOutput{}, errEmptyQuery
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	matches, err := s.rag.Search(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	output := SearchOutput{Results: make([]SearchResult, len(matches)), Count: len(matches)}
	for i, m := range matches {
		output.Results[i] = SearchResult{
			DocumentID:   m.DocumentId,
			SectionOrder: m.SectionOrder,
			Content:      m.Content,
			Similarity:   m.Similarity,
			FileName:     m.Meta["filename"],
		}
	}
	return nil, output, nil
}

// handleAsk runs the question inline; MCP clients wait on the call instead of polling a job.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, AskOutput{}, errEmptyQuery
	}

	traceId := utils.GetNewUUID()
	ctx = context.WithValue(ctx, config.TRACE_ID_KEY, traceId)
	result := s.rag.Ask(ctx, jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeQuery,
		Status:      jobModel.JobStatusRunning,
		CreatedTime: time.Now(),
		JobPayload:  jobModel.JobPayload{Question: question},
	})
	if result.Status == jobModel.JobStatusError {
		s.logger.Warn("ask_documents failed", "traceId", traceId, "error", result.Error.Message)
		return nil, AskOutput{}, errors.New(result.Error.Message)
	}
	return nil, AskOutput{Answer: result.JobPayload.Answer, Sources: result.JobPayload.Sources}, nil
}

func (s *Server) handleDocumentStatus(ctx context.Context, _ *mcp.CallToolRequest, input DocumentStatusInput) (*mcp.CallToolResult, DocumentStatusOutput, error) {
	doc, err := s.documents.Get(ctx, input.DocumentID)
	if err != nil {
		if errors.Is(err, commonModels.ErrDocumentNotFound) {
			return nil, DocumentStatusOutput{}, fmt.Errorf("unknown document %q", input.DocumentID)
		}
		return nil, DocumentStatusOutput{}, err
	}
	return nil, DocumentStatusOutput{
		DocumentID:   doc.Id,
		Title:        doc.Title,
		Status:       string(doc.Status),
		ErrorMessage: doc.ErrorMessage,
	}, nil
}
