// Package mcpServer exposes search, ask and document status as MCP tools.
package mcpServer

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "0.1.0"

type Server struct {
	rag       rag.Service
	documents commonModels.DocumentStore
	server    *mcp.Server
	logger    *logger_i.Logger
}

func NewServer(ragService rag.Service, documents commonModels.DocumentStore) (*Server, error) {
	if ragService == nil || documents == nil {
		return nil, errors.New("mcp server needs the rag service and the document store")
	}

	s := &Server{
		rag:       ragService,
		documents: documents,
		server:    mcp.NewServer(&mcp.Implementation{Name: "docqa", Version: Version}, nil),
		logger:    logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the tools over streamable HTTP; the API mounts it at /mcp.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// Run serves the tools over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
