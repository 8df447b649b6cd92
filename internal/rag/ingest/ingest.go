// Package ingest drives one document from its stored binary to persisted,
// embedded sections and a terminal status.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/blobStore"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/chunker"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/extract"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) string
}

// Outcome is the result of one ingestion run. Err is set whenever Status is
// error, and also when the final status update itself failed.
type Outcome struct {
	DocumentID      string
	Status          commonModels.DocumentStatus
	SectionsWritten int
	ChunksSkipped   int
	Err             error
}

type Orchestrator struct {
	blobs        blobStore.BlobStore
	extractor    TextExtractor
	embedder     embedding.Embedder
	sections     vectorDB.SectionStore
	documents    commonModels.DocumentStore
	maxChunkSize int
	logger       *logger_i.Logger
}

func NewOrchestrator(blobs blobStore.BlobStore, extractor TextExtractor, embedder embedding.Embedder,
	sections vectorDB.SectionStore, documents commonModels.DocumentStore, maxChunkSize int) *Orchestrator {
	return &Orchestrator{
		blobs:        blobs,
		extractor:    extractor,
		embedder:     embedder,
		sections:     sections,
		documents:    documents,
		maxChunkSize: maxChunkSize,
		logger:       logger_i.NewLogger("Document Ingestion"),
	}
}

// Ingest moves the document from queued to ready or error. Chunks are embedded
// and persisted one at a time, in order. A chunk with no embedding is skipped
// and leaves a gap in section_order. A failed insert stops the run and keeps
// the sections written so far; the next run for the same document clears them.
// A document that ends with zero sections is never marked ready.
func (o *Orchestrator) Ingest(ctx context.Context, documentID, location, mimeType string) (out Outcome) {
	start := time.Now()
	log := o.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentID)
	out = Outcome{DocumentID: documentID}
	defer func() {
		metrics.CaptureExecutionMetrics("ingest", time.Since(start))
		metrics.CaptureDocumentStatus(string(out.Status))
	}()

	data, err := o.blobs.Fetch(ctx, location)
	if err != nil {
		log.Error("Error fetching document", "location", location, "error", err)
		return o.fail(ctx, log, out, err)
	}

	text := o.extractor.Extract(ctx, data, mimeType)
	if strings.TrimSpace(text) == "" {
		log.Warn("Document has no extractable text", "mimeType", mimeType, "bytes", len(data))
		return o.fail(ctx, log, out, commonModels.ErrNoExtractableText)
	}

	if err := o.sections.DeleteByDocument(ctx, documentID); err != nil {
		log.Error("Error clearing previous sections", "error", err)
		return o.fail(ctx, log, out, fmt.Errorf("clearing previous sections: %w", err))
	}

	chunks := chunker.Chunk(text, o.maxChunkSize)
	log.Debug("Processing document", "Number of chunks", len(chunks))
	meta := map[string]string{
		"source":      string(extract.KindOf(mimeType, data)),
		"mime_type":   mimeType,
		"filename":    filepath.Base(location),
		"chunk_count": strconv.Itoa(len(chunks)),
	}

	for i, chunk := range chunks {
		order := i + 1
		if err := ctx.Err(); err != nil {
			log.Error("Ingestion cancelled", "section_order", order, "error", err)
			return o.fail(ctx, log, out, err)
		}

		vector, err := o.embedder.GetEmbedding(ctx, chunk)
		if err != nil {
			log.Warn("Embedding failed, skipping chunk", "section_order", order, "error", err)
		}
		if err != nil || len(vector) == 0 {
			out.ChunksSkipped++
			continue
		}

		section := commonModels.DocumentSection{
			DocumentId:   documentID,
			SectionOrder: order,
			Content:      chunk,
			Embedding:    vector,
			Meta:         meta,
		}
		if err := o.sections.Insert(ctx, section); err != nil {
			log.Error("Error persisting section", "section_order", order, "written", out.SectionsWritten, "error", err)
			return o.fail(ctx, log, out, fmt.Errorf("persisting section %d: %w", order, err))
		}
		out.SectionsWritten++
	}
	metrics.CaptureIngestChunks(len(chunks), out.ChunksSkipped)
	if out.SectionsWritten == 0 {
		log.Warn("No chunk could be embedded", "chunks", len(chunks), "skipped", out.ChunksSkipped)
		return o.fail(ctx, log, out, commonModels.ErrNoSectionsWritten)
	}

	out.Status = commonModels.DocumentReady
	if err := o.documents.UpdateStatus(ctx, documentID, commonModels.DocumentReady, ""); err != nil {
		log.Error("Error updating document status", "status", out.Status, "error", err)
		out.Err = err
	}
	log.Info("Document ingested", "sections", out.SectionsWritten, "skipped", out.ChunksSkipped)
	return out
}

func (o *Orchestrator) fail(ctx context.Context, log *logger_i.Logger, out Outcome, cause error) Outcome {
	out.Status = commonModels.DocumentError
	out.Err = cause
	// the status must land even when ctx is already done
	if err := o.documents.UpdateStatus(context.WithoutCancel(ctx), out.DocumentID, commonModels.DocumentError, cause.Error()); err != nil {
		log.Error("Error updating document status", "status", out.Status, "error", err)
		out.Err = errors.Join(cause, err)
	}
	return out
}
