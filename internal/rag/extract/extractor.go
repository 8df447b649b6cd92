// Package extract turns PDF and DOCX binaries into normalized text.
//
// The supported set is closed: PDF, DOCX, and everything else, which yields
// an empty string. Extraction never returns an error; a document that cannot
// be read is reported as having no text and the caller decides what that means.
package extract

import (
	"bytes"
	"context"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/rag/normalize"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type Kind string

const (
	Unsupported Kind = "unsupported"
	PDF         Kind = "pdf"
	DOCX        Kind = "docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

type Extractor struct {
	logger        *logger_i.Logger
	pageTimeout   time.Duration
	lineTolerance float64
}

func New() *Extractor {
	return &Extractor{
		logger:        logger_i.NewLogger("extract"),
		pageTimeout:   config.PDFPageTimeout,
		lineTolerance: config.PDFLineTolerance,
	}
}

// KindOf picks the variant from the MIME type. Generic or missing types fall
// back to sniffing the leading bytes.
func KindOf(mimeType string, data []byte) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}

	switch mt {
	case MimePDF:
		return PDF
	case MimeDOCX:
		return DOCX
	case "", "application/octet-stream":
		switch {
		case bytes.HasPrefix(data, pdfMagic):
			return PDF
		case bytes.HasPrefix(data, zipMagic) && bytes.Contains(data, []byte("word/")):
			return DOCX
		}
	}
	return Unsupported
}

// Supported reports whether uploads of this MIME type can be ingested.
func Supported(mimeType string) bool {
	return KindOf(mimeType, nil) != Unsupported
}

// MimeFromFileName maps the extensions the extractors understand to their
// MIME type. Anything else is application/octet-stream.
func MimeFromFileName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	}
	return "application/octet-stream"
}

// Extract returns the normalized text of the document, or "" when nothing
// could be read.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) string {
	kind := KindOf(mimeType, data)
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "kind", kind, "bytes", len(data))
	log.Debug("extracting text")

	var raw string
	switch kind {
	case PDF:
		raw = e.extractPDF(ctx, data)
	case DOCX:
		raw = e.extractDOCX(data)
	default:
		log.Warn("unsupported mime type", "mimeType", mimeType)
		return ""
	}
	return normalize.Text(raw)
}
