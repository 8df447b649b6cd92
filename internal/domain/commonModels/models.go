package commonModels

import (
	"context"
	"errors"
	"time"
)

type DocumentStatus string

const (
	DocumentQueued DocumentStatus = "queued"
	DocumentReady  DocumentStatus = "ready"
	DocumentError  DocumentStatus = "error"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrNoExtractableText   = errors.New("no extractable text")
	ErrNoSectionsWritten   = errors.New("no chunk could be embedded")
	ErrUnsupportedLocation = errors.New("unsupported storage location")
)

type Document struct {
	Id           string            `json:"id"`
	Title        string            `json:"title"`
	FileName     string            `json:"file_name"`
	MimeType     string            `json:"mime_type"`
	Size         int64             `json:"size"`
	Location     string            `json:"location"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Status       DocumentStatus    `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// DocumentSection is the persisted form of one chunk. SectionOrder is 1-based.
type DocumentSection struct {
	DocumentId   string            `json:"document_id"`
	SectionOrder int               `json:"section_order"`
	Content      string            `json:"section_content"`
	Embedding    []float32         `json:"-"`
	Meta         map[string]string `json:"meta,omitempty"`
}

type QueryMatch struct {
	SectionId    string            `json:"section_id"`
	DocumentId   string            `json:"document_id"`
	SectionOrder int               `json:"section_order"`
	Content      string            `json:"content"`
	Similarity   float32           `json:"similarity"`
	Meta         map[string]string `json:"meta,omitempty"`
}

// Tier is one retrieval attempt. A nil Threshold means unfiltered top-K.
type Tier struct {
	TopK      int
	Threshold *float32
}

type DocumentStore interface {
	Create(ctx context.Context, doc Document) error
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	UpdateStatus(ctx context.Context, id string, status DocumentStatus, errorMessage string) error
}
