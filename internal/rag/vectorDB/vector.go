package vectorDB

import (
	"context"
	"strconv"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/google/uuid"
)

// SectionStore persists document sections. Sections are immutable once written.
type SectionStore interface {
	Insert(ctx context.Context, section commonModels.DocumentSection) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// SearchBackend returns the topK nearest sections, highest similarity first.
// A nil threshold means unfiltered.
type SearchBackend interface {
	NearestNeighbors(ctx context.Context, vector []float32, topK int, threshold *float32) ([]commonModels.QueryMatch, error)
}

type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}

// Store is what a section backend offers the rest of the service.
type Store interface {
	SectionStore
	SearchBackend
}

var sectionNamespace = uuid.MustParse("6f1f5c1e-3b7a-4e0b-9a43-2d8c1f0e7b55")

// SectionID is stable in (documentID, order) so a re-ingestion overwrites
// instead of duplicating.
func SectionID(documentID string, order int) string {
	return uuid.NewSHA1(sectionNamespace, []byte(documentID+"#"+strconv.Itoa(order))).String()
}
