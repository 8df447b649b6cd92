package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockBlobs struct {
	OnFetch func(ctx context.Context, location string) ([]byte, error)
}

func (m *mockBlobs) Fetch(ctx context.Context, location string) ([]byte, error) {
	return m.OnFetch(ctx, location)
}
func (m *mockBlobs) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	return "", 0, errors.New("not used")
}

type mockExtractor struct {
	text string
}

func (m *mockExtractor) Extract(ctx context.Context, data []byte, mimeType string) string {
	return m.text
}

type mockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return m.OnGetEmbedding(ctx, text)
}

// memorySections keeps sections keyed like the real stores: one per (document, order).
type memorySections struct {
	sections    map[string]commonModels.DocumentSection
	inserts     int
	deletes     int
	OnInsert    func(call int, section commonModels.DocumentSection) error
	OnDeleteErr error
}

func newMemorySections() *memorySections {
	return &memorySections{sections: map[string]commonModels.DocumentSection{}}
}

func (m *memorySections) Insert(ctx context.Context, section commonModels.DocumentSection) error {
	m.inserts++
	if m.OnInsert != nil {
		if err := m.OnInsert(m.inserts, section); err != nil {
			return err
		}
	}
	m.sections[vectorDB.SectionID(section.DocumentId, section.SectionOrder)] = section
	return nil
}

func (m *memorySections) DeleteByDocument(ctx context.Context, documentID string) error {
	m.deletes++
	if m.OnDeleteErr != nil {
		return m.OnDeleteErr
	}
	for id, s := range m.sections {
		if s.DocumentId == documentID {
			delete(m.sections, id)
		}
	}
	return nil
}

func (m *memorySections) orders(documentID string) []int {
	var out []int
	for i := 1; i <= 100; i++ {
		if _, ok := m.sections[vectorDB.SectionID(documentID, i)]; ok {
			out = append(out, i)
		}
	}
	return out
}

func fixedVector(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type fixture struct {
	blobs     *mockBlobs
	extractor *mockExtractor
	embedder  *mockEmbedder
	sections  *memorySections
	documents *store.InMemoryDocumentStore
}

// threeChunks packs into exactly three chunks at size 20.
const threeChunks = "First sentence here. Second sentence now. Third one ends it."

func newFixture(t *testing.T, text string) *fixture {
	t.Helper()
	f := &fixture{
		blobs: &mockBlobs{OnFetch: func(ctx context.Context, location string) ([]byte, error) {
			return []byte("%PDF-1.4"), nil
		}},
		extractor: &mockExtractor{text: text},
		embedder:  &mockEmbedder{OnGetEmbedding: fixedVector},
		sections:  newMemorySections(),
		documents: store.InitInMemoryDocumentStore(),
	}
	require.NoError(t, f.documents.Create(context.Background(), commonModels.Document{
		Id: "doc-1", Status: commonModels.DocumentQueued,
	}))
	return f
}

func (f *fixture) run() Outcome {
	o := NewOrchestrator(f.blobs, f.extractor, f.embedder, f.sections, f.documents, 20)
	return o.Ingest(context.Background(), "doc-1", "/data/contract.pdf", "application/pdf")
}

func (f *fixture) document(t *testing.T) commonModels.Document {
	doc, err := f.documents.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	return doc
}

// --- Unit Tests ---

func TestIngest_HappyPath(t *testing.T) {
	f := newFixture(t, threeChunks)

	out := f.run()

	require.NoError(t, out.Err)
	assert.Equal(t, commonModels.DocumentReady, out.Status)
	assert.Equal(t, 3, out.SectionsWritten)
	assert.Equal(t, 0, out.ChunksSkipped)
	assert.Equal(t, []int{1, 2, 3}, f.sections.orders("doc-1"))

	doc := f.document(t)
	assert.Equal(t, commonModels.DocumentReady, doc.Status)
	assert.Empty(t, doc.ErrorMessage)

	first := f.sections.sections[vectorDB.SectionID("doc-1", 1)]
	assert.Equal(t, "First sentence here.", first.Content)
	assert.Equal(t, "pdf", first.Meta["source"])
	assert.Equal(t, "application/pdf", first.Meta["mime_type"])
	assert.Equal(t, "contract.pdf", first.Meta["filename"])
	assert.Equal(t, "3", first.Meta["chunk_count"])
}

func TestIngest_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   \n\t "} {
		f := newFixture(t, text)

		out := f.run()

		assert.Equal(t, commonModels.DocumentError, out.Status)
		assert.ErrorIs(t, out.Err, commonModels.ErrNoExtractableText)
		assert.Equal(t, 0, out.SectionsWritten)
		assert.Equal(t, 0, f.sections.inserts)
		assert.Empty(t, f.sections.sections)

		doc := f.document(t)
		assert.Equal(t, commonModels.DocumentError, doc.Status)
		assert.Equal(t, "no extractable text", doc.ErrorMessage)
	}
}

func TestIngest_FetchFailure(t *testing.T) {
	f := newFixture(t, threeChunks)
	f.blobs.OnFetch = func(ctx context.Context, location string) ([]byte, error) {
		return nil, errors.New("object not found")
	}

	out := f.run()

	assert.Equal(t, commonModels.DocumentError, out.Status)
	require.Error(t, out.Err)
	assert.Equal(t, 0, f.sections.deletes)
	assert.Equal(t, 0, f.sections.inserts)
	assert.Equal(t, "object not found", f.document(t).ErrorMessage)
}

func TestIngest_PersistFailureKeepsEarlierSections(t *testing.T) {
	f := newFixture(t, threeChunks)
	insertErr := errors.New("disk full")
	f.sections.OnInsert = func(call int, section commonModels.DocumentSection) error {
		if section.SectionOrder == 2 {
			return insertErr
		}
		return nil
	}

	out := f.run()

	assert.Equal(t, commonModels.DocumentError, out.Status)
	assert.ErrorIs(t, out.Err, insertErr)
	assert.Equal(t, 1, out.SectionsWritten)
	assert.Equal(t, 2, f.sections.inserts, "chunk 3 must not be attempted")
	assert.Equal(t, []int{1}, f.sections.orders("doc-1"), "chunk 1 stays persisted")

	doc := f.document(t)
	assert.Equal(t, commonModels.DocumentError, doc.Status)
	assert.True(t, strings.Contains(doc.ErrorMessage, "disk full"))
}

func TestIngest_MissingEmbeddingLeavesGap(t *testing.T) {
	tests := []struct {
		name  string
		embed func(ctx context.Context, text string) ([]float32, error)
	}{
		{"nil vector", func(ctx context.Context, text string) ([]float32, error) {
			if strings.HasPrefix(text, "Second") {
				return nil, nil
			}
			return fixedVector(ctx, text)
		}},
		{"empty vector", func(ctx context.Context, text string) ([]float32, error) {
			if strings.HasPrefix(text, "Second") {
				return []float32{}, nil
			}
			return fixedVector(ctx, text)
		}},
		{"provider error", func(ctx context.Context, text string) ([]float32, error) {
			if strings.HasPrefix(text, "Second") {
				return nil, errors.New("quota exceeded")
			}
			return fixedVector(ctx, text)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, threeChunks)
			f.embedder.OnGetEmbedding = tt.embed

			out := f.run()

			require.NoError(t, out.Err)
			assert.Equal(t, commonModels.DocumentReady, out.Status)
			assert.Equal(t, 2, out.SectionsWritten)
			assert.Equal(t, 1, out.ChunksSkipped)
			assert.Equal(t, []int{1, 3}, f.sections.orders("doc-1"))
		})
	}
}

func TestIngest_AllEmbeddingsMissing(t *testing.T) {
	f := newFixture(t, threeChunks)
	f.embedder.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
		return nil, nil
	}

	out := f.run()

	assert.Equal(t, commonModels.DocumentError, out.Status)
	assert.ErrorIs(t, out.Err, commonModels.ErrNoSectionsWritten)
	assert.Equal(t, 0, out.SectionsWritten)
	assert.Equal(t, 3, out.ChunksSkipped)
	assert.Empty(t, f.sections.sections)

	doc := f.document(t)
	assert.Equal(t, commonModels.DocumentError, doc.Status)
	assert.Equal(t, "no chunk could be embedded", doc.ErrorMessage)
}

func TestIngest_StatusMetricFollowsOutcome(t *testing.T) {
	errored := metrics.DocumentsByStatus.WithLabelValues(string(commonModels.DocumentError))
	ready := metrics.DocumentsByStatus.WithLabelValues(string(commonModels.DocumentReady))
	blank := metrics.DocumentsByStatus.WithLabelValues("")

	f := newFixture(t, threeChunks)
	f.blobs.OnFetch = func(ctx context.Context, location string) ([]byte, error) {
		return nil, errors.New("gone")
	}
	errBefore, blankBefore := testutil.ToFloat64(errored), testutil.ToFloat64(blank)

	f.run()

	assert.Equal(t, errBefore+1, testutil.ToFloat64(errored))
	assert.Equal(t, blankBefore, testutil.ToFloat64(blank))

	readyBefore := testutil.ToFloat64(ready)
	newFixture(t, threeChunks).run()
	assert.Equal(t, readyBefore+1, testutil.ToFloat64(ready))
}

func TestIngest_RetryClearsPreviousRun(t *testing.T) {
	f := newFixture(t, threeChunks)
	f.sections.OnInsert = func(call int, section commonModels.DocumentSection) error {
		if section.SectionOrder == 3 {
			return errors.New("timeout")
		}
		return nil
	}
	first := f.run()
	require.Equal(t, commonModels.DocumentError, first.Status)
	require.Equal(t, []int{1, 2}, f.sections.orders("doc-1"))

	// shorter text on the second run: stale section 2 must not survive
	f.sections.OnInsert = nil
	f.extractor.text = "Only one sentence."
	second := f.run()

	require.NoError(t, second.Err)
	assert.Equal(t, commonModels.DocumentReady, second.Status)
	assert.Equal(t, 2, f.sections.deletes)
	assert.Equal(t, []int{1}, f.sections.orders("doc-1"))
	assert.Equal(t, "Only one sentence.", f.sections.sections[vectorDB.SectionID("doc-1", 1)].Content)
	assert.Equal(t, commonModels.DocumentReady, f.document(t).Status)
}

func TestIngest_ClearFailureIsFatal(t *testing.T) {
	f := newFixture(t, threeChunks)
	f.sections.OnDeleteErr = errors.New("qdrant down")

	out := f.run()

	assert.Equal(t, commonModels.DocumentError, out.Status)
	assert.Equal(t, 0, f.sections.inserts)
	assert.Equal(t, commonModels.DocumentError, f.document(t).Status)
}

func TestIngest_StatusUpdateFailureIsReported(t *testing.T) {
	f := newFixture(t, threeChunks)
	f.documents = store.InitInMemoryDocumentStore() // document never created

	out := f.run()

	assert.Equal(t, commonModels.DocumentReady, out.Status)
	assert.ErrorIs(t, out.Err, commonModels.ErrDocumentNotFound)
	assert.Equal(t, 3, out.SectionsWritten)
}
