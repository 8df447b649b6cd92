package qdrantDB

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestToQueryMatch(t *testing.T) {
	hit := &qdrant.ScoredPoint{
		Id:    qdrant.NewID("0b7c3a52-5d43-5f0c-9a4e-6a3c1f1e2d10"),
		Score: 0.82,
		Payload: qdrant.NewValueMap(map[string]any{
			fieldDocumentID:               "doc-1",
			fieldSectionOrder:             int64(3),
			fieldContent:                  "Payment is due in 30 days.",
			fieldMetaPrefix + "mime_type": "application/pdf",
			"ingested_at":                 int64(1700000000),
			"unrelated":                   "ignored",
			fieldMetaPrefix:               "no name",
		}),
	}

	m := toQueryMatch(hit)

	if m.SectionId != "0b7c3a52-5d43-5f0c-9a4e-6a3c1f1e2d10" {
		t.Errorf("SectionId = %q", m.SectionId)
	}
	if m.DocumentId != "doc-1" || m.SectionOrder != 3 {
		t.Errorf("unexpected identity %q#%d", m.DocumentId, m.SectionOrder)
	}
	if m.Content != "Payment is due in 30 days." {
		t.Errorf("Content = %q", m.Content)
	}
	if m.Similarity != 0.82 {
		t.Errorf("Similarity = %v", m.Similarity)
	}
	if m.Meta["mime_type"] != "application/pdf" || m.Meta["ingested_at"] != "1700000000" {
		t.Errorf("Meta = %v", m.Meta)
	}
	if _, ok := m.Meta["unrelated"]; ok {
		t.Errorf("unexpected key in Meta: %v", m.Meta)
	}
	if _, ok := m.Meta[""]; ok {
		t.Errorf("bare prefix produced an empty key: %v", m.Meta)
	}
}
