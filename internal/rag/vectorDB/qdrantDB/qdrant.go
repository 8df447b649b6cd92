package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

const (
	fieldDocumentID   = "document_id"
	fieldSectionOrder = "section_order"
	fieldContent      = "section_content"
	fieldMetaPrefix   = "meta_"
)

// ClientHolder is the qdrant implementation of vectorDB.Store and vectorDB.AnswerCache.
type ClientHolder struct {
	QObj            *qdrant.Client
	collectionName  string
	cacheCollection string
	dimension       uint64
	logger          *logger_i.Logger
}

func New(ctx context.Context, host string, port int, apiKey string) (*ClientHolder, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		APIKey:   apiKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	db := &ClientHolder{
		QObj:            client,
		collectionName:  config.SectionCollectionName,
		cacheCollection: config.SemanticCacheCollectionName,
		dimension:       uint64(config.EmbeddingOutputDimensionality),
		logger:          logger_i.NewLogger("Qdrant"),
	}
	if err := db.createCollection(ctx, db.collectionName); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not create collection %s: %w", db.collectionName, err)
	}
	if err := db.createPayloadIndex(ctx); err != nil {
		db.logger.Warn("could not index document_id", "error", err)
	}
	db.initCacheCollection(ctx)
	return db, nil
}

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

func (db *ClientHolder) Insert(ctx context.Context, section commonModels.DocumentSection) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("qdrant_upsert", time.Since(start)) }()

	payload := map[string]any{
		fieldDocumentID:   section.DocumentId,
		fieldSectionOrder: int64(section.SectionOrder),
		fieldContent:      section.Content,
		"ingested_at":     time.Now().Unix(),
	}
	for k, v := range section.Meta {
		payload[fieldMetaPrefix+k] = v
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(vectorDB.SectionID(section.DocumentId, section.SectionOrder)),
			Vectors: qdrant.NewVectors(section.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		}},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(fieldDocumentID, documentID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) NearestNeighbors(ctx context.Context, vector []float32, topK int, threshold *float32) ([]commonModels.QueryMatch, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	query := &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if threshold != nil {
		query.ScoreThreshold = qdrant.PtrOf(*threshold)
	}

	result, err := db.QObj.Query(ctx, query)
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	matches := make([]commonModels.QueryMatch, 0, len(result))
	for _, hit := range result {
		matches = append(matches, toQueryMatch(hit))
	}
	loggr.Debug("Found matches", "count", len(matches), "topK", topK)
	return matches, nil
}

func toQueryMatch(hit *qdrant.ScoredPoint) commonModels.QueryMatch {
	m := commonModels.QueryMatch{
		SectionId:  hit.GetId().GetUuid(),
		Similarity: hit.GetScore(),
		Meta:       map[string]string{},
	}
	for k, v := range hit.GetPayload() {
		switch k {
		case fieldDocumentID:
			m.DocumentId = v.GetStringValue()
		case fieldSectionOrder:
			m.SectionOrder = int(v.GetIntegerValue())
		case fieldContent:
			m.Content = v.GetStringValue()
		case "ingested_at":
			m.Meta[k] = strconv.FormatInt(v.GetIntegerValue(), 10)
		default:
			if name, ok := strings.CutPrefix(k, fieldMetaPrefix); ok && name != "" {
				m.Meta[name] = v.GetStringValue()
			}
		}
	}
	return m
}

func (db *ClientHolder) createCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// createPayloadIndex speeds up the delete filter used on re-ingestion.
func (db *ClientHolder) createPayloadIndex(ctx context.Context) error {
	_, err := db.QObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: db.collectionName,
		FieldName:      fieldDocumentID,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}
