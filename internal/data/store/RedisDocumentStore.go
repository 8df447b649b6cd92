package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/redisStore"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

const (
	documentKeyPrefix = "document:"
	documentIndexKey  = "documents"
)

// RedisDocumentStore keeps one JSON value per document and a list of keys
// in upload order.
type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func documentKey(id string) string {
	return documentKeyPrefix + id
}

func (s *RedisDocumentStore) Create(ctx context.Context, doc commonModels.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.store.SetAndPush(ctx, documentKey(doc.Id), data, documentIndexKey); err != nil {
		log.Error("Error saving document", "error", err)
		return err
	}
	log.Debug("Saved document to Redis")
	return nil
}

func (s *RedisDocumentStore) Get(ctx context.Context, id string) (commonModels.Document, error) {
	var doc commonModels.Document
	val, err := s.store.Get(ctx, documentKey(id))
	if s.store.IsNil(err) {
		return doc, fmt.Errorf("%w: %s", commonModels.ErrDocumentNotFound, id)
	} else if err != nil {
		return doc, err
	}
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return doc, nil
}

func (s *RedisDocumentStore) List(ctx context.Context) ([]commonModels.Document, error) {
	keys, err := s.store.ListGetAll(ctx, documentIndexKey)
	if err != nil {
		return nil, err
	}
	docs := make([]commonModels.Document, 0, len(keys))
	for _, key := range keys {
		doc, err := s.Get(ctx, strings.TrimPrefix(key, documentKeyPrefix))
		if err != nil {
			s.logger.Warn("Skipping unreadable document", "key", key, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *RedisDocumentStore) UpdateStatus(ctx context.Context, id string, status commonModels.DocumentStatus, errorMessage string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", id)
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, documentKey(id), data, 0); err != nil {
		log.Error("Error updating document status", "error", err)
		return err
	}
	log.Debug("Document status updated", "status", status)
	return nil
}
