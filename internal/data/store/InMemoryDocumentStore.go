package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocQA/internal/domain/commonModels"
)

type InMemoryDocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]commonModels.Document
	order []string
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[string]commonModels.Document)}
}

func (store *InMemoryDocumentStore) Create(ctx context.Context, doc commonModels.Document) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, exists := store.docs[doc.Id]; !exists {
		store.order = append(store.order, doc.Id)
	}
	store.docs[doc.Id] = doc
	inMemLogger.Debug("Saved document to store", "documentId", doc.Id)
	return nil
}

func (store *InMemoryDocumentStore) Get(ctx context.Context, id string) (commonModels.Document, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	doc, ok := store.docs[id]
	if !ok {
		return doc, fmt.Errorf("%w: %s", commonModels.ErrDocumentNotFound, id)
	}
	return doc, nil
}

func (store *InMemoryDocumentStore) List(ctx context.Context) ([]commonModels.Document, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	docs := make([]commonModels.Document, 0, len(store.order))
	for _, id := range store.order {
		docs = append(docs, store.docs[id])
	}
	return docs, nil
}

func (store *InMemoryDocumentStore) UpdateStatus(ctx context.Context, id string, status commonModels.DocumentStatus, errorMessage string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	doc, ok := store.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", commonModels.ErrDocumentNotFound, id)
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	doc.UpdatedAt = time.Now().UTC()
	store.docs[id] = doc
	return nil
}
