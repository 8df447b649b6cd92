package app

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/data/store"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComponents(s config.Settings) *Components {
	return &Components{Settings: s, logger: logger_i.NewLogger("app-test")}
}

func TestBuildStores_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	s := config.Defaults()
	s.RedisAddr = mr.Addr()
	c := newComponents(s)

	require.NoError(t, c.buildStores(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &store.RedisJobStore{}, c.Jobs)
	assert.IsType(t, &store.RedisDocumentStore{}, c.Documents)
	assert.Len(t, c.closers, 2)
}

func TestBuildStores_Fallback(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := config.Defaults()
	s.RedisAddr = addr

	t.Run("memory fallback", func(t *testing.T) {
		c := newComponents(s)
		require.NoError(t, c.buildStores(context.Background()))
		assert.IsType(t, &store.InMemoryJobStore{}, c.Jobs)
		assert.IsType(t, &store.InMemoryDocumentStore{}, c.Documents)
		assert.Empty(t, c.closers)
	})

	t.Run("fallback disabled", func(t *testing.T) {
		s.FallbackToMemory = false
		c := newComponents(s)
		assert.Error(t, c.buildStores(context.Background()))
	})
}

func TestBuildBlobs_Local(t *testing.T) {
	s := config.Defaults()
	s.BlobRoot = t.TempDir()
	c := newComponents(s)

	require.NoError(t, c.buildBlobs(context.Background()))
	assert.NotNil(t, c.Blobs)
	assert.Empty(t, c.closers)
}

func TestBuild_UnknownProviders(t *testing.T) {
	c := newComponents(config.Settings{VectorBackend: "milvus", EmbeddingProvider: "cohere", LLMProvider: "cohere"})
	ctx := context.Background()

	_, _, err := c.buildSections(ctx)
	assert.ErrorContains(t, err, "milvus")
	_, _, err = c.buildEmbedders(ctx)
	assert.ErrorContains(t, err, "cohere")
	_, err = c.buildLLM(ctx)
	assert.ErrorContains(t, err, "cohere")
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	c := newComponents(config.Defaults())
	c.closers = []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return boom },
	}

	err := c.Close()

	assert.Equal(t, []int{2, 1}, order)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, c.Close())
}
