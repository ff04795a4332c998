package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

func TestRetrieveFiltersByThreshold(t *testing.T) {
	docID := uuid.New()
	store := &fakeVectorStore{results: []vectorstore.SearchResult{
		result(docID, 0, "close match", "hr", "internal", 2, 0.12),
		result(docID, 1, "borderline", "hr", "internal", 2, 0.5),
		result(docID, 2, "too far", "hr", "internal", 2, 0.51),
		result(docID, 3, "noise", "hr", "internal", 2, 0.93),
	}}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	r := NewRetriever(store, embedder, nil, RetrieverOptions{TopK: 5, RelevanceThreshold: 0.5})

	got, err := r.Retrieve(context.Background(), "onboarding policy", 2)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "close match", got[0].Content)
	assert.Equal(t, "borderline", got[1].Content)
}

func TestRetrievePassesAccessRankToIndex(t *testing.T) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{vector: []float32{1}}
	r := NewRetriever(store, embedder, nil, RetrieverOptions{TopK: 4, RelevanceThreshold: 0.5})

	_, err := r.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, store.lastOpts.MaxAccessRank)
	assert.Equal(t, 4, store.lastOpts.TopK)
	assert.Equal(t, []float32{1}, store.lastQuery)
}

func TestRetrieveClampsRank(t *testing.T) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{vector: []float32{1}}
	r := NewRetriever(store, embedder, nil, RetrieverOptions{})

	_, err := r.Retrieve(context.Background(), "q", 99)
	require.NoError(t, err)
	assert.Equal(t, models.NumAccessLevels-1, store.lastOpts.MaxAccessRank)

	_, err = r.Retrieve(context.Background(), "q", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, store.lastOpts.MaxAccessRank)
}

func TestRetrieveEmbedFailure(t *testing.T) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	r := NewRetriever(store, embedder, nil, RetrieverOptions{})

	_, err := r.Retrieve(context.Background(), "q", 1)
	require.Error(t, err)
	assert.Zero(t, store.searchCalls)
}

func TestRetrieveCacheHitSkipsBackend(t *testing.T) {
	docID := uuid.New()
	store := &fakeVectorStore{results: []vectorstore.SearchResult{
		result(docID, 0, "cached chunk", "hr", "internal", 2, 0.1),
	}}
	embedder := &fakeEmbedder{vector: []float32{1}}
	rc := newFakeResultCache()
	r := NewRetriever(store, embedder, rc, RetrieverOptions{CacheTTL: time.Minute})

	first, err := r.Retrieve(context.Background(), "leave policy", 2)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := r.Retrieve(context.Background(), "leave policy", 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.searchCalls, "a cache hit must not touch the index")
	assert.Equal(t, 1, embedder.calls, "a cache hit must not re-embed the query")
	assert.Equal(t, 1, rc.hits)
}

func TestRetrieveCacheIsolatedByRank(t *testing.T) {
	docID := uuid.New()
	store := &fakeVectorStore{results: []vectorstore.SearchResult{
		result(docID, 0, "payroll details", "finance", "admin", 3, 0.1),
	}}
	rc := newFakeResultCache()
	r := NewRetriever(store, &fakeEmbedder{vector: []float32{1}}, rc, RetrieverOptions{CacheTTL: time.Minute})

	// Warm the cache with an admin-rank query.
	got, err := r.Retrieve(context.Background(), "payroll", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// The same question at partner rank must go back to the index with the
	// partner filter; the admin entry must never be served.
	store.results = nil
	got, err = r.Retrieve(context.Background(), "payroll", 1)
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Equal(t, 2, store.searchCalls)
	assert.Equal(t, 1, store.lastOpts.MaxAccessRank)
	assert.Zero(t, rc.hits)
	assert.Len(t, rc.entries, 2, "each rank caches under its own key")
}

func TestSearcherMemoizedPerRank(t *testing.T) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{vector: []float32{1}}
	r := NewRetriever(store, embedder, nil, RetrieverOptions{})

	for i := 0; i < 3; i++ {
		_, err := r.Retrieve(context.Background(), "q", 1)
		require.NoError(t, err)
	}
	_, err := r.Retrieve(context.Background(), "q", 3)
	require.NoError(t, err)

	// Only the ranks actually used get a searcher built.
	assert.NotNil(t, r.searchers[1])
	assert.NotNil(t, r.searchers[3])
	assert.Nil(t, r.searchers[0])
	assert.Nil(t, r.searchers[2])
	assert.Equal(t, 4, store.searchCalls)
}
