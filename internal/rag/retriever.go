package rag

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Aireenelz/rag-employee-learning-system/internal/embedding"
	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

type RetrieverOptions struct {
	TopK               int
	RelevanceThreshold float64 // max distance for a chunk to count as relevant
	CacheTTL           time.Duration
}

// ResultCachePrefix namespaces cached retrieval results in redis. Metadata
// updates and deletes drop everything under it.
const ResultCachePrefix = "retrieval:"

// ResultCache memoizes retrieval results. Satisfied by cache.Cache; nil
// disables caching.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// searchFunc runs a nearest-neighbour query with an access filter already
// bound. One instance exists per access rank.
type searchFunc func(ctx context.Context, query string) ([]vectorstore.SearchResult, error)

// Retriever answers similarity queries with the caller's access rank pushed
// into the index query. Search functions are memoized per rank: the filter
// lives inside the closure, so a cached function can never serve another
// rank's results. The redis result cache is keyed by rank for the same
// reason.
type Retriever struct {
	store    vectorstore.VectorStore
	embedder embedding.Embedder
	results  ResultCache // optional query-result cache
	opts     RetrieverOptions

	mu        sync.Mutex
	searchers [models.NumAccessLevels]searchFunc
}

func NewRetriever(store vectorstore.VectorStore, embedder embedding.Embedder, results ResultCache, opts RetrieverOptions) *Retriever {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.RelevanceThreshold <= 0 {
		opts.RelevanceThreshold = 0.5
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		results:  results,
		opts:     opts,
	}
}

// Retrieve returns the relevant chunks visible at the given rank, ordered
// by distance (lower is better), thresholded.
func (r *Retriever) Retrieve(ctx context.Context, query string, accessRank int) ([]vectorstore.SearchResult, error) {
	if accessRank < 0 {
		accessRank = 0
	}
	if accessRank >= models.NumAccessLevels {
		accessRank = models.NumAccessLevels - 1
	}

	cacheKey := resultCacheKey(accessRank, query)
	if r.results != nil {
		var cached []vectorstore.SearchResult
		if err := r.results.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	results, err := r.searcherFor(accessRank)(ctx, query)
	if err != nil {
		return nil, err
	}

	relevant := results[:0]
	for _, res := range results {
		if res.Score <= r.opts.RelevanceThreshold {
			relevant = append(relevant, res)
		}
	}

	if r.results != nil {
		if err := r.results.Set(ctx, cacheKey, relevant, r.opts.CacheTTL); err != nil {
			slog.Debug("retrieval cache write failed", "error", err)
		}
	}

	return relevant, nil
}

// searcherFor returns the memoized search function for a rank, building it
// on first use. A race that builds the same rank twice is harmless: both
// closures embed the same filter.
func (r *Retriever) searcherFor(rank int) searchFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.searchers[rank] == nil {
		opts := vectorstore.SearchOptions{
			MaxAccessRank: rank,
			TopK:          r.opts.TopK,
		}
		r.searchers[rank] = func(ctx context.Context, query string) ([]vectorstore.SearchResult, error) {
			queryVec, err := r.embedder.EmbedSingle(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("embed query: %w", err)
			}
			return r.store.SimilaritySearch(ctx, queryVec, opts)
		}
	}
	return r.searchers[rank]
}

func resultCacheKey(rank int, query string) string {
	return fmt.Sprintf("%s%d:%x", ResultCachePrefix, rank, sha256.Sum256([]byte(query)))
}
