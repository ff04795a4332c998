package rag

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Aireenelz/rag-employee-learning-system/internal/llm"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

type fakeVectorStore struct {
	results     []vectorstore.SearchResult
	searchErr   error
	searchCalls int
	lastOpts    vectorstore.SearchOptions
	lastQuery   []float32
}

func (f *fakeVectorStore) Upsert(ctx context.Context, chunks []vectorstore.Chunk) error {
	return nil
}

func (f *fakeVectorStore) SimilaritySearch(ctx context.Context, query []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
	f.searchCalls++
	f.lastOpts = opts
	f.lastQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeVectorStore) UpdateDocumentMetadata(ctx context.Context, documentID uuid.UUID, upd vectorstore.MetadataUpdate) (int64, error) {
	return 0, nil
}

func (f *fakeVectorStore) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	return nil
}

func (f *fakeVectorStore) OrphanDocumentIDs(ctx context.Context) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

// fakeResultCache is a map-backed ResultCache that round-trips through
// JSON the way the redis cache does.
type fakeResultCache struct {
	entries map[string][]byte
	hits    int
	sets    int
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{entries: map[string][]byte{}}
}

func (f *fakeResultCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := f.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	f.hits++
	return json.Unmarshal(data, dest)
}

func (f *fakeResultCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	f.sets++
	return nil
}

type fakeGateway struct {
	response     *llm.ChatResponse
	chatErr      error
	streamChunks []llm.StreamChunk
	streamErr    error
	lastRequest  llm.ChatRequest
}

func (f *fakeGateway) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.lastRequest = req
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.response, nil
}

func (f *fakeGateway) ChatStream(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	f.lastRequest = req
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	ch := make(chan llm.StreamChunk, len(f.streamChunks))
	for _, c := range f.streamChunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (f *fakeGateway) Embed(ctx context.Context, req llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not implemented")
}

func result(docID uuid.UUID, index int, content, tags, level string, rank int, score float64) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		ChunkID:        content,
		DocumentID:     docID,
		Content:        content,
		Score:          score,
		ChunkIndex:     index,
		Tags:           tags,
		AccessLevel:    level,
		AccessLevelNum: rank,
	}
}
