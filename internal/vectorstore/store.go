package vectorstore

import (
	"context"

	"github.com/google/uuid"
)

// Chunk is one indexed window of a document's text. Tags and access level
// are denormalized from the owning document so retrieval needs no join.
type Chunk struct {
	ID             string
	DocumentID     uuid.UUID
	ChunkIndex     int
	Content        string
	Embedding      []float32
	Tags           string
	AccessLevel    string
	AccessLevelNum int
}

type SearchOptions struct {
	// MaxAccessRank is an inclusive upper bound on chunk visibility. It is
	// applied inside the index query, never after fetching.
	MaxAccessRank int
	TopK          int
}

// SearchResult scores are cosine distances: lower is better.
type SearchResult struct {
	ChunkID        string    `json:"chunk_id"`
	DocumentID     uuid.UUID `json:"document_id"`
	Content        string    `json:"content"`
	Score          float64   `json:"score"`
	ChunkIndex     int       `json:"chunk_index"`
	Tags           string    `json:"tags"`
	AccessLevel    string    `json:"access_level"`
	AccessLevelNum int       `json:"access_level_num"`
}

// MetadataUpdate carries new denormalized values for every chunk of a document.
type MetadataUpdate struct {
	Tags           string
	AccessLevel    string
	AccessLevelNum int
}

type VectorStore interface {
	Upsert(ctx context.Context, chunks []Chunk) error
	SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)
	UpdateDocumentMetadata(ctx context.Context, documentID uuid.UUID, upd MetadataUpdate) (int64, error)
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
	// OrphanDocumentIDs lists documents that still have chunks in the index
	// but no metadata record. Used by the reconciliation sweep.
	OrphanDocumentIDs(ctx context.Context) ([]uuid.UUID, error)
}
