package document

import (
	"context"

	"github.com/google/uuid"

	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
)

// MetadataPatch carries the mutable document fields. Nil tags / empty
// access level mean "leave unchanged".
type MetadataPatch struct {
	Tags           []string
	AccessLevel    string
	AccessLevelNum int
}

// MetadataStore is the record store for document metadata. The pgx
// implementation lives in postgres.go; tests use an in-memory fake.
type MetadataStore interface {
	Insert(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, limit, offset int) ([]models.Document, error)
	Update(ctx context.Context, id uuid.UUID, patch MetadataPatch) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
