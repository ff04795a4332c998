package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const docColumns = "id, filename, tags, access_level, access_level_num, blob_id, owner, size_bytes, created_at, updated_at"

func (s *PostgresStore) Insert(ctx context.Context, doc *models.Document) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO documents (id, filename, tags, access_level, access_level_num, blob_id, owner, size_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		doc.ID, doc.Filename, doc.Tags, doc.AccessLevel, doc.AccessLevelNum, doc.BlobID, doc.Owner, doc.SizeBytes,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+docColumns+" FROM documents WHERE id = $1", id,
	)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+docColumns+" FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Update writes tags and/or access level. Level and rank change in the same
// statement so they can never diverge.
func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, patch MetadataPatch) (*models.Document, error) {
	var row pgx.Row
	switch {
	case patch.Tags != nil && patch.AccessLevel != "":
		row = s.db.QueryRow(ctx,
			`UPDATE documents SET tags = $1, access_level = $2, access_level_num = $3, updated_at = now()
			 WHERE id = $4 RETURNING `+docColumns,
			patch.Tags, patch.AccessLevel, patch.AccessLevelNum, id,
		)
	case patch.Tags != nil:
		row = s.db.QueryRow(ctx,
			`UPDATE documents SET tags = $1, updated_at = now() WHERE id = $2 RETURNING `+docColumns,
			patch.Tags, id,
		)
	default:
		row = s.db.QueryRow(ctx,
			`UPDATE documents SET access_level = $1, access_level_num = $2, updated_at = now()
			 WHERE id = $3 RETURNING `+docColumns,
			patch.AccessLevel, patch.AccessLevelNum, id,
		)
	}

	doc, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(&doc.ID, &doc.Filename, &doc.Tags, &doc.AccessLevel, &doc.AccessLevelNum,
		&doc.BlobID, &doc.Owner, &doc.SizeBytes, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
