package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Upsert(ctx context.Context, chunks []Chunk) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		embedding := pgvector.NewVector(c.Embedding)

		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding, tags, access_level, access_level_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET content = $4, embedding = $5, tags = $6, access_level = $7, access_level_num = $8`,
			c.ID, c.DocumentID, c.ChunkIndex, c.Content, embedding, c.Tags, c.AccessLevel, c.AccessLevelNum,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}

	embedding := pgvector.NewVector(query)

	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, content, chunk_index, tags, access_level, access_level_num,
		        embedding <=> $1 AS score
		 FROM document_chunks
		 WHERE access_level_num <= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		embedding, opts.MaxAccessRank, opts.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Content, &r.ChunkIndex, &r.Tags, &r.AccessLevel, &r.AccessLevelNum, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) UpdateDocumentMetadata(ctx context.Context, documentID uuid.UUID, upd MetadataUpdate) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE document_chunks SET tags = $1, access_level = $2, access_level_num = $3 WHERE document_id = $4`,
		upd.Tags, upd.AccessLevel, upd.AccessLevelNum, documentID,
	)
	if err != nil {
		return 0, fmt.Errorf("update chunk metadata: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PgVectorStore) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM document_chunks WHERE document_id = $1", documentID)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

func (s *PgVectorStore) OrphanDocumentIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT c.document_id
		 FROM document_chunks c
		 LEFT JOIN documents d ON d.id = c.document_id
		 WHERE d.id IS NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("list orphan chunks: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan orphan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
