package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Aireenelz/rag-employee-learning-system/internal/apperr"
	"github.com/Aireenelz/rag-employee-learning-system/internal/config"
	"github.com/Aireenelz/rag-employee-learning-system/internal/embedding"
	"github.com/Aireenelz/rag-employee-learning-system/internal/models"
	"github.com/Aireenelz/rag-employee-learning-system/internal/storage"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
	"github.com/Aireenelz/rag-employee-learning-system/pkg/chunker"
)

// ResyncEnqueuer schedules a chunk-metadata resync when inline propagation
// fails. Implemented by queue.Client; may be nil (propagation failures are
// then only logged).
type ResyncEnqueuer interface {
	EnqueueChunkResync(documentID string) error
}

// ResultInvalidator drops cached retrieval results after a document's
// metadata changes, so a raised access level takes effect immediately
// instead of after the cache TTL. Implemented by cache.Cache.
type ResultInvalidator interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Service owns the three stores a document lives in and keeps them
// consistent: blob store, metadata store, vector index.
type Service struct {
	meta            MetadataStore
	blobs           storage.Storage
	vectors         vectorstore.VectorStore
	embedder        embedding.Embedder
	extractor       TextExtractor
	resync          ResyncEnqueuer
	invalidator     ResultInvalidator
	invalidatePfx   string
	bucket          string
	cfg             config.IngestConfig
}

func NewService(meta MetadataStore, blobs storage.Storage, vectors vectorstore.VectorStore, embedder embedding.Embedder, bucket string, cfg config.IngestConfig) *Service {
	return &Service{
		meta:      meta,
		blobs:     blobs,
		vectors:   vectors,
		embedder:  embedder,
		extractor: NewTextExtractor(),
		bucket:    bucket,
		cfg:       cfg,
	}
}

// WithResync attaches the background-resync enqueuer.
func (s *Service) WithResync(r ResyncEnqueuer) *Service {
	s.resync = r
	return s
}

// WithCacheInvalidation attaches the retrieval-result cache so updates and
// deletes evict stale entries under prefix.
func (s *Service) WithCacheInvalidation(inv ResultInvalidator, prefix string) *Service {
	s.invalidator = inv
	s.invalidatePfx = prefix
	return s
}

// invalidateResults is best effort: a failure only extends staleness to the
// cache TTL, which is the bound that holds with no invalidation at all.
func (s *Service) invalidateResults(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.DeleteByPrefix(ctx, s.invalidatePfx); err != nil {
		slog.Error("failed to invalidate retrieval cache", "error", err)
	}
}

type IngestRequest struct {
	Data        []byte
	Filename    string
	Tags        []string
	AccessLevel string
	Owner       string
}

// Ingest runs the full pipeline: blob put, metadata insert, extract, chunk,
// embed, index. Any failure after the metadata insert rolls the earlier
// steps back so a failed upload leaves no visible state. Vector-index
// cleanup during rollback is best effort; leftover chunks are unreachable
// (no document record points at them) and the sweep removes them later.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (uuid.UUID, error) {
	if err := s.validateUpload(req); err != nil {
		return uuid.Nil, err
	}

	rank, _ := models.AccessRank(req.AccessLevel)
	docID := uuid.New()
	blobID := fmt.Sprintf("%s/%s", docID, req.Filename)

	if err := s.blobs.Upload(ctx, s.bucket, blobID, bytes.NewReader(req.Data), "application/octet-stream"); err != nil {
		return uuid.Nil, apperr.Dependency("store blob", err)
	}

	doc := &models.Document{
		ID:             docID,
		Filename:       req.Filename,
		Tags:           req.Tags,
		AccessLevel:    req.AccessLevel,
		AccessLevelNum: rank,
		BlobID:         blobID,
		Owner:          req.Owner,
		SizeBytes:      int64(len(req.Data)),
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	if err := s.meta.Insert(ctx, doc); err != nil {
		s.deleteBlob(ctx, blobID)
		return uuid.Nil, apperr.Dependency("insert document", err)
	}

	text, err := s.extractor.Extract(ctx, req.Data, req.Filename)
	if err != nil {
		s.rollback(ctx, docID, blobID, false)
		return uuid.Nil, apperr.Validation("unreadable file: %v", err)
	}

	chunks := chunker.New().Chunk(text, chunker.ChunkOptions{
		ChunkSize:    s.cfg.ChunkSize,
		ChunkOverlap: s.cfg.ChunkOverlap,
	})
	if len(chunks) == 0 {
		// Nothing to index; the document still exists and is listable.
		slog.Info("document yielded no text, indexed zero chunks", "document_id", docID)
		return docID, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		s.rollback(ctx, docID, blobID, true)
		return uuid.Nil, apperr.Dependency("generate embeddings", err)
	}

	records := make([]vectorstore.Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Chunk{
			ID:             models.ChunkID(docID, c.Index),
			DocumentID:     docID,
			ChunkIndex:     c.Index,
			Content:        c.Content,
			Embedding:      embeddings[i],
			Tags:           strings.Join(doc.Tags, ", "),
			AccessLevel:    doc.AccessLevel,
			AccessLevelNum: doc.AccessLevelNum,
		}
	}

	if err := s.vectors.Upsert(ctx, records); err != nil {
		s.rollback(ctx, docID, blobID, true)
		return uuid.Nil, apperr.Dependency("index chunks", err)
	}

	slog.Info("document ingested",
		"document_id", docID,
		"filename", req.Filename,
		"access_level", req.AccessLevel,
		"chunks", len(records),
	)
	return docID, nil
}

func (s *Service) validateUpload(req IngestRequest) error {
	if len(req.Data) == 0 {
		return apperr.Validation("empty file")
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(req.Data)) > s.cfg.MaxUploadBytes {
		return apperr.Validation("file exceeds %d bytes", s.cfg.MaxUploadBytes)
	}
	ext := strings.ToLower(filepath.Ext(req.Filename))
	allowed := false
	for _, e := range s.cfg.AllowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperr.Validation("unsupported file type %q", ext)
	}
	if !models.ValidAccessLevel(req.AccessLevel) {
		return apperr.Validation("invalid access level %q", req.AccessLevel)
	}
	return nil
}

// rollback undoes a partial ingest. Chunk cleanup failures are logged, not
// propagated: failing the rollback would leave even more state behind.
func (s *Service) rollback(ctx context.Context, docID uuid.UUID, blobID string, cleanChunks bool) {
	if cleanChunks {
		if err := s.vectors.DeleteByDocument(ctx, docID); err != nil {
			slog.Error("rollback: orphan chunks left in index, sweep will reclaim",
				"document_id", docID, "error", err)
		}
	}
	if err := s.meta.Delete(ctx, docID); err != nil {
		slog.Error("rollback: failed to delete document record", "document_id", docID, "error", err)
	}
	s.deleteBlob(ctx, blobID)
}

func (s *Service) deleteBlob(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(ctx, s.bucket, blobID); err != nil {
		slog.Error("failed to delete blob", "blob_id", blobID, "error", err)
	}
}

type UpdateRequest struct {
	Tags        []string // nil = unchanged; empty set rejected
	AccessLevel string   // "" = unchanged
}

// Update writes new tags and/or access level to the metadata store, then
// propagates the denormalized copies onto every chunk. The document record
// is the source of truth: propagation failure does not roll it back, it is
// logged and retried in the background.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.UpdateSummary, error) {
	if req.Tags == nil && req.AccessLevel == "" {
		return nil, apperr.Validation("nothing to update")
	}
	if req.Tags != nil && len(req.Tags) == 0 {
		return nil, apperr.Validation("tags must not be empty")
	}

	patch := MetadataPatch{Tags: req.Tags}
	if req.AccessLevel != "" {
		rank, err := models.AccessRank(req.AccessLevel)
		if err != nil {
			return nil, apperr.Validation("invalid access level %q", req.AccessLevel)
		}
		patch.AccessLevel = req.AccessLevel
		patch.AccessLevelNum = rank
	}

	doc, err := s.meta.Update(ctx, id, patch)
	if err != nil {
		return nil, apperr.Dependency("update document", err)
	}

	summary := &models.UpdateSummary{
		DocumentID:    id,
		TagsUpdated:   req.Tags != nil,
		AccessUpdated: req.AccessLevel != "",
		Propagated:    true,
	}

	if _, err := s.vectors.UpdateDocumentMetadata(ctx, id, vectorstore.MetadataUpdate{
		Tags:           strings.Join(doc.Tags, ", "),
		AccessLevel:    doc.AccessLevel,
		AccessLevelNum: doc.AccessLevelNum,
	}); err != nil {
		summary.Propagated = false
		slog.Error("chunk metadata propagation failed, queueing resync", "document_id", id, "error", err)
		if s.resync != nil {
			if qerr := s.resync.EnqueueChunkResync(id.String()); qerr != nil {
				slog.Error("failed to enqueue chunk resync", "document_id", id, "error", qerr)
			}
		}
	}

	s.invalidateResults(ctx)

	return summary, nil
}

// Resync re-propagates a document's current metadata onto its chunks.
// Called by the background worker.
func (s *Service) Resync(ctx context.Context, id uuid.UUID) error {
	doc, err := s.meta.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load document for resync: %w", err)
	}

	n, err := s.vectors.UpdateDocumentMetadata(ctx, id, vectorstore.MetadataUpdate{
		Tags:           strings.Join(doc.Tags, ", "),
		AccessLevel:    doc.AccessLevel,
		AccessLevelNum: doc.AccessLevelNum,
	})
	if err != nil {
		return fmt.Errorf("resync chunk metadata: %w", err)
	}

	s.invalidateResults(ctx)

	slog.Info("chunk metadata resynced", "document_id", id, "chunks", n)
	return nil
}

// Delete removes a document and everything it owns. Chunks go first so a
// partial failure can never leave readable chunks for a record that is
// gone; a blob-delete failure is tolerated (logged) because the blob is
// unreachable once the record is removed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.meta.GetByID(ctx, id)
	if err != nil {
		return apperr.Dependency("get document", err)
	}

	if err := s.vectors.DeleteByDocument(ctx, id); err != nil {
		return apperr.Dependency("delete chunks", err)
	}

	s.invalidateResults(ctx)
	s.deleteBlob(ctx, doc.BlobID)

	if err := s.meta.Delete(ctx, id); err != nil {
		return apperr.Dependency("delete document", err)
	}

	slog.Info("document deleted", "document_id", id, "filename", doc.Filename)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return s.meta.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Document, error) {
	return s.meta.List(ctx, limit, offset)
}
