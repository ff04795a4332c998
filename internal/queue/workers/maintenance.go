package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/Aireenelz/rag-employee-learning-system/internal/document"
	"github.com/Aireenelz/rag-employee-learning-system/internal/queue"
	"github.com/Aireenelz/rag-employee-learning-system/internal/vectorstore"
)

// MaintenanceWorker repairs the vector index in the background: it retries
// failed metadata propagation and reclaims chunks orphaned by rollbacks.
type MaintenanceWorker struct {
	docSvc  *document.Service
	vectors vectorstore.VectorStore
}

func NewMaintenanceWorker(docSvc *document.Service, vectors vectorstore.VectorStore) *MaintenanceWorker {
	return &MaintenanceWorker{
		docSvc:  docSvc,
		vectors: vectors,
	}
}

// HandleChunkResync re-reads the document record and rewrites its chunks'
// denormalized metadata. Returning an error lets asynq retry with backoff.
func (w *MaintenanceWorker) HandleChunkResync(ctx context.Context, t *asynq.Task) error {
	var payload queue.ChunkResyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	slog.Info("resyncing chunk metadata", "document_id", docID)
	return w.docSvc.Resync(ctx, docID)
}

// HandleOrphanSweep deletes chunks whose document record no longer exists.
func (w *MaintenanceWorker) HandleOrphanSweep(ctx context.Context, t *asynq.Task) error {
	orphans, err := w.vectors.OrphanDocumentIDs(ctx)
	if err != nil {
		return fmt.Errorf("list orphan documents: %w", err)
	}
	if len(orphans) == 0 {
		slog.Debug("orphan sweep found nothing to reclaim")
		return nil
	}

	for _, docID := range orphans {
		if err := w.vectors.DeleteByDocument(ctx, docID); err != nil {
			return fmt.Errorf("delete orphan chunks for %s: %w", docID, err)
		}
		slog.Info("reclaimed orphan chunks", "document_id", docID)
	}

	slog.Info("orphan sweep complete", "documents", len(orphans))
	return nil
}
