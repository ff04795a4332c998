package queue

const (
	TypeChunkResync = "chunks:resync"
	TypeOrphanSweep = "chunks:sweep"
)

// ChunkResyncPayload re-propagates a document's metadata onto its chunks
// after an inline propagation failure.
type ChunkResyncPayload struct {
	DocumentID string `json:"document_id"`
}

// OrphanSweepPayload triggers a scan for chunks whose document record is
// gone (left behind by a best-effort rollback). Empty on purpose: the sweep
// always covers the whole index.
type OrphanSweepPayload struct{}
