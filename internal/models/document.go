package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Access levels form a strict hierarchy. A caller with rank r sees every
// chunk whose rank is <= r.
const (
	AccessPublic   = "public"
	AccessPartner  = "partner"
	AccessInternal = "internal"
	AccessAdmin    = "admin"
)

// NumAccessLevels is the size of the hierarchy; ranks are 0..NumAccessLevels-1.
const NumAccessLevels = 4

var accessRanks = map[string]int{
	AccessPublic:   0,
	AccessPartner:  1,
	AccessInternal: 2,
	AccessAdmin:    3,
}

// AccessRank returns the numeric rank for a canonical access level.
func AccessRank(level string) (int, error) {
	rank, ok := accessRanks[level]
	if !ok {
		return 0, fmt.Errorf("unknown access level %q", level)
	}
	return rank, nil
}

// ValidAccessLevel reports whether level is one of the four canonical values.
func ValidAccessLevel(level string) bool {
	_, ok := accessRanks[level]
	return ok
}

type Document struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Filename       string    `json:"filename" db:"filename"`
	Tags           []string  `json:"tags" db:"tags"`
	AccessLevel    string    `json:"access_level" db:"access_level"`
	AccessLevelNum int       `json:"access_level_num" db:"access_level_num"`
	BlobID         string    `json:"blob_id,omitempty" db:"blob_id"`
	Owner          string    `json:"owner,omitempty" db:"owner"`
	SizeBytes      int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ChunkID builds the deterministic identifier for the i-th chunk of a
// document. Delete and update propagation rely on this layout.
func ChunkID(documentID uuid.UUID, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// SourceInfo identifies a document that contributed context to an answer.
// Built from the chunks' denormalized metadata, so it needs no metadata
// store lookup on the answer path.
type SourceInfo struct {
	DocumentID  string   `json:"document_id"`
	Tags        []string `json:"tags"`
	AccessLevel string   `json:"access_level"`
	Score       float64  `json:"score"`
}

// UpdateSummary reports what a metadata update changed and whether the
// chunk propagation succeeded. Propagated=false means the document record
// was written but the index still holds stale chunk metadata; a resync task
// is queued in that case.
type UpdateSummary struct {
	DocumentID    uuid.UUID `json:"document_id"`
	TagsUpdated   bool      `json:"tags_updated"`
	AccessUpdated bool      `json:"access_updated"`
	Propagated    bool      `json:"chunks_propagated"`
}
