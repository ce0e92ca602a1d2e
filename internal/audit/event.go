package audit

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ChangeEvent describes one successful versioned write: the before/after
// sequence numbers and the new payload. Events are emitted only for writes
// that actually changed state, never for no-ops.
type ChangeEvent struct {
	// ID identifies the event itself for downstream consumers. It is an
	// opaque identifier, not a uniqueness or ordering source.
	ID          string          `json:"id"`
	IdentityKey string          `json:"identityKey"`
	EntityType  string          `json:"entityType"`
	TenantID    string          `json:"tenantId"`
	BusinessKey string          `json:"businessKey"`
	OldSeq      uint64          `json:"oldSeq,omitempty"`
	NewSeq      uint64          `json:"newSeq"`
	Payload     json.RawMessage `json:"payload"`
	Actor       string          `json:"actor"`
	SourceTag   string          `json:"sourceTag,omitempty"`
	TimestampMs int64           `json:"timestampMs"`
}

// NewEventID returns a fresh event identifier.
func NewEventID() string { return uuid.NewString() }
