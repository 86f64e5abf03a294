package models

import (
	"strings"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
)

// MutationStatus tracks a pending mutation through its lifecycle.
type MutationStatus string

const (
	StatusPending MutationStatus = "pending"
	StatusSyncing MutationStatus = "syncing"
	StatusError   MutationStatus = "error"
)

// StoryPayload is the content of a locally originated story creation request.
// The photo travels as raw bytes; name and MIME type are kept so the
// multipart part can be reconstructed at submission time.
type StoryPayload struct {
	Description string
	Lat         *float64
	Lon         *float64
	Photo       []byte
	PhotoName   string
	PhotoType   string
}

// Validate rejects payloads that would be refused by the server anyway,
// before any storage or network operation is attempted.
func (p *StoryPayload) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return common.ErrValidation
	}
	if (p.Lat == nil) != (p.Lon == nil) {
		return common.ErrValidation
	}
	return nil
}

// PendingMutation is a not-yet-confirmed story creation sitting in the
// write-ahead queue. Seq is assigned by the store at enqueue time and never
// reused. IdempotencyKey is generated client-side so a resubmission after a
// crash de-duplicates on the server.
type PendingMutation struct {
	Seq            int64
	IdempotencyKey string
	Payload        StoryPayload
	Status         MutationStatus
	Attempts       int
	LastError      string
	CreatedAt      time.Time
}
