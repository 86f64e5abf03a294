package sync

import "github.com/DaffaAhmadSM/storymap-cli/internal/client/models"

// EventType identifies a sync lifecycle event.
type EventType string

const (
	EventQueued       EventType = "queued"
	EventSyncStart    EventType = "sync-start"
	EventSyncProgress EventType = "sync-progress"
	EventSyncComplete EventType = "sync-complete"
	EventSyncError    EventType = "sync-error"
)

// Progress is the payload of a sync-progress event.
type Progress struct {
	Current int
	Total   int
	Success int
	Failed  int
}

// MutationError pairs a failed mutation with its error message.
type MutationError struct {
	Seq     int64
	Message string
}

// Result summarizes one sync pass.
type Result struct {
	Synced int
	Failed int
	Errors []MutationError
}

// Event is delivered to every registered listener. Exactly one payload field
// is set, matching Type.
type Event struct {
	Type     EventType
	Mutation *models.PendingMutation // queued
	Progress *Progress               // sync-progress
	Result   *Result                 // sync-complete
	Err      string                  // sync-error
}

// Listener receives lifecycle events. Listeners run synchronously on the
// coordinator's goroutine; a panicking listener is recovered and logged so it
// cannot break a sync pass.
type Listener func(Event)

// Status is the answer to a status query.
type Status struct {
	IsSyncing    bool
	PendingCount int
	FailedCount  int
	CanSync      bool
}
