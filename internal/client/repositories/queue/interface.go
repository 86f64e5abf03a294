package queue

import (
	"context"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
)

// Repository is the pending-mutation log: a write-ahead queue of offline
// story submissions awaiting confirmation. Sequence ids are assigned by the
// store at enqueue time and never reused.
type Repository interface {
	Enqueue(ctx context.Context, m *models.PendingMutation) error
	ListPending(ctx context.Context) ([]models.PendingMutation, error)
	ListByStatus(ctx context.Context, status models.MutationStatus) ([]models.PendingMutation, error)
	GetBySeq(ctx context.Context, seq int64) (*models.PendingMutation, error)
	MarkSyncing(ctx context.Context, seq int64) error
	MarkError(ctx context.Context, seq int64, lastError string) error
	ResetErrors(ctx context.Context) (int, error)
	Delete(ctx context.Context, seq int64) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.MutationStatus) (int, error)
}
