package stories

import (
	"context"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
)

// Repository is the content cache: a read-optimized local copy of remotely
// owned stories. Writes always replace the full record keyed by id.
type Repository interface {
	Put(ctx context.Context, s *models.Story) error
	PutAll(ctx context.Context, items []models.Story) error
	GetByID(ctx context.Context, id string) (*models.Story, error)
	GetAll(ctx context.Context) ([]models.Story, error)
	Query(ctx context.Context, q models.ListQuery) ([]models.Story, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
