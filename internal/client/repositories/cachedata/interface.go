package cachedata

import (
	"context"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
)

// Repository stores opaque request→response pairs scoped to named, versioned
// cache partitions. Writes for a given (partition, key) are last-writer-wins.
type Repository interface {
	Put(ctx context.Context, e *models.CacheEntry) error
	Get(ctx context.Context, partition, requestKey string) (*models.CacheEntry, error)
	Partitions(ctx context.Context) ([]string, error)
	DeletePartition(ctx context.Context, name string) error
	PurgeExcept(ctx context.Context, keep []string) ([]string, error)
	Clear(ctx context.Context) error
}
