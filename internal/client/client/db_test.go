package client

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestInitDatabase_MigratesAndWires(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	repos, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	// all three tables exist and are usable
	s := models.Story{ID: "s1", Name: "Budi", CreatedAt: time.Now().UTC()}
	s.Normalize(time.Now().UTC())
	require.NoError(t, repos.Stories.Put(ctx, &s))

	m := &models.PendingMutation{
		IdempotencyKey: "k1",
		Payload:        models.StoryPayload{Description: "queued"},
		Status:         models.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repos.Queue.Enqueue(ctx, m))
	assert.Positive(t, m.Seq)

	require.NoError(t, repos.Cache.Put(ctx, &models.CacheEntry{
		Partition:  "static-v1",
		RequestKey: "/index.html",
		Status:     200,
		Body:       []byte("shell"),
		StoredAt:   time.Now().UTC(),
	}))
}

func TestInitDatabase_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	repos, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	m := &models.PendingMutation{
		IdempotencyKey: "k1",
		Payload:        models.StoryPayload{Description: "survives restart"},
		Status:         models.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repos.Queue.Enqueue(ctx, m))
	require.NoError(t, repos.Close())

	// migrations are idempotent across restarts
	repos, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	got, err := repos.Queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "survives restart", got[0].Payload.Description)
}
