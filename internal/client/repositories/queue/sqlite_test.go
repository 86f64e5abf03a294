package queue

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE pending_mutations (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  idempotency_key TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  lat REAL,
  lon REAL,
  photo BLOB,
  photo_name TEXT NOT NULL DEFAULT '',
  photo_type TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  attempts INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func mutation(key, description string) *models.PendingMutation {
	return &models.PendingMutation{
		IdempotencyKey: key,
		Payload: models.StoryPayload{
			Description: description,
			Photo:       []byte{0xff, 0xd8, 0xff},
			PhotoName:   "photo.jpg",
			PhotoType:   "image/jpeg",
		},
		Status:    models.StatusPending,
		CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestEnqueue_AssignsSequentialIDs(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m1 := mutation("k1", "first")
	m2 := mutation("k2", "second")
	require.NoError(t, r.Enqueue(ctx, m1))
	require.NoError(t, r.Enqueue(ctx, m2))
	assert.Greater(t, m2.Seq, m1.Seq)

	got, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Payload.Description)
	assert.Equal(t, "second", got[1].Payload.Description)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, got[0].Payload.Photo)
}

func TestEnqueue_DuplicateKeyFailsLoudly(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, mutation("same", "one")))
	err := r.Enqueue(ctx, mutation("same", "two"))
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestListPending_IncludesStaleSyncing(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m1 := mutation("k1", "interrupted")
	m2 := mutation("k2", "fresh")
	m3 := mutation("k3", "failed")
	require.NoError(t, r.Enqueue(ctx, m1))
	require.NoError(t, r.Enqueue(ctx, m2))
	require.NoError(t, r.Enqueue(ctx, m3))

	require.NoError(t, r.MarkSyncing(ctx, m1.Seq))
	require.NoError(t, r.MarkError(ctx, m3.Seq, "server rejected"))

	got, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, m1.Seq, got[0].Seq)
	assert.Equal(t, m2.Seq, got[1].Seq)
}

func TestMarkError_IncrementsAttempts(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m := mutation("k1", "flaky")
	require.NoError(t, r.Enqueue(ctx, m))

	require.NoError(t, r.MarkError(ctx, m.Seq, "timeout"))
	require.NoError(t, r.MarkError(ctx, m.Seq, "connection refused"))

	got, err := r.GetBySeq(ctx, m.Seq)
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, got.Status)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "connection refused", got.LastError)
}

func TestMarkSyncing_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	err := r.MarkSyncing(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResetErrors(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m1 := mutation("k1", "ok")
	m2 := mutation("k2", "broken")
	require.NoError(t, r.Enqueue(ctx, m1))
	require.NoError(t, r.Enqueue(ctx, m2))
	require.NoError(t, r.MarkError(ctx, m2.Seq, "boom"))

	n, err := r.ResetErrors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := r.GetBySeq(ctx, m2.Seq)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Empty(t, got.LastError)
	assert.Equal(t, 1, got.Attempts) // attempts survive the reset

	failed, err := r.CountByStatus(ctx, models.StatusError)
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
}

func TestQueueDurability_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	var seqs []int64
	for _, d := range []string{"one", "two", "three"} {
		m := mutation("key-"+d, d)
		require.NoError(t, r.Enqueue(ctx, m))
		seqs = append(seqs, m.Seq)
	}
	require.NoError(t, db.Close())

	// simulated restart: reopen the same file
	db, err = sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r = NewSQLiteRepository(db)
	got, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, seqs[i], m.Seq)
	}

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
