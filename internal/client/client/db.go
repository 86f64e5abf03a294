package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/migrations"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/repositories/cachedata"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/repositories/queue"
	"github.com/DaffaAhmadSM/storymap-cli/internal/client/repositories/stories"
	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
	"github.com/DaffaAhmadSM/storymap-cli/internal/dbx"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the local store: the story content cache, the
// pending-mutation log and the request-cache partitions, all backed by one
// SQLite database.
type Repositories struct {
	Stories stories.Repository
	Queue   queue.Repository
	Cache   cachedata.Repository
	DB      *sql.DB
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the client database at dsn, applies
// migrations, and wires the repositories. A store that cannot be opened or
// migrated surfaces as common.ErrUnsupported: there is no fallback once
// persistence itself is unavailable, so collaborators should disable offline
// features rather than retry.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnsupported, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrUnsupported, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrUnsupported, err)
	}

	return &Repositories{
		Stories: stories.NewSQLiteRepository(db),
		Queue:   queue.NewSQLiteRepository(db),
		Cache:   cachedata.NewSQLiteRepository(db),
		DB:      db,
	}, nil
}

// Promote moves a confirmed submission from the pending-mutation log into
// the content cache in one transaction, so the two tables never both claim
// the same record and a crash cannot lose it from both.
func (r *Repositories) Promote(ctx context.Context, seq int64, s *models.Story) error {
	return dbx.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := queue.NewSQLiteRepository(tx).Delete(ctx, seq); err != nil {
			return err
		}
		return stories.NewSQLiteRepository(tx).Put(ctx, s)
	})
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
