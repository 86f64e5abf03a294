// Package cachedata persists the request-interception cache: response bytes
// keyed by request identity, bucketed into named partitions so a version
// rotation can drop a whole partition at once.
package cachedata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
	"github.com/DaffaAhmadSM/storymap-cli/internal/dbx"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Put upserts a cache entry. The previous body for the same request identity
// is replaced.
func (r *SQLiteRepository) Put(ctx context.Context, e *models.CacheEntry) error {
	query := `INSERT INTO cache_entries (partition, request_key, status, content_type, body, stored_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(partition, request_key) DO UPDATE SET status = excluded.status,
				content_type = excluded.content_type,
				body = excluded.body,
				stored_at = excluded.stored_at
	`
	_, err := r.db.ExecContext(ctx, query,
		e.Partition, e.RequestKey, e.Status, e.ContentType, e.Body,
		e.StoredAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w: %w", common.ErrStorage, err)
	}
	return nil
}

// Get returns the entry for a request identity, or common.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, partition, requestKey string) (*models.CacheEntry, error) {
	query := `SELECT partition, request_key, status, content_type, body, stored_at
			FROM cache_entries WHERE partition = ? AND request_key = ?`
	row := r.db.QueryRowContext(ctx, query, partition, requestKey)

	var (
		e        models.CacheEntry
		storedAt string
	)
	err := row.Scan(&e.Partition, &e.RequestKey, &e.Status, &e.ContentType, &e.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cache entry %s/%s: %w", partition, requestKey, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w: %w", common.ErrStorage, err)
	}
	if e.StoredAt, err = parseTime(storedAt); err != nil {
		return nil, fmt.Errorf("failed to parse cache entry time: %w: %w", common.ErrStorage, err)
	}
	return &e, nil
}

// Partitions lists the distinct partition names currently present.
func (r *SQLiteRepository) Partitions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT partition FROM cache_entries ORDER BY partition`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan partition name: %w: %w", common.ErrStorage, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate partition names: %w: %w", common.ErrStorage, err)
	}
	return names, nil
}

// DeletePartition drops every entry in the named partition.
func (r *SQLiteRepository) DeletePartition(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE partition = ?`, name); err != nil {
		return fmt.Errorf("failed to delete partition: %w: %w", common.ErrStorage, err)
	}
	return nil
}

// PurgeExcept deletes every partition whose name is not in keep and returns
// the names that were removed. Used at activation time to rotate versions.
func (r *SQLiteRepository) PurgeExcept(ctx context.Context, keep []string) ([]string, error) {
	names, err := r.Partitions(ctx)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range names {
		if slices.Contains(keep, name) {
			continue
		}
		if err := r.DeletePartition(ctx, name); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// Clear empties the whole request cache across all partitions.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("failed to clear cache entries: %w: %w", common.ErrStorage, err)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
