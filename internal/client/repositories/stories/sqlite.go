package stories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DaffaAhmadSM/storymap-cli/internal/client/models"
	"github.com/DaffaAhmadSM/storymap-cli/internal/common"
	"github.com/DaffaAhmadSM/storymap-cli/internal/dbx"
)

// timeLayout is a fixed-width UTC format so stored timestamps compare
// correctly as strings in SQL range filters and ORDER BY.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// Put upserts a story by id. The whole record is replaced on conflict.
func (r *SQLiteRepository) Put(ctx context.Context, s *models.Story) error {
	query := `INSERT INTO stories (id, name, description, photo_url, lat, lon, has_location, created_at, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				description = excluded.description,
				photo_url = excluded.photo_url,
				lat = excluded.lat,
				lon = excluded.lon,
				has_location = excluded.has_location,
				created_at = excluded.created_at,
				cached_at = excluded.cached_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.PhotoURL, s.Lat, s.Lon, s.HasLocation,
		formatTime(s.CreatedAt), formatTime(s.CachedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert story: %w: %w", common.ErrStorage, err)
	}
	return nil
}

// PutAll upserts a batch of stories. Each write is individually atomic; wrap
// the call in dbx.WithTx if all-or-nothing semantics are needed.
func (r *SQLiteRepository) PutAll(ctx context.Context, items []models.Story) error {
	for i := range items {
		if err := r.Put(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns a single cached story, or common.ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	query := `SELECT id, name, description, photo_url, lat, lon, has_location, created_at, cached_at
			FROM stories WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanStory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("story %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story: %w: %w", common.ErrStorage, err)
	}
	return s, nil
}

// GetAll lists every cached story ordered by creation time descending.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Story, error) {
	return r.Query(ctx, models.ListQuery{SortBy: models.SortByNewest})
}

// Query composes, in order: case-insensitive substring match against name and
// description, location-presence filter, inclusive creation date range, then
// a stable sort with ties broken by id.
func (r *SQLiteRepository) Query(ctx context.Context, q models.ListQuery) ([]models.Story, error) {
	query := `SELECT id, name, description, photo_url, lat, lon, has_location, created_at, cached_at
			FROM stories WHERE 1=1`
	var args []any

	if q.Search != "" {
		query += ` AND (instr(lower(name), lower(?)) > 0 OR instr(lower(description), lower(?)) > 0)`
		args = append(args, q.Search, q.Search)
	}
	if q.HasLocation != nil {
		query += ` AND has_location = ?`
		args = append(args, *q.HasLocation)
	}
	if q.DateFrom != nil {
		query += ` AND created_at >= ?`
		args = append(args, formatTime(*q.DateFrom))
	}
	if q.DateTo != nil {
		query += ` AND created_at <= ?`
		args = append(args, formatTime(*q.DateTo))
	}

	switch q.SortBy {
	case models.SortByName:
		if q.Order == models.OrderDesc {
			query += ` ORDER BY lower(name) DESC, id ASC`
		} else {
			query += ` ORDER BY lower(name) ASC, id ASC`
		}
	case models.SortByOldest:
		query += ` ORDER BY created_at ASC, id ASC`
	default: // newest
		query += ` ORDER BY created_at DESC, id ASC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []models.Story
	for rows.Next() {
		s, err := scanStory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w: %w", common.ErrStorage, err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate story rows: %w: %w", common.ErrStorage, err)
	}
	return result, nil
}

// Delete removes a cached story. Deleting an absent id is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete story: %w: %w", common.ErrStorage, err)
	}
	return nil
}

// Clear empties the content cache.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM stories`); err != nil {
		return fmt.Errorf("failed to clear stories: %w: %w", common.ErrStorage, err)
	}
	return nil
}

// Count returns the number of cached stories.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stories: %w: %w", common.ErrStorage, err)
	}
	return n, nil
}

func scanStory(scan func(dest ...any) error) (*models.Story, error) {
	var (
		s         models.Story
		lat, lon  sql.NullFloat64
		createdAt string
		cachedAt  string
	)
	if err := scan(&s.ID, &s.Name, &s.Description, &s.PhotoURL, &lat, &lon, &s.HasLocation, &createdAt, &cachedAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		s.Lat = &lat.Float64
	}
	if lon.Valid {
		s.Lon = &lon.Float64
	}
	var err error
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.CachedAt, err = parseTime(cachedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
