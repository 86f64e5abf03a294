package queue

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

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Enqueue inserts a new mutation and fills in its assigned sequence id.
func (r *SQLiteRepository) Enqueue(ctx context.Context, m *models.PendingMutation) error {
	query := `INSERT INTO pending_mutations
			(idempotency_key, description, lat, lon, photo, photo_name, photo_type, status, attempts, last_error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		m.IdempotencyKey, m.Payload.Description, m.Payload.Lat, m.Payload.Lon,
		m.Payload.Photo, m.Payload.PhotoName, m.Payload.PhotoType,
		string(m.Status), m.Attempts, m.LastError, m.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to enqueue mutation: %w: %w", common.ErrStorage, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read mutation seq: %w: %w", common.ErrStorage, err)
	}
	m.Seq = seq
	return nil
}

// ListPending returns mutations awaiting a sync attempt in FIFO order.
// Stale 'syncing' rows left by an interrupted pass are treated as pending
// again so a restart picks them up.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.PendingMutation, error) {
	return r.list(ctx, `WHERE status IN (?, ?)`, string(models.StatusPending), string(models.StatusSyncing))
}

// ListByStatus returns mutations with the given status in FIFO order.
func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.MutationStatus) ([]models.PendingMutation, error) {
	return r.list(ctx, `WHERE status = ?`, string(status))
}

func (r *SQLiteRepository) list(ctx context.Context, where string, args ...any) ([]models.PendingMutation, error) {
	query := `SELECT seq, idempotency_key, description, lat, lon, photo, photo_name, photo_type, status, attempts, last_error, created_at
			FROM pending_mutations ` + where + ` ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mutations: %w: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []models.PendingMutation
	for rows.Next() {
		m, err := scanMutation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mutation row: %w: %w", common.ErrStorage, err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mutation rows: %w: %w", common.ErrStorage, err)
	}
	return result, nil
}

// GetBySeq returns a single mutation, or common.ErrNotFound.
func (r *SQLiteRepository) GetBySeq(ctx context.Context, seq int64) (*models.PendingMutation, error) {
	query := `SELECT seq, idempotency_key, description, lat, lon, photo, photo_name, photo_type, status, attempts, last_error, created_at
			FROM pending_mutations WHERE seq = ?`
	row := r.db.QueryRowContext(ctx, query, seq)

	m, err := scanMutation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mutation %d: %w", seq, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mutation: %w: %w", common.ErrStorage, err)
	}
	return m, nil
}

// MarkSyncing flags a mutation as in flight for the current pass.
func (r *SQLiteRepository) MarkSyncing(ctx context.Context, seq int64) error {
	return r.setStatus(ctx, seq, `UPDATE pending_mutations SET status = ? WHERE seq = ?`,
		string(models.StatusSyncing), seq)
}

// MarkError records a failed attempt: status becomes 'error', the attempt
// counter is incremented and the message is kept for the caller to inspect.
func (r *SQLiteRepository) MarkError(ctx context.Context, seq int64, lastError string) error {
	return r.setStatus(ctx, seq,
		`UPDATE pending_mutations SET status = ?, attempts = attempts + 1, last_error = ? WHERE seq = ?`,
		string(models.StatusError), lastError, seq)
}

func (r *SQLiteRepository) setStatus(ctx context.Context, seq int64, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update mutation: %w: %w", common.ErrStorage, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w: %w", common.ErrStorage, err)
	}
	if ra != 1 {
		return fmt.Errorf("mutation %d: %w", seq, common.ErrNotFound)
	}
	return nil
}

// ResetErrors moves every 'error' mutation back to 'pending' and reports how
// many rows changed.
func (r *SQLiteRepository) ResetErrors(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE pending_mutations SET status = ?, last_error = '' WHERE status = ?`,
		string(models.StatusPending), string(models.StatusError))
	if err != nil {
		return 0, fmt.Errorf("failed to reset failed mutations: %w: %w", common.ErrStorage, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w: %w", common.ErrStorage, err)
	}
	return int(ra), nil
}

// Delete removes a mutation after confirmed remote acceptance.
func (r *SQLiteRepository) Delete(ctx context.Context, seq int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_mutations WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to delete mutation: %w: %w", common.ErrStorage, err)
	}
	return nil
}

// Count returns the total number of queued mutations, any status.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_mutations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count mutations: %w: %w", common.ErrStorage, err)
	}
	return n, nil
}

// CountByStatus returns the number of queued mutations with the given status.
func (r *SQLiteRepository) CountByStatus(ctx context.Context, status models.MutationStatus) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_mutations WHERE status = ?`, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count mutations: %w: %w", common.ErrStorage, err)
	}
	return n, nil
}

func scanMutation(scan func(dest ...any) error) (*models.PendingMutation, error) {
	var (
		m         models.PendingMutation
		lat, lon  sql.NullFloat64
		status    string
		createdAt string
	)
	if err := scan(&m.Seq, &m.IdempotencyKey, &m.Payload.Description, &lat, &lon,
		&m.Payload.Photo, &m.Payload.PhotoName, &m.Payload.PhotoType,
		&status, &m.Attempts, &m.LastError, &createdAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		m.Payload.Lat = &lat.Float64
	}
	if lon.Valid {
		m.Payload.Lon = &lon.Float64
	}
	m.Status = models.MutationStatus(status)
	var err error
	if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}
