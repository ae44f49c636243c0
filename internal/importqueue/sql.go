package importqueue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/evcraddock/homefront/internal/db"
)

// SQLQueue stores one row per entry in the imports table. Appends are plain
// inserts, so concurrent submissions never overwrite each other.
type SQLQueue struct {
	db *db.DB
}

// NewSQLQueue creates a queue backed by the imports table.
func NewSQLQueue(d *db.DB) *SQLQueue {
	return &SQLQueue{db: d}
}

const importColumns = `id, status, source_url, listing_draft, confidence, created_at`

// Append inserts e.
func (q *SQLQueue) Append(ctx context.Context, e Entry) error {
	var confidence interface{}
	if len(e.Confidence) > 0 {
		confidence = string(e.Confidence)
	}

	_, err := q.db.ExecContext(ctx, q.db.Rebind(
		`INSERT INTO imports (id, status, source_url, listing_draft, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		e.ID, e.Status, e.SourceURL, string(e.ListingDraft), confidence, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting import: %w", err)
	}
	return nil
}

// List returns entries in insertion order.
func (q *SQLQueue) List(ctx context.Context) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM imports ORDER BY seq", importColumns))
	if err != nil {
		return nil, fmt.Errorf("listing imports: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating imports: %w", err)
	}
	return entries, nil
}

// Get returns the most recently inserted entry with the given ID.
func (q *SQLQueue) Get(ctx context.Context, id string) (*Entry, error) {
	query := fmt.Sprintf("SELECT %s FROM imports WHERE id = ? ORDER BY seq DESC LIMIT 1", importColumns)
	e, err := scanEntry(q.db.QueryRowContext(ctx, q.db.Rebind(query), id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying import %s: %w", id, err)
	}
	return e, nil
}

// SetStatus updates the most recently inserted entry with the given ID.
func (q *SQLQueue) SetStatus(ctx context.Context, id, status string) error {
	result, err := q.db.ExecContext(ctx, q.db.Rebind(
		`UPDATE imports SET status = ?
		WHERE seq = (SELECT MAX(seq) FROM imports WHERE id = ?)`),
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating import status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Prune deletes entries created before the cut-off.
func (q *SQLQueue) Prune(ctx context.Context, before time.Time, includePending bool) (int, error) {
	query := "DELETE FROM imports WHERE created_at < ?"
	args := []interface{}{before.UTC()}
	if !includePending {
		query += " AND status <> ?"
		args = append(args, StatusPending)
	}

	result, err := q.db.ExecContext(ctx, q.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("pruning imports: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(rows), nil
}

// scanEntry scans an entry from a database row.
func scanEntry(row interface{ Scan(...interface{}) error }) (*Entry, error) {
	var e Entry
	var draft string
	var confidence sql.NullString

	if err := row.Scan(&e.ID, &e.Status, &e.SourceURL, &draft, &confidence, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.ListingDraft = []byte(draft)
	if confidence.Valid {
		e.Confidence = []byte(confidence.String)
	}
	return &e, nil
}
