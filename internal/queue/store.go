package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested item does not exist.
var ErrNotFound = errors.New("queue item not found")

// Store manages pipeline state persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the state database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	// Pragmas ride the DSN so every pooled connection gets them; applying
	// them with Exec would configure only the single connection that ran
	// the statement, and concurrent workers on fresh connections would hit
	// SQLITE_BUSY with no timeout.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewItem enqueues a discovered archive. Re-discovering a source path
// resets the existing row so reruns start a fresh lifecycle.
func (s *Store) NewItem(ctx context.Context, sourcePath string) (*Item, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO queue_items (source_path, status, created_at, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(source_path) DO UPDATE SET
             status = excluded.status,
             source_kind = '',
             destination_path = '',
             series = '',
             number = '',
             error_message = '',
             updated_at = excluded.updated_at`,
		sourcePath,
		StatusDiscovered,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return s.GetBySourcePath(ctx, sourcePath)
}

// Update persists the item's mutable fields and bumps updated_at.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("nil item")
	}
	if !item.Status.Valid() {
		return fmt.Errorf("invalid status %q", item.Status)
	}
	item.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET
             source_kind = ?,
             status = ?,
             destination_path = ?,
             series = ?,
             number = ?,
             error_message = ?,
             updated_at = ?
         WHERE id = ?`,
		item.SourceKind,
		item.Status,
		item.DestinationPath,
		item.Series,
		item.Number,
		item.ErrorMessage,
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update item %d: %w", item.ID, ErrNotFound)
	}
	return nil
}

// GetByID fetches a single item.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanItem(row)
}

// GetBySourcePath fetches the item tracking a source archive.
func (s *Store) GetBySourcePath(ctx context.Context, sourcePath string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE source_path = ?", sourcePath)
	return scanItem(row)
}

// List returns items filtered to the given statuses, oldest first. With
// no filter it returns everything.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := selectColumns
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Summarize aggregates item counts per lifecycle state.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM queue_items GROUP BY status")
	if err != nil {
		return Summary{}, fmt.Errorf("summarize queue: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("summarize queue: %w", err)
		}
		summary.Total += count
		switch status {
		case StatusWritten:
			summary.Written += count
		case StatusSkipped:
			summary.Skipped += count
		case StatusFailed:
			summary.Failed += count
		default:
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}

// Clear removes items. With terminalOnly set it keeps anything still in
// flight.
func (s *Store) Clear(ctx context.Context, terminalOnly bool) (int64, error) {
	query := "DELETE FROM queue_items"
	if terminalOnly {
		query += fmt.Sprintf(" WHERE status IN ('%s', '%s', '%s')", StatusWritten, StatusSkipped, StatusFailed)
	}
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return affected, nil
}

const selectColumns = `SELECT id, source_path, source_kind, status, destination_path,
    series, number, error_message, created_at, updated_at FROM queue_items`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var createdAt, updatedAt string
	err := row.Scan(
		&item.ID,
		&item.SourcePath,
		&item.SourceKind,
		&item.Status,
		&item.DestinationPath,
		&item.Series,
		&item.Number,
		&item.ErrorMessage,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	item.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &item, nil
}
