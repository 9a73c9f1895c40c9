package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Markers exposes the last-processed marker store the staleness check
// runs against. It is the seam tests use to inject an in-memory fake.
type Markers interface {
	Marker(ctx context.Context, sourcePath string) (time.Time, bool, error)
	SetMarker(ctx context.Context, sourcePath string, processedAt time.Time) error
}

// Marker returns the recorded processing time for a source path.
func (s *Store) Marker(ctx context.Context, sourcePath string) (time.Time, bool, error) {
	var processedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT processed_at FROM markers WHERE source_path = ?", sourcePath,
	).Scan(&processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read marker: %w", err)
	}
	return time.Unix(0, processedAt).UTC(), true, nil
}

// SetMarker records that a source path was fully processed at the given
// time. Markers keep nanosecond precision so a marker taken from a file's
// ModTime compares equal to that ModTime on the next run.
func (s *Store) SetMarker(ctx context.Context, sourcePath string, processedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO markers (source_path, processed_at) VALUES (?, ?)
         ON CONFLICT(source_path) DO UPDATE SET processed_at = excluded.processed_at`,
		sourcePath, processedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("set marker: %w", err)
	}
	return nil
}

// MemoryMarkers is an in-memory Markers implementation for tests.
type MemoryMarkers struct {
	mu    sync.Mutex
	marks map[string]time.Time
}

// NewMemoryMarkers builds an empty in-memory marker store.
func NewMemoryMarkers() *MemoryMarkers {
	return &MemoryMarkers{marks: make(map[string]time.Time)}
}

func (m *MemoryMarkers) Marker(_ context.Context, sourcePath string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.marks[sourcePath]
	return at, ok, nil
}

func (m *MemoryMarkers) SetMarker(_ context.Context, sourcePath string, processedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[sourcePath] = processedAt.UTC()
	return nil
}
