package lookup

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"longbox/internal/reconcile"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS lookup_cache (
    service     TEXT NOT NULL,
    identity    TEXT NOT NULL,
    record      TEXT NOT NULL,
    fetched_at  INTEGER NOT NULL,
    PRIMARY KEY (service, identity)
);
`

// Cache fronts a gateway with a sqlite-backed response cache so reruns
// over a large library do not hammer the remote services. Only matches
// are cached; misses go back to the network.
type Cache struct {
	db   *sql.DB
	next Gateway
	ttl  time.Duration
}

// NewCache opens (or creates) the cache database at path.
func NewCache(path string, next Gateway, ttl time.Duration) (*Cache, error) {
	if next == nil {
		return nil, errors.New("lookup cache needs a gateway to front")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open lookup cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init lookup cache: %w", err)
	}
	return &Cache{db: db, next: next, ttl: ttl}, nil
}

func (c *Cache) Name() string { return c.next.Name() }

func (c *Cache) Search(ctx context.Context, id Identity) (*reconcile.Record, error) {
	if rec := c.load(ctx, id); rec != nil {
		return rec, nil
	}
	rec, err := c.next.Search(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}
	c.store(ctx, id, rec)
	return rec, nil
}

func (c *Cache) load(ctx context.Context, id Identity) *reconcile.Record {
	var raw string
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT record, fetched_at FROM lookup_cache WHERE service = ? AND identity = ?`,
		c.next.Name(), id.Key()).Scan(&raw, &fetchedAt)
	if err != nil {
		return nil
	}
	if time.Since(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil
	}
	var rec reconcile.Record
	if json.Unmarshal([]byte(raw), &rec) != nil {
		return nil
	}
	return &rec
}

func (c *Cache) store(ctx context.Context, id Identity, rec *reconcile.Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_, _ = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO lookup_cache (service, identity, record, fetched_at) VALUES (?, ?, ?, ?)`,
		c.next.Name(), id.Key(), string(raw), time.Now().Unix())
}

// Close releases the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
