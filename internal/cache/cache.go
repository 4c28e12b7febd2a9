// Package cache is the local snapshot cache for page record sets: a SQLite
// table keyed by page with a fixed time-to-live and a version tag. Any read
// problem (corruption, version bump, expiry) is reported as a miss.
package cache

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DefaultTTL is how long a snapshot stays fresh.
const DefaultTTL = 24 * time.Hour

// Options configures a Cache.
type Options struct {
	TTL     time.Duration
	Version string
	Now     func() time.Time
	Logger  *slog.Logger
}

func (o *Options) defaults() {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Version == "" {
		o.Version = "1"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Cache wraps a sql.DB holding one snapshot per page key.
type Cache struct {
	conn *sql.DB
	opts Options
}

// Open opens (or creates) the cache database at path, applies the schema and
// drops entries written under a different version tag. A file that is not a
// usable database is moved aside to path+".corrupt" and recreated empty.
func Open(path string, opts Options) (*Cache, error) {
	opts.defaults()
	c, err := open(path, opts)
	if err == nil || path == ":memory:" {
		return c, err
	}
	if info, statErr := os.Stat(path); statErr != nil || !info.Mode().IsRegular() {
		return nil, err
	}
	opts.Logger.Warn("cache file unusable, recreating", "path", path, "err", err)
	if mvErr := os.Rename(path, path+".corrupt"); mvErr != nil {
		return nil, fmt.Errorf("%w (move aside: %v)", err, mvErr)
	}
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")
	return open(path, opts)
}

func open(path string, opts Options) (*Cache, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	c := &Cache{conn: conn, opts: opts}
	if err := c.dropStaleVersions(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("drop stale versions: %w", err)
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.opts.TTL }

// Version returns the configured version tag.
func (c *Cache) Version() string { return c.opts.Version }
