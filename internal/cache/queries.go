package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-match-stats/internal/model"
)

// Entry describes one stored snapshot.
type Entry struct {
	PageKey  string
	Version  string
	StoredAt time.Time
	Rows     int
	Expired  bool
}

// Get returns the snapshot for pageKey. With checkExpiry, entries older than
// the TTL are a miss. Decode and query failures are logged and reported as a
// miss as well.
func (c *Cache) Get(pageKey string, checkExpiry bool) ([]model.Record, bool) {
	var (
		version  string
		storedAt int64
		payload  []byte
	)
	err := c.conn.QueryRow(`
		SELECT version, stored_at, payload FROM cache_entries WHERE page_key = ?`, pageKey).
		Scan(&version, &storedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		c.opts.Logger.Warn("cache read failed", "page", pageKey, "err", err)
		return nil, false
	}
	if version != c.opts.Version {
		c.opts.Logger.Debug("cache version mismatch", "page", pageKey, "stored", version, "want", c.opts.Version)
		return nil, false
	}
	if checkExpiry && c.expired(storedAt) {
		return nil, false
	}
	var records []model.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		c.opts.Logger.Warn("cache entry corrupt", "page", pageKey, "err", err)
		return nil, false
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, true
}

// Set stores data as the snapshot for pageKey, replacing any previous one.
func (c *Cache) Set(pageKey string, data []model.Record) error {
	if data == nil {
		data = []model.Record{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = c.conn.Exec(`
		INSERT OR REPLACE INTO cache_entries(page_key, version, stored_at, row_count, payload)
		VALUES (?, ?, ?, ?, ?)`,
		pageKey, c.opts.Version, c.opts.Now().UnixMilli(), len(data), payload,
	)
	if err != nil {
		return fmt.Errorf("store snapshot for %s: %w", pageKey, err)
	}
	return nil
}

// Clear removes the snapshot for pageKey. Clearing a missing key is not an error.
func (c *Cache) Clear(pageKey string) error {
	if _, err := c.conn.Exec(`DELETE FROM cache_entries WHERE page_key = ?`, pageKey); err != nil {
		return fmt.Errorf("clear %s: %w", pageKey, err)
	}
	return nil
}

// Purge removes every snapshot.
func (c *Cache) Purge() error {
	if _, err := c.conn.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}

// Entries lists the stored snapshots ordered by page key.
func (c *Cache) Entries() ([]Entry, error) {
	rows, err := c.conn.Query(`
		SELECT page_key, version, stored_at, row_count
		FROM cache_entries ORDER BY page_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var storedAt int64
		if err := rows.Scan(&e.PageKey, &e.Version, &storedAt, &e.Rows); err != nil {
			return nil, err
		}
		e.StoredAt = time.UnixMilli(storedAt)
		e.Expired = c.expired(storedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *Cache) expired(storedAt int64) bool {
	return c.opts.Now().Sub(time.UnixMilli(storedAt)) > c.opts.TTL
}

func (c *Cache) dropStaleVersions() error {
	_, err := c.conn.Exec(`DELETE FROM cache_entries WHERE version != ?`, c.opts.Version)
	return err
}

// QueryRaw runs an arbitrary read query against the cache database and
// returns the column names and every row rendered as text.
func (c *Cache) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := c.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch v := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(v)
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
