package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pable/go-match-stats/internal/model"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func openMemCache(t *testing.T, clk *clock) *Cache {
	t.Helper()
	c, err := Open(":memory:", Options{Version: "v1", Now: clk.now})
	if err != nil {
		t.Fatalf("open in-memory cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sample() []model.Record {
	return []model.Record{
		{"MATCH_ID": "1", "TEAM": "Ahly", "GF": 2, "GA": 0},
		{"MATCH_ID": "2", "TEAM": "Ahly", "GF": 0, "GA": 1},
	}
}

func TestSetAndGet(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := openMemCache(t, clk)

	if _, ok := c.Get("matches", true); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("matches", sample()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("matches", true)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if got[0].Int("GF") != 2 || got[1].String("TEAM") != "Ahly" {
		t.Errorf("round trip mismatch: %v", got)
	}
}

func TestExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := openMemCache(t, clk)
	c.Set("matches", sample())

	clk.t = clk.t.Add(DefaultTTL + time.Minute)
	if _, ok := c.Get("matches", true); ok {
		t.Error("expected expired entry to miss when checking expiry")
	}
	if _, ok := c.Get("matches", false); !ok {
		t.Error("expected expired entry to hit when expiry is not checked")
	}

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || !entries[0].Expired || entries[0].Rows != 2 {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestClear(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := openMemCache(t, clk)
	c.Set("matches", sample())
	c.Set("details", sample())

	if err := c.Clear("matches"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get("matches", false); ok {
		t.Error("cleared key should miss")
	}
	if _, ok := c.Get("details", false); !ok {
		t.Error("other keys must survive Clear")
	}
	if err := c.Clear("never-stored"); err != nil {
		t.Errorf("clearing a missing key should not fail: %v", err)
	}
	if err := c.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok := c.Get("details", false); ok {
		t.Error("purge should remove every key")
	}
}

func TestEmptySnapshotIsAHit(t *testing.T) {
	c := openMemCache(t, &clock{t: time.Now()})
	if err := c.Set("matches", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("matches", true)
	if !ok || got == nil || len(got) != 0 {
		t.Errorf("zero-row snapshot: want empty hit, got %v %v", got, ok)
	}
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c := openMemCache(t, &clock{t: time.Now()})
	_, err := c.conn.Exec(`INSERT INTO cache_entries(page_key, version, stored_at, row_count, payload) VALUES (?, ?, ?, ?, ?)`,
		"matches", "v1", time.Now().UnixMilli(), 1, []byte("{not json"))
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}
	if _, ok := c.Get("matches", true); ok {
		t.Error("corrupt payload must degrade to a miss")
	}
}

func TestVersionBumpInvalidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c1, err := Open(path, Options{Version: "v1"})
	if err != nil {
		t.Fatalf("open v1: %v", err)
	}
	c1.Set("matches", sample())
	c1.Close()

	c2, err := Open(path, Options{Version: "v2"})
	if err != nil {
		t.Fatalf("open v2: %v", err)
	}
	defer c2.Close()
	if _, ok := c2.Get("matches", false); ok {
		t.Error("entries from an older version must not be served")
	}
	entries, _ := c2.Entries()
	if len(entries) != 0 {
		t.Errorf("stale versions should be dropped on open, got %+v", entries)
	}
}

func TestQueryRaw(t *testing.T) {
	c := openMemCache(t, &clock{t: time.Now()})
	c.Set("matches", sample())
	c.Set("details", nil)

	cols, rows, err := c.QueryRaw(`SELECT page_key, row_count FROM cache_entries ORDER BY page_key`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[0] != "page_key" {
		t.Errorf("columns: %v", cols)
	}
	if len(rows) != 2 || rows[0][0] != "details" || rows[1][1] != "2" {
		t.Errorf("rows: %v", rows)
	}
	if _, _, err := c.QueryRaw(`SELECT nope FROM missing`); err == nil {
		t.Error("expected error for a bad query")
	}
}

func TestOpenRecreatesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matchstats.db")
	garbage := make([]byte, 130)
	for i := range garbage {
		garbage[i] = byte(i*7 + 3)
	}
	if err := os.WriteFile(path, garbage, 0644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	c, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open on a corrupt file: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("matches", true); ok {
		t.Error("recreated cache must start empty")
	}
	if err := c.Set("matches", sample()); err != nil {
		t.Fatalf("Set after recreate: %v", err)
	}
	if got, ok := c.Get("matches", true); !ok || len(got) != 2 {
		t.Errorf("want 2 records after recreate, got %v %v", got, ok)
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt file not kept aside: %v", err)
	}
}
