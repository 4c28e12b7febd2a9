// Package store holds the records of one page: loaded once from the
// network, cached locally and replaced wholesale on refresh.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pable/go-match-stats/internal/model"
)

var (
	// ErrDataUnavailable means neither the network nor the cache produced records.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrRefreshInProgress is returned when Refresh is re-entered.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// Fetcher loads the full record set from the remote source.
type Fetcher interface {
	Fetch(ctx context.Context, force bool) ([]model.Record, error)
}

// Cache is the local snapshot cache.
type Cache interface {
	Get(key string, checkExpiry bool) ([]model.Record, bool)
	Set(key string, data []model.Record) error
	Clear(key string) error
}

// Store is the record store of one page family.
type Store struct {
	key     string
	fetcher Fetcher
	cache   Cache
	log     *slog.Logger

	mu         sync.RWMutex
	records    []model.Record
	refreshing atomic.Bool
}

// New returns a store for key. cache may be nil.
func New(key string, f Fetcher, c Cache, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		key:     key,
		fetcher: f,
		cache:   c,
		log:     log.With("page", key),
		records: []model.Record{},
	}
}

// Key is the cache key of the store.
func (s *Store) Key() string { return s.key }

// Records returns the current snapshot. It is never nil.
func (s *Store) Records() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Load populates the store. A non-forced load serves a fresh cache entry
// without touching the network and writes fetched snapshots back to the cache.
// A forced load always fetches and bypasses the cache entirely. If a
// non-forced fetch fails, any cached snapshot is served regardless of age.
func (s *Store) Load(ctx context.Context, force bool) ([]model.Record, error) {
	if !force && s.cache != nil {
		if data, ok := s.cache.Get(s.key, true); ok {
			s.log.Debug("cache hit", "rows", len(data))
			s.replace(data)
			return data, nil
		}
	}

	data, err := s.fetcher.Fetch(ctx, force)
	if err != nil {
		if !force && s.cache != nil {
			if stale, ok := s.cache.Get(s.key, false); ok {
				s.log.Warn("fetch failed, serving cached snapshot", "err", err, "rows", len(stale))
				s.replace(stale)
				return stale, nil
			}
		}
		return nil, fmt.Errorf("%w: load %s: %v", ErrDataUnavailable, s.key, err)
	}
	if data == nil {
		data = []model.Record{}
	}
	s.log.Info("fetched records", "rows", len(data), "force", force)

	if !force && s.cache != nil {
		if err := s.cache.Set(s.key, data); err != nil {
			s.log.Warn("cache write failed", "err", err)
		}
	}
	s.replace(data)
	return data, nil
}

// Refresh clears the cache entry, fetches with force, replaces the store and
// writes the new snapshot back to the cache. A call made while another
// refresh is running returns ErrRefreshInProgress.
func (s *Store) Refresh(ctx context.Context) ([]model.Record, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshing.Store(false)

	if s.cache != nil {
		if err := s.cache.Clear(s.key); err != nil {
			s.log.Warn("cache clear failed", "err", err)
		}
	}
	data, err := s.Load(ctx, true)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(s.key, data); err != nil {
			s.log.Warn("cache write failed", "err", err)
		}
	}
	return data, nil
}

// Refreshing reports whether a refresh is running.
func (s *Store) Refreshing() bool { return s.refreshing.Load() }

func (s *Store) replace(data []model.Record) {
	s.mu.Lock()
	s.records = data
	s.mu.Unlock()
}
