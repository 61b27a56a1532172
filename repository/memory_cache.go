package repository

import (
	"context"
	"math"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
)

// MemoryCacheStore keeps router entries in process. When maxEntries is
// positive the least recently used entry is evicted once the bound is hit.
// Expired entries are kept until evicted or replaced.
type MemoryCacheStore struct {
	entries   *lru.Cache[string, *domainCache.Entry]
	evictions atomic.Uint64
}

// NewMemoryCacheStore creates an in-memory store. maxEntries <= 0 means unbounded.
func NewMemoryCacheStore(maxEntries int) (*MemoryCacheStore, error) {
	size := maxEntries
	if size <= 0 {
		size = math.MaxInt32
	}
	s := &MemoryCacheStore{}
	entries, err := lru.NewWithEvict[string, *domainCache.Entry](size, func(key string, _ *domainCache.Entry) {
		s.evictions.Add(1)
		logrus.Debugf("[CACHE] evicted %s", key)
	})
	if err != nil {
		return nil, err
	}
	s.entries = entries
	return s, nil
}

func (s *MemoryCacheStore) Get(_ context.Context, key string) (*domainCache.Entry, error) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (s *MemoryCacheStore) Set(_ context.Context, key string, entry *domainCache.Entry) error {
	s.entries.Add(key, entry)
	return nil
}

func (s *MemoryCacheStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

func (s *MemoryCacheStore) Len(_ context.Context) (int, error) {
	return s.entries.Len(), nil
}

func (s *MemoryCacheStore) Purge(_ context.Context) error {
	s.entries.Purge()
	return nil
}

// Evictions counts entries dropped by the capacity bound or Purge.
func (s *MemoryCacheStore) Evictions() uint64 {
	return s.evictions.Load()
}
