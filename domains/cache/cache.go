package cache

import (
	"context"
	"time"
)

// TTLClass groups operations by how quickly their data changes.
type TTLClass string

const (
	TTLStatic        TTLClass = "static"
	TTLEntity        TTLClass = "entity"
	TTLList          TTLClass = "list"
	TTLStatus        TTLClass = "status"
	TTLParticipation TTLClass = "participation"
)

type TTLPolicy map[TTLClass]time.Duration

// DefaultTTLPolicy is used for classes missing from the configured policy.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		TTLStatic:        time.Hour,
		TTLEntity:        5 * time.Minute,
		TTLList:          time.Minute,
		TTLStatus:        10 * time.Second,
		TTLParticipation: 30 * time.Second,
	}
}

func (p TTLPolicy) For(class TTLClass) time.Duration {
	if ttl, ok := p[class]; ok {
		return ttl
	}
	return DefaultTTLPolicy()[class]
}

// Entry is the last successfully fetched value for one key. Stores that
// cannot keep Go values (Valkey) leave Value nil and fill Payload with JSON.
type Entry struct {
	Value     any           `json:"-"`
	Payload   []byte        `json:"payload,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
}

// Fresh reports whether the entry is within its TTL at now. A zero TTL
// never expires.
func (e *Entry) Fresh(now time.Time) bool {
	if e.TTL <= 0 {
		return true
	}
	return now.Before(e.CreatedAt.Add(e.TTL))
}

// Store holds cache entries. Expired entries must stay readable until they
// are replaced or evicted so they can be served when a refetch fails.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Len(ctx context.Context) (int, error)
	Purge(ctx context.Context) error
}

type CacheStats struct {
	Enabled bool    `json:"enabled"`
	Entries int     `json:"entries"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// HitRatio returns hits/(hits+misses), or 0 before the first lookup.
func HitRatio(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

type ICacheUsecase interface {
	GetStats(ctx context.Context) CacheStats
	Clear(ctx context.Context) error
}
