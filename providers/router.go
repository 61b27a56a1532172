package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/domains/governance"
)

// Recorder receives per-operation cache events. pkg/metrics.Prometheus
// implements it.
type Recorder interface {
	CacheHit(op string)
	CacheMiss(op string)
	StaleServed(op string)
	FetchObserved(op string, took time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) CacheHit(string)                             {}
func (noopRecorder) CacheMiss(string)                            {}
func (noopRecorder) StaleServed(string)                          {}
func (noopRecorder) FetchObserved(string, time.Duration, error) {}

type Options struct {
	Enabled bool
	Store   domainCache.Store
	TTL     domainCache.TTLPolicy
	// FetchTimeout bounds a single provider fetch. Zero means no bound
	// beyond the provider's own timeouts.
	FetchTimeout time.Duration
	Recorder     Recorder
	Now          func() time.Time
}

// call is one in-flight provider fetch that later callers for the same key
// attach to.
type call struct {
	done  chan struct{}
	value any
	err   error
}

// CachedProviderRouter fronts a single governance.IProvider with a
// cache-or-fetch policy. At most one provider fetch runs per key at a time;
// concurrent callers for that key wait for its outcome.
//
// A failed fetch is never cached. When an expired entry exists for the key
// it is served instead of the failure; on a cold key the failure is returned.
type CachedProviderRouter struct {
	provider     governance.IProvider
	store        domainCache.Store
	ttl          domainCache.TTLPolicy
	enabled      bool
	fetchTimeout time.Duration
	recorder     Recorder
	now          func() time.Time

	mu       sync.Mutex
	inflight map[string]*call

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ governance.IProvider = (*CachedProviderRouter)(nil)

func NewCachedProviderRouter(provider governance.IProvider, opts Options) (*CachedProviderRouter, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if opts.Enabled && opts.Store == nil {
		return nil, fmt.Errorf("cache store is required when caching is enabled")
	}
	if opts.TTL == nil {
		opts.TTL = domainCache.DefaultTTLPolicy()
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CachedProviderRouter{
		provider:     provider,
		store:        opts.Store,
		ttl:          opts.TTL,
		enabled:      opts.Enabled,
		fetchTimeout: opts.FetchTimeout,
		recorder:     opts.Recorder,
		now:          opts.Now,
		inflight:     make(map[string]*call),
	}, nil
}

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key builds the canonical cache key for op and its arguments. String
// arguments have the separator escaped so distinct argument lists never
// share a key.
func Key(op string, args ...any) string {
	if len(args) == 0 {
		return op
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, op)
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			parts = append(parts, keyEscaper.Replace(v))
		case int, int32, int64, uint, uint32, uint64:
			parts = append(parts, fmt.Sprint(v))
		default:
			data, err := json.Marshal(v)
			if err != nil {
				parts = append(parts, fmt.Sprintf("%v", v))
				continue
			}
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, ":")
}

type refreshKey struct{}

// WithRefresh marks ctx so that router calls made with it fetch from the
// provider even when a fresh entry exists. Such calls still coalesce with
// in-flight fetches, replace the stored entry, and are left out of the hit
// and miss counters.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func isRefresh(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// Cached runs fetch through the router's cache under op with the given TTL
// class. It is used for the router's own provider methods and for derived
// values such as participation reports.
func Cached[T any](ctx context.Context, r *CachedProviderRouter, op string, class domainCache.TTLClass, args []any, fetch func(ctx context.Context) (T, error)) (T, error) {
	if !r.enabled {
		return fetch(ctx)
	}

	key := Key(op, args...)
	refresh := isRefresh(ctx)
	stale, fresh := r.lookup(ctx, key)
	if refresh && fresh != nil {
		stale, fresh = fresh, nil
	}
	if fresh != nil {
		if v, ok := decode[T](fresh); ok {
			r.hit(op)
			return v, nil
		}
	}

	r.mu.Lock()
	c, attached := r.inflight[key]
	if !attached {
		c = &call{done: make(chan struct{})}
		r.inflight[key] = c
	}
	r.mu.Unlock()

	if attached {
		if !refresh {
			r.hit(op)
		}
		return wait[T](ctx, c)
	}

	if !refresh {
		// A fetch for this key may have finished between the lookup above
		// and registering c; it stores before leaving the in-flight map.
		if _, recheck := r.lookup(ctx, key); recheck != nil {
			if v, ok := decode[T](recheck); ok {
				r.hit(op)
				r.finish(key, c, v, nil)
				return v, nil
			}
		}
		r.miss(op)
	}
	go r.run(ctx, key, op, class, c, stale, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}, func(e *domainCache.Entry) (any, bool) {
		return decode[T](e)
	})
	return wait[T](ctx, c)
}

// lookup returns the entry stored for key split by freshness. Store errors
// are treated as absent entries.
func (r *CachedProviderRouter) lookup(ctx context.Context, key string) (stale, fresh *domainCache.Entry) {
	entry, err := r.store.Get(ctx, key)
	if err != nil {
		logrus.Warnf("[ROUTER] lookup %s failed: %v", key, err)
		return nil, nil
	}
	if entry == nil {
		return nil, nil
	}
	if entry.Fresh(r.now()) {
		return nil, entry
	}
	return entry, nil
}

func (r *CachedProviderRouter) run(
	ctx context.Context,
	key, op string,
	class domainCache.TTLClass,
	c *call,
	stale *domainCache.Entry,
	fetch func(ctx context.Context) (any, error),
	decodeStale func(*domainCache.Entry) (any, bool),
) {
	fetchCtx := context.WithoutCancel(ctx)
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(fetchCtx, r.fetchTimeout)
		defer cancel()
	}

	var (
		value any
		err   error
	)
	start := r.now()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				logrus.Errorf("[ROUTER] provider panic in %s: %v\n%s", op, rec, debug.Stack())
				err = fmt.Errorf("provider panic in %s: %v", op, rec)
			}
		}()
		value, err = fetch(fetchCtx)
	}()
	r.recorder.FetchObserved(op, r.now().Sub(start), err)

	if err != nil {
		if stale != nil {
			if v, ok := decodeStale(stale); ok {
				logrus.Warnf("[ROUTER] %s failed, serving entry from %s: %v", key, stale.CreatedAt.Format(time.RFC3339), err)
				r.recorder.StaleServed(op)
				r.finish(key, c, v, nil)
				return
			}
		}
		logrus.Errorf("[ROUTER] %s failed: %v", key, err)
		r.finish(key, c, nil, err)
		return
	}

	entry := &domainCache.Entry{Value: value, CreatedAt: r.now(), TTL: r.ttl.For(class)}
	if err := r.store.Set(fetchCtx, key, entry); err != nil {
		logrus.Warnf("[ROUTER] store %s failed: %v", key, err)
	}
	r.finish(key, c, value, nil)
}

func (r *CachedProviderRouter) finish(key string, c *call, value any, err error) {
	c.value = value
	c.err = err
	r.mu.Lock()
	delete(r.inflight, key)
	r.mu.Unlock()
	close(c.done)
}

func wait[T any](ctx context.Context, c *call) (T, error) {
	var zero T
	select {
	case <-c.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if c.err != nil {
		return zero, c.err
	}
	if c.value == nil {
		return zero, nil
	}
	v, ok := c.value.(T)
	if !ok {
		return zero, fmt.Errorf("cached value has type %T", c.value)
	}
	return v, nil
}

func decode[T any](e *domainCache.Entry) (T, bool) {
	var v T
	if e.Value != nil {
		typed, ok := e.Value.(T)
		return typed, ok
	}
	// Not-found results are stored as JSON null; decoding them into
	// json.RawMessage would yield the literal text instead of nil.
	if e.Payload == nil || bytes.Equal(bytes.TrimSpace(e.Payload), []byte("null")) {
		return v, true
	}
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		logrus.Warnf("[ROUTER] discarding undecodable entry: %v", err)
		return v, false
	}
	return v, true
}

func (r *CachedProviderRouter) hit(op string) {
	r.hits.Add(1)
	r.recorder.CacheHit(op)
}

func (r *CachedProviderRouter) miss(op string) {
	r.misses.Add(1)
	r.recorder.CacheMiss(op)
}

// CacheStats reports the counters and current entry count. Counters are
// never reset; a disabled router reports zeros.
func (r *CachedProviderRouter) CacheStats(ctx context.Context) domainCache.CacheStats {
	if !r.enabled {
		return domainCache.CacheStats{}
	}
	hits, misses := r.hits.Load(), r.misses.Load()
	entries, err := r.store.Len(ctx)
	if err != nil {
		logrus.Warnf("[ROUTER] could not count entries: %v", err)
	}
	return domainCache.CacheStats{
		Enabled: true,
		Entries: entries,
		Hits:    hits,
		Misses:  misses,
		HitRate: domainCache.HitRatio(hits, misses),
	}
}

// Purge drops every stored entry. In-flight fetches still complete and
// store their results.
func (r *CachedProviderRouter) Purge(ctx context.Context) error {
	if !r.enabled {
		return nil
	}
	return r.store.Purge(ctx)
}

func (r *CachedProviderRouter) Enabled() bool {
	return r.enabled
}
