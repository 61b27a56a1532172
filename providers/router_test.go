package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/repository"
)

// fakeProvider implements only what the tests call; other methods panic
// through the nil embedded interface.
type fakeProvider struct {
	governance.IProvider

	calls   atomic.Int32
	getDRep func(ctx context.Context, id string) (*governance.DRep, error)
	healthy bool
	pages   atomic.Int32

	metadata func(ctx context.Context, id string) (json.RawMessage, error)
}

func (f *fakeProvider) GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error) {
	f.calls.Add(1)
	return f.metadata(ctx, id)
}

func (f *fakeProvider) GetDRep(ctx context.Context, id string) (*governance.DRep, error) {
	f.calls.Add(1)
	return f.getDRep(ctx, id)
}

func (f *fakeProvider) GetDRepsPage(_ context.Context, q governance.DRepsQuery) (governance.DRepsPage, error) {
	f.pages.Add(1)
	return governance.DRepsPage{DReps: []governance.DRep{{DRepID: q.Search}}}, nil
}

func (f *fakeProvider) HealthCheck(context.Context) (bool, error) {
	f.calls.Add(1)
	return f.healthy, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingRecorder struct {
	noopRecorder
	stale atomic.Int32
}

func (c *countingRecorder) StaleServed(string) { c.stale.Add(1) }

func newTestRouter(t *testing.T, p governance.IProvider, clk *clock) *CachedProviderRouter {
	t.Helper()
	store, err := repository.NewMemoryCacheStore(0)
	require.NoError(t, err)
	r, err := NewCachedProviderRouter(p, Options{Enabled: true, Store: store, Now: clk.Now})
	require.NoError(t, err)
	return r
}

func drep(id string) *governance.DRep {
	return &governance.DRep{DRepID: id}
}

func TestRouter_CoalescesConcurrentRequests(t *testing.T) {
	release := make(chan struct{})
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		<-release
		return drep(id), nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})

	const n = 50
	var wg sync.WaitGroup
	results := make([]*governance.DRep, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.GetDRep(context.Background(), "drep1abc")
		}(i)
	}

	require.Eventually(t, func() bool {
		return r.hits.Load()+r.misses.Load() == n
	}, 2*time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), p.calls.Load())
	stats := r.CacheStats(context.Background())
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(n-1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "drep1abc", results[i].DRepID)
	}
}

func TestRouter_RefetchesAfterTTL(t *testing.T) {
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		return drep(id), nil
	}}
	clk := &clock{now: time.Unix(1000, 0)}
	r := newTestRouter(t, p, clk)
	ctx := context.Background()

	_, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)
	clk.Advance(4 * time.Minute)
	_, err = r.GetDRep(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.calls.Load())

	clk.Advance(2 * time.Minute)
	_, err = r.GetDRep(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.calls.Load())

	stats := r.CacheStats(ctx)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 1e-9)
}

func TestRouter_DistinctKeysFetchSeparately(t *testing.T) {
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		return drep(id), nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	a, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)
	b, err := r.GetDRep(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, "a", a.DRepID)
	assert.Equal(t, "b", b.DRepID)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestRouter_ServesStaleOnWarmFailure(t *testing.T) {
	var fail atomic.Bool
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		if fail.Load() {
			return nil, errors.New("db down")
		}
		return drep(id), nil
	}}
	clk := &clock{now: time.Unix(1000, 0)}
	store, err := repository.NewMemoryCacheStore(0)
	require.NoError(t, err)
	rec := &countingRecorder{}
	r, err := NewCachedProviderRouter(p, Options{Enabled: true, Store: store, Now: clk.Now, Recorder: rec})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.GetDRep(ctx, "a")
	require.NoError(t, err)

	fail.Store(true)
	clk.Advance(time.Hour)
	got, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.DRepID)
	assert.Equal(t, int32(1), rec.stale.Load())

	// The stale entry is not refreshed by a failed fetch.
	got, err = r.GetDRep(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.DRepID)
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestRouter_ColdFailurePropagatesAndIsNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		if fail.Load() {
			return nil, errors.New("db down")
		}
		return drep(id), nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	_, err := r.GetDRep(ctx, "a")
	require.EqualError(t, err, "db down")
	assert.Equal(t, 0, r.CacheStats(ctx).Entries)

	fail.Store(false)
	got, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.DRepID)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestRouter_CachesNotFound(t *testing.T) {
	p := &fakeProvider{getDRep: func(context.Context, string) (*governance.DRep, error) {
		return nil, nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := r.GetDRep(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestRouter_CallerCancelDoesNotCancelFetch(t *testing.T) {
	release := make(chan struct{})
	var fetchErr atomic.Value
	p := &fakeProvider{getDRep: func(ctx context.Context, id string) (*governance.DRep, error) {
		<-release
		if err := ctx.Err(); err != nil {
			fetchErr.Store(err)
		}
		return drep(id), nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.GetDRep(ctx, "a")
		done <- err
	}()
	require.Eventually(t, func() bool { return r.misses.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		return r.CacheStats(context.Background()).Entries == 1
	}, time.Second, time.Millisecond)
	assert.Nil(t, fetchErr.Load())

	got, err := r.GetDRep(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.DRepID)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestRouter_ProviderPanicBecomesError(t *testing.T) {
	p := &fakeProvider{getDRep: func(context.Context, string) (*governance.DRep, error) {
		panic("nil row")
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})

	_, err := r.GetDRep(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil row")
}

func TestRouter_DisabledPassesThrough(t *testing.T) {
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		return drep(id), nil
	}}
	r, err := NewCachedProviderRouter(p, Options{Enabled: false})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.GetDRep(ctx, "a")
	require.NoError(t, err)
	_, err = r.GetDRep(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, domainCache.CacheStats{}, r.CacheStats(ctx))
	assert.NoError(t, r.Purge(ctx))
}

func TestRouter_HealthCheckBypassesCache(t *testing.T) {
	p := &fakeProvider{healthy: false}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := r.HealthCheck(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, int32(2), p.calls.Load())
	stats := r.CacheStats(ctx)
	assert.Zero(t, stats.Hits+stats.Misses)
}

func TestRouter_EqualQueriesShareEntry(t *testing.T) {
	p := &fakeProvider{}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	q := governance.DRepsQuery{Page: 1, Count: 20, Status: governance.DRepStatusActive, Search: "x"}
	_, err := r.GetDRepsPage(ctx, q)
	require.NoError(t, err)
	_, err = r.GetDRepsPage(ctx, governance.DRepsQuery{Page: 1, Count: 20, Status: governance.DRepStatusActive, Search: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.pages.Load())

	_, err = r.GetDRepsPage(ctx, governance.DRepsQuery{Page: 2, Count: 20, Status: governance.DRepStatusActive, Search: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.pages.Load())
}

func TestRouter_PurgeKeepsCounters(t *testing.T) {
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		return drep(id), nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	_, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, r.Purge(ctx))

	stats := r.CacheStats(ctx)
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, uint64(1), stats.Misses)
}

// jsonStore keeps only serialized payloads, like the Valkey store.
type jsonStore struct {
	mu      sync.Mutex
	entries map[string]domainCache.Entry
}

func (s *jsonStore) Get(_ context.Context, key string) (*domainCache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *jsonStore) Set(_ context.Context, key string, e *domainCache.Entry) error {
	payload, err := json.Marshal(e.Value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = domainCache.Entry{Payload: payload, CreatedAt: e.CreatedAt, TTL: e.TTL}
	return nil
}

func (s *jsonStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *jsonStore) Len(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

func (s *jsonStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]domainCache.Entry{}
	return nil
}

func TestRouter_DecodesSerializedEntries(t *testing.T) {
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		power := "1000"
		return &governance.DRep{DRepID: id, VotingPower: &power}, nil
	}}
	clk := &clock{now: time.Unix(1000, 0)}
	r, err := NewCachedProviderRouter(p, Options{Enabled: true, Store: &jsonStore{entries: map[string]domainCache.Entry{}}, Now: clk.Now})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.GetDRep(ctx, "a")
	require.NoError(t, err)
	got, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)

	require.NotNil(t, got.VotingPower)
	assert.Equal(t, "1000", *got.VotingPower)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestRouter_SerializedNotFoundStaysEmpty(t *testing.T) {
	p := &fakeProvider{metadata: func(context.Context, string) (json.RawMessage, error) {
		return nil, nil
	}}
	clk := &clock{now: time.Unix(1000, 0)}
	r, err := NewCachedProviderRouter(p, Options{Enabled: true, Store: &jsonStore{entries: map[string]domainCache.Entry{}}, Now: clk.Now})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := r.GetDRepMetadata(ctx, "drep1missing")
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err := r.GetDRepMetadata(ctx, "drep1missing")
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, uint64(1), r.CacheStats(ctx).Hits)
}

func TestRouter_SerializedMetadataRoundTrips(t *testing.T) {
	p := &fakeProvider{metadata: func(context.Context, string) (json.RawMessage, error) {
		return json.RawMessage(`{"name":"alice"}`), nil
	}}
	clk := &clock{now: time.Unix(1000, 0)}
	r, err := NewCachedProviderRouter(p, Options{Enabled: true, Store: &jsonStore{entries: map[string]domainCache.Entry{}}, Now: clk.Now})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.GetDRepMetadata(ctx, "drep1a")
	require.NoError(t, err)
	got, err := r.GetDRepMetadata(ctx, "drep1a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"alice"}`, string(got))
}

func TestKey_EscapesSeparator(t *testing.T) {
	assert.NotEqual(t, Key(OpDRep, "a:b"), Key(OpDRep, "a", "b"))
	assert.Equal(t, "get_drep:a%3Ab", Key(OpDRep, "a:b"))
	assert.NotEqual(t, Key(OpDRep, "a%3Ab"), Key(OpDRep, "a:b"))
	assert.Equal(t, "get_drep:drep1xyz", Key(OpDRep, "drep1xyz"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "get_total_active_dreps", Key(OpTotalActiveDReps))
	assert.Equal(t, "get_governance_actions_page:2:20", Key(OpActionsPage, 2, 20))
	assert.Equal(t, "get_epoch_start_time:512", Key(OpEpochStartTime, uint32(512)))
	assert.Equal(t,
		Key(OpDRepsPage, governance.DRepsQuery{Page: 1, Count: 5}),
		Key(OpDRepsPage, governance.DRepsQuery{Page: 1, Count: 5}))
	assert.NotEqual(t,
		Key(OpDRepsPage, governance.DRepsQuery{Page: 1, Count: 5}),
		Key(OpDRepsPage, governance.DRepsQuery{Page: 1, Count: 5, Search: "a"}))
}

func TestNewCachedProviderRouter_RequiresStoreWhenEnabled(t *testing.T) {
	_, err := NewCachedProviderRouter(&fakeProvider{}, Options{Enabled: true})
	assert.Error(t, err)

	_, err = NewCachedProviderRouter(nil, Options{})
	assert.Error(t, err)
}

func TestRouter_RefreshRefetchesWithoutCounting(t *testing.T) {
	version := atomic.Int32{}
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		v := version.Add(1)
		d := drep(id)
		name := fmt.Sprintf("v%d", v)
		d.GivenName = &name
		return d, nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	_, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)

	refreshed, err := r.GetDRep(WithRefresh(ctx), "a")
	require.NoError(t, err)
	assert.Equal(t, "v2", *refreshed.GivenName)

	got, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v2", *got.GivenName)

	assert.Equal(t, int32(2), p.calls.Load())
	stats := r.CacheStats(ctx)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Hits)
}

func TestRouter_FailedRefreshKeepsEntry(t *testing.T) {
	fail := atomic.Bool{}
	p := &fakeProvider{getDRep: func(_ context.Context, id string) (*governance.DRep, error) {
		if fail.Load() {
			return nil, errors.New("db down")
		}
		return drep(id), nil
	}}
	r := newTestRouter(t, p, &clock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	_, err := r.GetDRep(ctx, "a")
	require.NoError(t, err)

	fail.Store(true)
	got, err := r.GetDRep(WithRefresh(ctx), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.DRepID)
	assert.Equal(t, 1, r.CacheStats(ctx).Entries)
}
