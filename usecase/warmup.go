package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/pkg/jobpool"
	"github.com/govtwool/govtwool-backend/providers"
	"github.com/govtwool/govtwool-backend/validations"
)

type WarmupOptions struct {
	Interval time.Duration
	Workers  int
}

type warmTarget struct {
	key   string
	fetch func(ctx context.Context, p governance.IProvider) error
}

// Warmer periodically refreshes the entries behind the busiest list
// endpoints so that requests after a TTL expiry are still answered from
// cache.
type Warmer struct {
	provider governance.IProvider
	interval time.Duration
	pool     *jobpool.Pool
	targets  []warmTarget

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWarmer expects provider to be the cached router; warming an uncached
// provider only costs queries.
func NewWarmer(provider governance.IProvider, opts WarmupOptions) *Warmer {
	if opts.Interval <= 0 {
		opts.Interval = 45 * time.Second
	}
	return &Warmer{
		provider: provider,
		interval: opts.Interval,
		pool:     jobpool.New("WARMUP", opts.Workers, 16),
		targets:  defaultWarmTargets(),
	}
}

func defaultWarmTargets() []warmTarget {
	firstPage := func(op string) string {
		return providers.Key(op, 1, validations.DefaultPageSize)
	}
	return []warmTarget{
		{
			key: providers.Key(providers.OpDRepsPage, governance.DRepsQuery{Page: 1, Count: validations.DefaultPageSize}),
			fetch: func(ctx context.Context, p governance.IProvider) error {
				_, err := p.GetDRepsPage(ctx, governance.DRepsQuery{Page: 1, Count: validations.DefaultPageSize})
				return err
			},
		},
		{
			key: providers.Key(providers.OpDRepsPage, governance.DRepsQuery{Page: 1, Count: populationPageSize, Status: governance.DRepStatusActive}),
			fetch: func(ctx context.Context, p governance.IProvider) error {
				_, err := p.GetDRepsPage(ctx, governance.DRepsQuery{Page: 1, Count: populationPageSize, Status: governance.DRepStatusActive})
				return err
			},
		},
		{
			key: firstPage(providers.OpActionsPage),
			fetch: func(ctx context.Context, p governance.IProvider) error {
				_, err := p.GetGovernanceActionsPage(ctx, 1, validations.DefaultPageSize)
				return err
			},
		},
		{
			key: firstPage(providers.OpStakePoolsPage),
			fetch: func(ctx context.Context, p governance.IProvider) error {
				_, err := p.GetStakePoolsPage(ctx, 1, validations.DefaultPageSize)
				return err
			},
		},
		{
			key: providers.Key(providers.OpCommitteeMembers),
			fetch: func(ctx context.Context, p governance.IProvider) error {
				_, err := p.GetCommitteeMembers(ctx)
				return err
			},
		},
		{
			key: providers.Key(providers.OpTotalActiveDReps),
			fetch: func(ctx context.Context, p governance.IProvider) error {
				_, err := p.GetTotalActiveDReps(ctx)
				return err
			},
		},
	}
}

// Start warms once immediately and then every interval until Stop or ctx
// is done.
func (w *Warmer) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.pool.Start(ctx)
	logrus.Infof("[WARMUP] refreshing %d entries every %s", len(w.targets), w.interval)

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce queues a refresh of every target and returns how many were
// queued. Targets still refreshing from the previous round are skipped.
func (w *Warmer) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	queued := 0
	for _, t := range w.targets {
		ok := w.pool.TryDispatch(jobpool.Job{
			Key: t.key,
			Handler: func(jobCtx context.Context) error {
				return t.fetch(providers.WithRefresh(jobCtx), w.provider)
			},
		})
		if ok {
			queued++
		}
	}
	logrus.Debugf("[WARMUP] queued %d/%d refreshes", queued, len(w.targets))
	return queued
}

func (w *Warmer) Stats() jobpool.Stats {
	return w.pool.Stats()
}

func (w *Warmer) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
		w.pool.Stop()
	})
}
