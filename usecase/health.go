package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/domains/health"
)

// HealthSource is what the health report reads: liveness and sync state of
// the data store plus the cache counters. The cached router satisfies it.
type HealthSource interface {
	HealthCheck(ctx context.Context) (bool, error)
	GetSyncStatus(ctx context.Context) (governance.SyncStatus, error)
	CacheStats(ctx context.Context) domainCache.CacheStats
}

type healthService struct {
	source HealthSource
	now    func() time.Time

	lastStatus atomic.Value
}

func NewHealthService(source HealthSource) health.IHealthUsecase {
	return &healthService{source: source, now: time.Now}
}

// Report never fails: an unreachable store turns the status to degraded and
// a sync status error is reported inline.
func (s *healthService) Report(ctx context.Context) health.Report {
	status := health.StatusHealthy
	ok, err := s.source.HealthCheck(ctx)
	switch {
	case err != nil:
		status = health.StatusDegraded
		logrus.WithError(err).Warn("[HEALTH] data store health check failed")
	case !ok:
		status = health.StatusDegraded
		logrus.Warn("[HEALTH] data store reported unhealthy")
	}

	report := health.Report{
		Status:    status,
		YaciStore: s.syncReport(ctx),
		Cache:     cacheReport(s.source.CacheStats(ctx)),
	}
	s.noteTransition(status)
	return report
}

func (s *healthService) syncReport(ctx context.Context) health.SyncReport {
	st, err := s.source.GetSyncStatus(ctx)
	if err != nil {
		return health.SyncReport{
			Connected: false,
			Synced:    false,
			Error:     fmt.Sprintf("Failed to get sync status: %v", err),
		}
	}

	out := health.SyncReport{
		Connected:       st.Connected,
		Synced:          st.LatestBlockNumber != nil,
		LatestBlock:     st.LatestBlockNumber,
		LatestBlockSlot: st.LatestBlockSlot,
		LatestBlockTime: st.LatestBlockTime,
		TotalBlocks:     st.TotalBlocks,
		LatestEpoch:     st.LatestEpoch,
		SyncProgress:    st.SyncProgress,
	}
	if st.LatestBlockTime != nil {
		out.LatestBlockAge = humanize.RelTime(time.Unix(*st.LatestBlockTime, 0), s.now(), "ago", "from now")
	}
	return out
}

// cacheReport renders the hit ratio as a percentage with two decimals.
func cacheReport(stats domainCache.CacheStats) health.CacheReport {
	return health.CacheReport{
		Enabled: stats.Enabled,
		Entries: stats.Entries,
		Hits:    stats.Hits,
		Misses:  stats.Misses,
		HitRate: fmt.Sprintf("%.2f%%", stats.HitRate*100),
	}
}

func (s *healthService) noteTransition(status health.Status) {
	prev, _ := s.lastStatus.Swap(status).(health.Status)
	if prev != "" && prev != status {
		logrus.Infof("[HEALTH] status changed from %s to %s", prev, status)
	}
}

// StartPeriodicChecks reports health every interval until ctx is done so
// that status transitions show up in the logs without traffic.
func (s *healthService) StartPeriodicChecks(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	logrus.Infof("[HEALTH] starting periodic health checks loop (interval: %s)", interval)
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report := s.Report(ctx)
				logrus.Debugf("[HEALTH] scheduled check: %s", report.Status)
			}
		}
	}()
}
