package health

import (
	"context"
	"time"
)

type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
)

// SyncReport is the indexer section of a health report. Error is set, and
// the numeric fields left empty, when the sync status could not be read.
type SyncReport struct {
	Connected       bool     `json:"connected"`
	Synced          bool     `json:"synced"`
	LatestBlock     *uint64  `json:"latest_block,omitempty"`
	LatestBlockSlot *uint64  `json:"latest_block_slot,omitempty"`
	LatestBlockTime *int64   `json:"latest_block_time,omitempty"`
	LatestBlockAge  string   `json:"latest_block_age,omitempty"`
	TotalBlocks     *uint64  `json:"total_blocks,omitempty"`
	LatestEpoch     *uint32  `json:"latest_epoch,omitempty"`
	SyncProgress    *float64 `json:"sync_progress,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type CacheReport struct {
	Enabled bool   `json:"enabled"`
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	HitRate string `json:"hit_rate"`
}

type Report struct {
	Status    Status      `json:"status"`
	YaciStore SyncReport  `json:"yaci_store"`
	Cache     CacheReport `json:"cache"`
}

type IHealthUsecase interface {
	Report(ctx context.Context) Report
	StartPeriodicChecks(ctx context.Context, interval time.Duration)
}
