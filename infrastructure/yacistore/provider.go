package yacistore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/govtwool/govtwool-backend/domains/governance"
)

// DefaultGovActionLifetime is the mainnet gov_action_lifetime protocol
// parameter, in epochs.
const DefaultGovActionLifetime = 6

type Options struct {
	GovActionLifetime uint32
	Now               func() time.Time
}

// Provider reads governance data straight from a Yaci Store database.
// Queries are plain SQL that runs on both PostgreSQL and SQLite.
type Provider struct {
	db                *gorm.DB
	govActionLifetime uint32
	now               func() time.Time
}

var _ governance.IProvider = (*Provider)(nil)

func NewProvider(db *gorm.DB, opts Options) *Provider {
	if opts.GovActionLifetime == 0 {
		opts.GovActionLifetime = DefaultGovActionLifetime
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logrus.Debugf("[YACI] governance actions stay open for %d epochs", opts.GovActionLifetime)
	return &Provider{db: db, govActionLifetime: opts.GovActionLifetime, now: opts.Now}
}

// query scans sql into dest, which must be a pointer to a slice.
func (p *Provider) query(ctx context.Context, dest any, sql string, args ...any) error {
	return p.db.WithContext(ctx).Raw(sql, args...).Scan(dest).Error
}

func (p *Provider) count(ctx context.Context, sql string, args ...any) (uint64, error) {
	var n int64
	if err := p.db.WithContext(ctx).Raw(sql, args...).Scan(&n).Error; err != nil {
		return 0, err
	}
	if n < 0 {
		n = 0
	}
	return uint64(n), nil
}

func (p *Provider) HealthCheck(ctx context.Context) (bool, error) {
	sqlDB, err := p.db.DB()
	if err != nil {
		return false, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return false, fmt.Errorf("yaci store ping failed: %w", err)
	}
	var one int
	if err := p.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return false, fmt.Errorf("yaci store query failed: %w", err)
	}
	return one == 1, nil
}

type latestBlock struct {
	Number    uint64 `gorm:"column:number"`
	Slot      uint64 `gorm:"column:slot"`
	Epoch     uint32 `gorm:"column:epoch"`
	BlockTime int64  `gorm:"column:block_time"`
}

// GetSyncStatus reports the latest indexed block. Progress compares its slot
// with the slot expected at the current wall clock, one slot per second.
func (p *Provider) GetSyncStatus(ctx context.Context) (governance.SyncStatus, error) {
	var blocks []latestBlock
	if err := p.query(ctx, &blocks, `SELECT number, slot, epoch, block_time FROM block ORDER BY number DESC LIMIT 1`); err != nil {
		return governance.SyncStatus{}, fmt.Errorf("failed to read latest block: %w", err)
	}
	status := governance.SyncStatus{Connected: true}
	if len(blocks) == 0 {
		logrus.Debug("[YACI] block table is empty, indexer has not synced yet")
		return status, nil
	}

	total, err := p.count(ctx, `SELECT COUNT(*) FROM block`)
	if err != nil {
		return governance.SyncStatus{}, fmt.Errorf("failed to count blocks: %w", err)
	}

	b := blocks[0]
	status.LatestBlockNumber = &b.Number
	status.LatestBlockSlot = &b.Slot
	status.LatestBlockTime = &b.BlockTime
	status.LatestEpoch = &b.Epoch
	status.TotalBlocks = &total
	status.SyncProgress = syncProgress(b.Slot, b.BlockTime, p.now())
	return status, nil
}

func syncProgress(slot uint64, blockTime int64, now time.Time) *float64 {
	lag := now.Unix() - blockTime
	if lag < 0 {
		lag = 0
	}
	expected := float64(slot) + float64(lag)
	if expected <= 0 {
		return nil
	}
	progress := math.Round(float64(slot)/expected*10000) / 100
	return &progress
}

func (p *Provider) GetEpochStartTime(ctx context.Context, epoch uint32) (*uint64, error) {
	var rows []struct {
		StartTime uint64 `gorm:"column:start_time"`
	}
	if err := p.query(ctx, &rows, `SELECT start_time FROM epoch WHERE number = ? LIMIT 1`, epoch); err != nil {
		return nil, fmt.Errorf("failed to read epoch %d: %w", epoch, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].StartTime, nil
}

// pageBounds turns a 1-based page into LIMIT/OFFSET. One extra row is
// requested so has_more can be answered without a second query.
func pageBounds(page, count int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 1
	}
	return count + 1, (page - 1) * count
}

func trimPage[T any](rows []T, count int) ([]T, bool) {
	if count < 1 {
		count = 1
	}
	if len(rows) > count {
		return rows[:count], true
	}
	return rows, false
}
