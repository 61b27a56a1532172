package yacistore

import (
	"context"
	"fmt"
	"strings"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/pkg/cip129"
)

const livePools = `
SELECT pl.pool_id, pl.status, pl.retire_epoch,
	(SELECT o.ticker FROM pool_offline_data o WHERE o.pool_id = pl.pool_id ORDER BY o.slot DESC LIMIT 1) AS ticker,
	(SELECT o.name FROM pool_offline_data o WHERE o.pool_id = pl.pool_id ORDER BY o.slot DESC LIMIT 1) AS name,
	(SELECT o.description FROM pool_offline_data o WHERE o.pool_id = pl.pool_id ORDER BY o.slot DESC LIMIT 1) AS description,
	(SELECT o.homepage FROM pool_offline_data o WHERE o.pool_id = pl.pool_id ORDER BY o.slot DESC LIMIT 1) AS homepage
FROM pool pl
WHERE pl.slot = (SELECT MAX(p2.slot) FROM pool p2 WHERE p2.pool_id = pl.pool_id)
	AND NOT EXISTS (SELECT 1 FROM pool p3 WHERE p3.pool_id = pl.pool_id AND p3.slot = pl.slot AND p3.cert_index > pl.cert_index)
	AND UPPER(pl.status) <> 'RETIRED'`

type poolResult struct {
	PoolID      string  `gorm:"column:pool_id"`
	Status      string  `gorm:"column:status"`
	RetireEpoch *uint32 `gorm:"column:retire_epoch"`
	Ticker      *string `gorm:"column:ticker"`
	Name        *string `gorm:"column:name"`
	Description *string `gorm:"column:description"`
	Homepage    *string `gorm:"column:homepage"`
}

func (r poolResult) toDomain() governance.StakePool {
	sp := governance.StakePool{
		PoolID:      cip129.PoolID(r.PoolID),
		Ticker:      r.Ticker,
		Name:        r.Name,
		Description: r.Description,
		Homepage:    r.Homepage,
	}
	if hash, err := cip129.PoolHash(r.PoolID); err == nil {
		sp.Hex = &hash
	}
	if strings.EqualFold(r.Status, "RETIRING") {
		sp.RetiringEpoch = r.RetireEpoch
	}
	return sp
}

// GetStakePoolsPage lists pools that are registered and not yet retired,
// ordered by pool id so pages are stable while new pools register.
func (p *Provider) GetStakePoolsPage(ctx context.Context, page, count int) (governance.StakePoolPage, error) {
	total, err := p.count(ctx, "SELECT COUNT(*) FROM ("+livePools+") x")
	if err != nil {
		return governance.StakePoolPage{}, fmt.Errorf("failed to count pools: %w", err)
	}

	limit, offset := pageBounds(page, count)
	var rows []poolResult
	if err := p.query(ctx, &rows, livePools+" ORDER BY pl.pool_id LIMIT ? OFFSET ?", limit, offset); err != nil {
		return governance.StakePoolPage{}, fmt.Errorf("failed to list pools: %w", err)
	}

	rows, hasMore := trimPage(rows, count)
	out := governance.StakePoolPage{Pools: make([]governance.StakePool, 0, len(rows)), HasMore: hasMore, Total: &total}
	for _, r := range rows {
		out.Pools = append(out.Pools, r.toDomain())
	}
	return out, nil
}

type committeeResult struct {
	Hash         string  `gorm:"column:hash"`
	CredType     string  `gorm:"column:cred_type"`
	ExpiredEpoch *uint32 `gorm:"column:expired_epoch"`
	HotKey       *string `gorm:"column:hot_key"`
}

// GetCommitteeMembers returns the seated members of the newest committee
// snapshot with their currently authorized hot key. Members whose term
// ended before the latest indexed epoch are left out.
func (p *Provider) GetCommitteeMembers(ctx context.Context) ([]governance.CommitteeMember, error) {
	var rows []committeeResult
	err := p.query(ctx, &rows, `
SELECT m.hash, m.cred_type, m.expired_epoch,
	(SELECT r.hot_key FROM committee_registration r WHERE r.cold_key = m.hash ORDER BY r.slot DESC, r.cert_index DESC LIMIT 1) AS hot_key
FROM committee_member m
WHERE m.epoch = (SELECT MAX(m2.epoch) FROM committee_member m2)
	AND (m.expired_epoch IS NULL OR m.expired_epoch >= COALESCE((SELECT MAX(b.epoch) FROM block b), 0))
ORDER BY m.hash`)
	if err != nil {
		return nil, fmt.Errorf("failed to list committee members: %w", err)
	}

	out := make([]governance.CommitteeMember, 0, len(rows))
	for _, r := range rows {
		role := "member"
		cold := r.Hash
		out = append(out, governance.CommitteeMember{
			Identifier:  r.Hash,
			Role:        &role,
			HotKey:      r.HotKey,
			ColdKey:     &cold,
			ExpiryEpoch: r.ExpiredEpoch,
		})
	}
	return out, nil
}
