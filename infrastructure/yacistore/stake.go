package yacistore

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/pkg/cip129"
)

type stakeResult struct {
	PoolID      *string `gorm:"column:pool_id"`
	DRepID      *string `gorm:"column:drep_id"`
	DRepType    *string `gorm:"column:drep_type"`
	Utxo        *string `gorm:"column:utxo"`
	Rewards     *string `gorm:"column:rewards"`
	Withdrawals *string `gorm:"column:withdrawals"`
	Known       int64   `gorm:"column:known"`
}

// GetStakeDelegation reports where a stake address delegates and what it
// holds. Rewards are those spendable by the latest indexed epoch minus
// everything withdrawn. An address the indexer never saw is nil.
func (p *Provider) GetStakeDelegation(ctx context.Context, stakeAddress string) (*governance.StakeDelegation, error) {
	var rows []stakeResult
	err := p.query(ctx, &rows, `
SELECT
	(SELECT d.pool_id FROM delegation d WHERE d.address = @addr ORDER BY d.slot DESC, d.cert_index DESC LIMIT 1) AS pool_id,
	(SELECT v.drep_id FROM delegation_vote v WHERE v.address = @addr ORDER BY v.slot DESC, v.cert_index DESC LIMIT 1) AS drep_id,
	(SELECT v.drep_type FROM delegation_vote v WHERE v.address = @addr ORDER BY v.slot DESC, v.cert_index DESC LIMIT 1) AS drep_type,
	(SELECT b.quantity FROM stake_address_balance b WHERE b.address = @addr ORDER BY b.slot DESC LIMIT 1) AS utxo,
	(SELECT SUM(r.amount) FROM reward r WHERE r.address = @addr
		AND r.spendable_epoch <= COALESCE((SELECT MAX(bl.epoch) FROM block bl), 0)) AS rewards,
	(SELECT SUM(w.amount) FROM withdrawal w WHERE w.address = @addr) AS withdrawals,
	(SELECT COUNT(*) FROM delegation d WHERE d.address = @addr)
		+ (SELECT COUNT(*) FROM delegation_vote v WHERE v.address = @addr)
		+ (SELECT COUNT(*) FROM stake_address_balance b WHERE b.address = @addr) AS known`,
		map[string]any{"addr": stakeAddress})
	if err != nil {
		return nil, fmt.Errorf("failed to get delegation of %s: %w", stakeAddress, err)
	}
	if len(rows) == 0 || rows[0].Known == 0 {
		return nil, nil
	}
	r := rows[0]

	out := &governance.StakeDelegation{StakeAddress: stakeAddress, UtxoBalance: r.Utxo}
	if r.PoolID != nil {
		pool := cip129.PoolID(*r.PoolID)
		out.DelegatedPool = &pool
	}
	out.DelegatedDRep = delegatedDRep(r.DRepID, r.DRepType)

	rewards := new(big.Int).Sub(parseAmount(r.Rewards), parseAmount(r.Withdrawals))
	if rewards.Sign() < 0 {
		rewards.SetInt64(0)
	}
	available := rewards.String()
	out.RewardsAvailable = &available

	total := new(big.Int).Add(parseAmount(r.Utxo), rewards).String()
	out.TotalBalance = &total
	return out, nil
}

// delegatedDRep maps the predefined voting options to their conventional
// names and real DReps to their CIP-129 id.
func delegatedDRep(id, drepType *string) *string {
	if drepType != nil {
		var name string
		switch strings.ToUpper(*drepType) {
		case "ABSTAIN":
			name = "drep_always_abstain"
		case "NO_CONFIDENCE":
			name = "drep_always_no_confidence"
		}
		if name != "" {
			return &name
		}
	}
	if id == nil || *id == "" {
		return nil
	}
	normalized := cip129.NormalizeDRepIDOrOriginal(*id)
	return &normalized
}
