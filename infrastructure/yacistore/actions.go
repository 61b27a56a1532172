package yacistore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/domains/participation"
	"github.com/govtwool/govtwool-backend/pkg/cip129"
)

const actionsSelect = `
SELECT p.tx_hash, p.idx, p.type, p.deposit, p.return_address, p.anchor_url, p.anchor_hash,
	p.details, p.epoch, p.block_time,
	(SELECT s.status FROM gov_action_proposal_status s
		WHERE s.gov_action_tx_hash = p.tx_hash AND s.gov_action_index = p.idx
		ORDER BY s.epoch DESC LIMIT 1) AS status,
	(SELECT MIN(s.epoch) FROM gov_action_proposal_status s
		WHERE s.gov_action_tx_hash = p.tx_hash AND s.gov_action_index = p.idx AND s.status = 'RATIFIED') AS ratified_epoch,
	(SELECT MIN(s.epoch) FROM gov_action_proposal_status s
		WHERE s.gov_action_tx_hash = p.tx_hash AND s.gov_action_index = p.idx AND s.status = 'ENACTED') AS enacted_epoch
FROM gov_action_proposal p`

type actionResult struct {
	TxHash        string  `gorm:"column:tx_hash"`
	Idx           uint32  `gorm:"column:idx"`
	Type          string  `gorm:"column:type"`
	Deposit       *string `gorm:"column:deposit"`
	ReturnAddress *string `gorm:"column:return_address"`
	AnchorURL     *string `gorm:"column:anchor_url"`
	AnchorHash    *string `gorm:"column:anchor_hash"`
	Details       *string `gorm:"column:details"`
	Epoch         uint32  `gorm:"column:epoch"`
	BlockTime     *uint64 `gorm:"column:block_time"`
	Status        *string `gorm:"column:status"`
	RatifiedEpoch *uint32 `gorm:"column:ratified_epoch"`
	EnactedEpoch  *uint32 `gorm:"column:enacted_epoch"`
}

// actionType maps indexer names like PARAMETER_CHANGE_ACTION to
// parameter_change.
func actionType(raw string) string {
	return strings.TrimSuffix(strings.ToLower(raw), "_action")
}

// actionStatus maps the latest proposal status row. Proposals the indexer
// has not evaluated yet are submitted; ACTIVE ones are open for voting.
func actionStatus(raw *string) string {
	if raw == nil {
		return "submitted"
	}
	switch s := strings.ToLower(*raw); s {
	case "active":
		return "voting"
	default:
		return s
	}
}

func (p *Provider) toAction(r actionResult) governance.GovernanceAction {
	ref := cip129.ActionRef{TxHash: r.TxHash, Index: r.Idx}
	proposed := r.Epoch
	expiry := r.Epoch + p.govActionLifetime
	status := actionStatus(r.Status)
	a := governance.GovernanceAction{
		ActionID:      ref.String(),
		TxHash:        r.TxHash,
		Index:         r.Idx,
		Type:          actionType(r.Type),
		Deposit:       r.Deposit,
		RewardAccount: r.ReturnAddress,
		Status:        &status,
		ProposedEpoch: &proposed,
		ExpiryEpoch:   &expiry,
		RatifiedEpoch: r.RatifiedEpoch,
		EnactedEpoch:  r.EnactedEpoch,
		BlockTime:     r.BlockTime,
	}
	if r.AnchorURL != nil {
		a.Anchor = &governance.Anchor{URL: *r.AnchorURL}
		if r.AnchorHash != nil {
			a.Anchor.DataHash = *r.AnchorHash
		}
	}
	if r.Details != nil && json.Valid([]byte(*r.Details)) {
		a.Details = json.RawMessage(*r.Details)
	}
	return a
}

func (p *Provider) GetGovernanceActionsPage(ctx context.Context, page, count int) (governance.ActionsPage, error) {
	total, err := p.count(ctx, `SELECT COUNT(*) FROM gov_action_proposal`)
	if err != nil {
		return governance.ActionsPage{}, fmt.Errorf("failed to count governance actions: %w", err)
	}

	limit, offset := pageBounds(page, count)
	var rows []actionResult
	if err := p.query(ctx, &rows, actionsSelect+` ORDER BY p.slot DESC, p.idx ASC LIMIT ? OFFSET ?`, limit, offset); err != nil {
		return governance.ActionsPage{}, fmt.Errorf("failed to list governance actions: %w", err)
	}

	rows, hasMore := trimPage(rows, count)
	out := governance.ActionsPage{Actions: make([]governance.GovernanceAction, 0, len(rows)), HasMore: hasMore, Total: &total}
	for _, r := range rows {
		out.Actions = append(out.Actions, p.toAction(r))
	}
	return out, nil
}

// GetGovernanceAction accepts txhash#index or gov_action1...; anything else
// is reported as not found.
func (p *Provider) GetGovernanceAction(ctx context.Context, id string) (*governance.GovernanceAction, error) {
	ref, err := cip129.ParseAction(id)
	if err != nil {
		return nil, nil
	}
	var rows []actionResult
	if err := p.query(ctx, &rows, actionsSelect+` WHERE p.tx_hash = ? AND p.idx = ? LIMIT 1`, ref.TxHash, ref.Index); err != nil {
		return nil, fmt.Errorf("failed to get governance action %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	a := p.toAction(rows[0])
	return &a, nil
}

type voteResult struct {
	VoterType   string  `gorm:"column:voter_type"`
	VoterHash   string  `gorm:"column:voter_hash"`
	Vote        string  `gorm:"column:vote"`
	TxHash      string  `gorm:"column:tx_hash"`
	Idx         uint32  `gorm:"column:idx"`
	BlockTime   *uint64 `gorm:"column:block_time"`
	VotingPower *string `gorm:"column:voting_power"`
}

// DRep power is the stake distribution of the vote's epoch; pool power is
// the pool's active stake in the latest snapshot at or before it.
const actionVotes = `
SELECT vp.voter_type, vp.voter_hash, vp.vote, vp.tx_hash, vp.idx, vp.block_time,
	CASE
		WHEN vp.voter_type IN ('DREP_KEY_HASH', 'DREP_SCRIPT_HASH') THEN
			(SELECT dd.amount FROM drep_dist dd WHERE dd.drep_hash = vp.voter_hash AND dd.epoch <= vp.epoch ORDER BY dd.epoch DESC LIMIT 1)
		WHEN vp.voter_type = 'STAKING_POOL_KEY_HASH' THEN
			(SELECT SUM(es.amount) FROM epoch_stake es WHERE es.pool_id = vp.voter_hash
				AND es.epoch = (SELECT MAX(es2.epoch) FROM epoch_stake es2 WHERE es2.epoch <= vp.epoch))
	END AS voting_power
FROM voting_procedure vp
WHERE vp.gov_action_tx_hash = ? AND vp.gov_action_index = ?
ORDER BY vp.slot ASC, vp.idx ASC`

// voterIdentifier renders the voter hash the way the eligible populations
// identify the same voter: CIP-129 DRep ids, pool1 ids, committee hot key hex.
func voterIdentifier(voterType governance.VoterType, rawType, hash string) string {
	switch voterType {
	case governance.VoterDRep:
		if cred, err := cip129.ParseDRep(hash); err == nil {
			cred.Script = strings.Contains(strings.ToUpper(rawType), "SCRIPT")
			if id, err := cred.DRepID(); err == nil {
				return id
			}
		}
	case governance.VoterSPO:
		return cip129.PoolID(hash)
	}
	return hash
}

// GetActionVoteRecords returns every vote event on the action in chain
// order, re-votes included. Events with an unknown voter type are skipped.
func (p *Provider) GetActionVoteRecords(ctx context.Context, action governance.GovernanceAction) ([]governance.VoteRecord, error) {
	ref := cip129.ActionRef{TxHash: action.TxHash, Index: action.Index}
	if ref.TxHash == "" {
		parsed, err := cip129.ParseAction(action.ActionID)
		if err != nil {
			return []governance.VoteRecord{}, nil
		}
		ref = parsed
	}

	var rows []voteResult
	if err := p.query(ctx, &rows, actionVotes, ref.TxHash, ref.Index); err != nil {
		return nil, fmt.Errorf("failed to get votes of %s: %w", ref, err)
	}

	out := make([]governance.VoteRecord, 0, len(rows))
	for _, r := range rows {
		voterType, ok := governance.ParseVoterType(r.VoterType)
		if !ok {
			continue
		}
		txHash, idx := r.TxHash, r.Idx
		out = append(out, governance.VoteRecord{
			VoterIdentifier: voterIdentifier(voterType, r.VoterType, r.VoterHash),
			VoterType:       voterType,
			Vote:            governance.ParseVoteChoice(r.Vote),
			VotingPower:     r.VotingPower,
			TxHash:          &txHash,
			CertIndex:       &idx,
			BlockTime:       r.BlockTime,
		})
	}
	return out, nil
}

// GetActionVotingResults sums the counting vote of each voter by category.
// Committee members weigh one each. An unknown action has an empty tally.
func (p *Provider) GetActionVotingResults(ctx context.Context, id string) (governance.ActionVotingBreakdown, error) {
	ref, err := cip129.ParseAction(id)
	if err != nil {
		return governance.EmptyVotingBreakdown(), nil
	}
	records, err := p.GetActionVoteRecords(ctx, governance.GovernanceAction{ActionID: ref.String(), TxHash: ref.TxHash, Index: ref.Index})
	if err != nil {
		return governance.ActionVotingBreakdown{}, err
	}

	var totals []amountResult
	if err := p.query(ctx, &totals, `SELECT SUM(amount) AS amount FROM drep_dist WHERE epoch = (SELECT MAX(epoch) FROM drep_dist)`); err != nil {
		return governance.ActionVotingBreakdown{}, fmt.Errorf("failed to sum drep stake: %w", err)
	}
	var total *string
	if len(totals) > 0 {
		total = totals[0].Amount
	}
	return tallyVotes(participation.LatestVotes(records), total), nil
}
