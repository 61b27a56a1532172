package yacistore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/pkg/cip129"
)

// latestDReps is one row per DRep: its newest certificate state plus the
// newest stake distribution, anchor and registration.
const latestDReps = `
SELECT d.drep_id, d.drep_hash, d.status,
	(SELECT dd.amount FROM drep_dist dd WHERE dd.drep_hash = d.drep_hash ORDER BY dd.epoch DESC LIMIT 1) AS voting_power,
	(SELECT r.anchor_url FROM drep_registration r WHERE r.drep_hash = d.drep_hash AND r.anchor_url IS NOT NULL ORDER BY r.slot DESC, r.cert_index DESC LIMIT 1) AS anchor_url,
	(SELECT r.anchor_hash FROM drep_registration r WHERE r.drep_hash = d.drep_hash AND r.anchor_url IS NOT NULL ORDER BY r.slot DESC, r.cert_index DESC LIMIT 1) AS anchor_hash,
	(SELECT r.tx_hash FROM drep_registration r WHERE r.drep_hash = d.drep_hash AND r.type = 'REG_DREP_CERT' ORDER BY r.slot DESC LIMIT 1) AS registration_tx_hash,
	(SELECT r.epoch FROM drep_registration r WHERE r.drep_hash = d.drep_hash AND r.type = 'REG_DREP_CERT' ORDER BY r.slot DESC LIMIT 1) AS registration_epoch
FROM drep d
WHERE d.slot = (SELECT MAX(d2.slot) FROM drep d2 WHERE d2.drep_hash = d.drep_hash)
	AND d.cert_index = (SELECT MAX(d3.cert_index) FROM drep d3 WHERE d3.drep_hash = d.drep_hash AND d3.slot = d.slot)`

type drepResult struct {
	DRepID             string  `gorm:"column:drep_id"`
	DRepHash           string  `gorm:"column:drep_hash"`
	Status             string  `gorm:"column:status"`
	VotingPower        *string `gorm:"column:voting_power"`
	AnchorURL          *string `gorm:"column:anchor_url"`
	AnchorHash         *string `gorm:"column:anchor_hash"`
	RegistrationTxHash *string `gorm:"column:registration_tx_hash"`
	RegistrationEpoch  *uint32 `gorm:"column:registration_epoch"`
}

func (r drepResult) toDomain() governance.DRep {
	status := governance.DRepStatus(strings.ToLower(r.Status))
	view := r.DRepID
	hex := r.DRepHash
	d := governance.DRep{
		DRepID:             cip129.NormalizeDRepIDOrOriginal(r.DRepID),
		DRepHash:           r.DRepHash,
		Hex:                &hex,
		View:               &view,
		URL:                r.AnchorURL,
		VotingPower:        r.VotingPower,
		Status:             status,
		RegistrationTxHash: r.RegistrationTxHash,
		RegistrationEpoch:  r.RegistrationEpoch,
	}
	hasProfile := r.AnchorURL != nil
	d.HasProfile = &hasProfile
	if r.AnchorURL != nil {
		d.Anchor = &governance.Anchor{URL: *r.AnchorURL}
		if r.AnchorHash != nil {
			d.Anchor.DataHash = *r.AnchorHash
		}
	}
	if status == governance.DRepStatusActive {
		d.VotingPowerActive = r.VotingPower
	}
	return d
}

// drepFilter matches a normalized DRep id by credential hash, falling back
// to the raw drep_id column for ids that do not parse.
func drepFilter(id string) (string, any) {
	if cred, err := cip129.ParseDRep(id); err == nil {
		return "x.drep_hash = ?", cred.HashHex()
	}
	return "x.drep_id = ?", id
}

func (p *Provider) GetDRepsPage(ctx context.Context, q governance.DRepsQuery) (governance.DRepsPage, error) {
	var (
		where []string
		args  []any
	)
	if q.Status != "" {
		where = append(where, "UPPER(x.status) = ?")
		args = append(args, strings.ToUpper(string(q.Status)))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		cond := "(LOWER(x.drep_id) LIKE ? OR LOWER(x.drep_hash) LIKE ?"
		args = append(args, like, like)
		if cred, err := cip129.ParseDRep(s); err == nil {
			cond += " OR x.drep_hash = ?"
			args = append(args, cred.HashHex())
		}
		where = append(where, cond+")")
	}
	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	total, err := p.count(ctx, "SELECT COUNT(*) FROM ("+latestDReps+") x"+filter, args...)
	if err != nil {
		return governance.DRepsPage{}, fmt.Errorf("failed to count dreps: %w", err)
	}

	limit, offset := pageBounds(q.Page, q.Count)
	var rows []drepResult
	err = p.query(ctx, &rows,
		"SELECT * FROM ("+latestDReps+") x"+filter+" ORDER BY COALESCE(x.voting_power, 0) DESC, x.drep_id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return governance.DRepsPage{}, fmt.Errorf("failed to list dreps: %w", err)
	}

	rows, hasMore := trimPage(rows, q.Count)
	page := governance.DRepsPage{DReps: make([]governance.DRep, 0, len(rows)), HasMore: hasMore, Total: &total}
	for _, r := range rows {
		page.DReps = append(page.DReps, r.toDomain())
	}
	return page, nil
}

func (p *Provider) GetDRep(ctx context.Context, id string) (*governance.DRep, error) {
	cond, arg := drepFilter(id)
	var rows []drepResult
	if err := p.query(ctx, &rows, "SELECT * FROM ("+latestDReps+") x WHERE "+cond+" LIMIT 1", arg); err != nil {
		return nil, fmt.Errorf("failed to get drep %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	d := rows[0].toDomain()
	return &d, nil
}

func (p *Provider) GetTotalActiveDReps(ctx context.Context) (*uint32, error) {
	n, err := p.count(ctx, "SELECT COUNT(*) FROM ("+latestDReps+") x WHERE UPPER(x.status) = 'ACTIVE'")
	if err != nil {
		return nil, fmt.Errorf("failed to count active dreps: %w", err)
	}
	total := uint32(n)
	return &total, nil
}

type delegatorResult struct {
	Address string  `gorm:"column:address"`
	TxHash  string  `gorm:"column:tx_hash"`
	Epoch   uint32  `gorm:"column:epoch"`
	Amount  *string `gorm:"column:amount"`
}

// GetDRepDelegators lists stake addresses whose latest vote delegation
// points at the DRep, largest balance first.
func (p *Provider) GetDRepDelegators(ctx context.Context, id string) ([]governance.DRepDelegator, error) {
	cred, err := cip129.ParseDRep(id)
	if err != nil {
		return []governance.DRepDelegator{}, nil
	}

	var rows []delegatorResult
	err = p.query(ctx, &rows, `
SELECT dv.address, dv.tx_hash, dv.epoch,
	(SELECT b.quantity FROM stake_address_balance b WHERE b.address = dv.address ORDER BY b.slot DESC LIMIT 1) AS amount
FROM delegation_vote dv
WHERE dv.drep_hash = ?
	AND dv.slot = (SELECT MAX(dv2.slot) FROM delegation_vote dv2 WHERE dv2.address = dv.address)
	AND NOT EXISTS (
		SELECT 1 FROM delegation_vote dv3
		WHERE dv3.address = dv.address AND dv3.slot = dv.slot AND dv3.cert_index > dv.cert_index)`, cred.HashHex())
	if err != nil {
		return nil, fmt.Errorf("failed to list delegators of %s: %w", id, err)
	}

	out := make([]governance.DRepDelegator, 0, len(rows))
	for _, r := range rows {
		txHash, epoch := r.TxHash, r.Epoch
		out = append(out, governance.DRepDelegator{
			StakeAddress: r.Address,
			Amount:       r.Amount,
			TxHash:       &txHash,
			Epoch:        &epoch,
		})
	}
	sortDelegators(out)
	return out, nil
}

type drepVoteResult struct {
	GovActionTxHash string  `gorm:"column:gov_action_tx_hash"`
	GovActionIndex  uint32  `gorm:"column:gov_action_index"`
	Vote            string  `gorm:"column:vote"`
	TxHash          string  `gorm:"column:tx_hash"`
	Epoch           uint32  `gorm:"column:epoch"`
	BlockTime       *uint64 `gorm:"column:block_time"`
	VotingPower     *string `gorm:"column:voting_power"`
}

// GetDRepVotingHistory returns every vote the DRep cast, newest first.
// Voting power is the DRep's stake distribution in the vote's epoch.
func (p *Provider) GetDRepVotingHistory(ctx context.Context, id string) ([]governance.DRepVotingHistory, error) {
	cred, err := cip129.ParseDRep(id)
	if err != nil {
		return []governance.DRepVotingHistory{}, nil
	}
	voterType := "DREP_KEY_HASH"
	if cred.Script {
		voterType = "DREP_SCRIPT_HASH"
	}

	var rows []drepVoteResult
	err = p.query(ctx, &rows, `
SELECT vp.gov_action_tx_hash, vp.gov_action_index, vp.vote, vp.tx_hash, vp.epoch, vp.block_time,
	(SELECT dd.amount FROM drep_dist dd WHERE dd.drep_hash = vp.voter_hash AND dd.epoch <= vp.epoch ORDER BY dd.epoch DESC LIMIT 1) AS voting_power
FROM voting_procedure vp
WHERE vp.voter_hash = ? AND vp.voter_type = ?
ORDER BY vp.slot DESC, vp.idx DESC`, cred.HashHex(), voterType)
	if err != nil {
		return nil, fmt.Errorf("failed to get voting history of %s: %w", id, err)
	}

	out := make([]governance.DRepVotingHistory, 0, len(rows))
	for _, r := range rows {
		txHash, epoch := r.TxHash, r.Epoch
		out = append(out, governance.DRepVotingHistory{
			ActionID:    cip129.ActionRef{TxHash: r.GovActionTxHash, Index: r.GovActionIndex}.String(),
			Vote:        governance.ParseVoteChoice(r.Vote),
			VotingPower: r.VotingPower,
			TxHash:      &txHash,
			Epoch:       &epoch,
			BlockTime:   r.BlockTime,
		})
	}
	return out, nil
}

// GetDRepMetadata returns the DRep's anchor as a JSON document, or nil when
// the DRep is unknown or never published an anchor. Off-chain content is
// not fetched.
func (p *Provider) GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error) {
	d, err := p.GetDRep(ctx, id)
	if err != nil || d == nil || d.Anchor == nil {
		return nil, err
	}
	doc, err := json.Marshal(map[string]any{
		"json_metadata": nil,
		"url":           d.Anchor.URL,
		"hash":          d.Anchor.DataHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata of %s: %w", id, err)
	}
	return doc, nil
}
