package participation

import (
	"context"

	"github.com/govtwool/govtwool-backend/domains/governance"
)

type Summary struct {
	TotalEligible     int      `json:"total_eligible"`
	TotalVoted        int      `json:"total_voted"`
	TotalMissing      int      `json:"total_missing"`
	TurnoutPercentage *float64 `json:"turnout_percentage,omitempty"`
}

type Group[T any] struct {
	Summary      Summary `json:"summary"`
	Participants []T     `json:"participants"`
}

// EligibleDRep is a DRep that may vote on an action, with its optional
// profile fields. Absent fields stay nil.
type EligibleDRep struct {
	DRepID     string
	GivenName  *string
	View       *string
	Hex        *string
	HasProfile *bool
}

type EligiblePool struct {
	PoolID      string
	Ticker      *string
	Name        *string
	Description *string
	Homepage    *string
}

type EligibleCommitteeMember = governance.CommitteeMember

// VoteFields is the part of a participant filled from its resolved vote.
type VoteFields struct {
	HasVoted    bool                   `json:"has_voted"`
	Vote        *governance.VoteChoice `json:"vote,omitempty"`
	VotingPower *string                `json:"voting_power,omitempty"`
	TxHash      *string                `json:"tx_hash,omitempty"`
	CertIndex   *uint32                `json:"cert_index,omitempty"`
	BlockTime   *uint64                `json:"block_time,omitempty"`
}

type DRepParticipant struct {
	DRepID     string  `json:"drep_id"`
	GivenName  *string `json:"given_name,omitempty"`
	View       *string `json:"view,omitempty"`
	Hex        *string `json:"hex,omitempty"`
	HasProfile *bool   `json:"has_profile,omitempty"`
	VoteFields
}

type StakePoolParticipant struct {
	PoolID      string  `json:"pool_id"`
	Ticker      *string `json:"ticker,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Homepage    *string `json:"homepage,omitempty"`
	VoteFields
}

type CommitteeParticipant struct {
	Identifier  string  `json:"identifier"`
	Role        *string `json:"role,omitempty"`
	HotKey      *string `json:"hot_key,omitempty"`
	ColdKey     *string `json:"cold_key,omitempty"`
	ExpiryEpoch *uint32 `json:"expiry_epoch,omitempty"`
	VoteFields
}

type ActionVoterParticipation struct {
	ActionID   string                      `json:"action_id"`
	DReps      Group[DRepParticipant]      `json:"dreps"`
	StakePools Group[StakePoolParticipant] `json:"stake_pools"`
	Committee  Group[CommitteeParticipant] `json:"committee"`
}

type IParticipationUsecase interface {
	GetActionParticipation(ctx context.Context, actionID string) (ActionVoterParticipation, error)
}
