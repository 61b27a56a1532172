package governance

import (
	"context"
	"encoding/json"
)

type DRepStatus string

const (
	DRepStatusActive   DRepStatus = "active"
	DRepStatusInactive DRepStatus = "inactive"
	DRepStatusRetired  DRepStatus = "retired"
)

// DRepsQuery selects one page of DReps. Page is 1-based.
type DRepsQuery struct {
	Page   int        `json:"page"`
	Count  int        `json:"count"`
	Status DRepStatus `json:"status,omitempty"`
	Search string     `json:"search,omitempty"`
}

type Anchor struct {
	URL      string `json:"url"`
	DataHash string `json:"data_hash"`
}

type DRep struct {
	DRepID             string          `json:"drep_id"`
	DRepHash           string          `json:"drep_hash,omitempty"`
	Hex                *string         `json:"hex,omitempty"`
	View               *string         `json:"view,omitempty"`
	URL                *string         `json:"url,omitempty"`
	GivenName          *string         `json:"given_name,omitempty"`
	HasProfile         *bool           `json:"has_profile,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
	Anchor             *Anchor         `json:"anchor,omitempty"`
	VotingPower        *string         `json:"voting_power,omitempty"`
	VotingPowerActive  *string         `json:"voting_power_active,omitempty"`
	Status             DRepStatus      `json:"status,omitempty"`
	RegistrationTxHash *string         `json:"registration_tx_hash,omitempty"`
	RegistrationEpoch  *uint32         `json:"registration_epoch,omitempty"`
}

type DRepsPage struct {
	DReps   []DRep  `json:"dreps"`
	HasMore bool    `json:"has_more"`
	Total   *uint64 `json:"total,omitempty"`
}

type DRepDelegator struct {
	StakeAddress string  `json:"stake_address"`
	Amount       *string `json:"amount,omitempty"`
	TxHash       *string `json:"tx_hash,omitempty"`
	Epoch        *uint32 `json:"epoch,omitempty"`
}

type DRepVotingHistory struct {
	ActionID    string      `json:"action_id"`
	Vote        *VoteChoice `json:"vote,omitempty"`
	VotingPower *string     `json:"voting_power,omitempty"`
	TxHash      *string     `json:"tx_hash,omitempty"`
	Epoch       *uint32     `json:"epoch,omitempty"`
	BlockTime   *uint64     `json:"block_time,omitempty"`
}

type GovernanceAction struct {
	ActionID      string          `json:"action_id"`
	TxHash        string          `json:"tx_hash"`
	Index         uint32          `json:"index"`
	Type          string          `json:"type"`
	Deposit       *string         `json:"deposit,omitempty"`
	RewardAccount *string         `json:"reward_account,omitempty"`
	Status        *string         `json:"status,omitempty"`
	ProposedEpoch *uint32         `json:"proposed_epoch,omitempty"`
	ExpiryEpoch   *uint32         `json:"expiry_epoch,omitempty"`
	RatifiedEpoch *uint32         `json:"ratified_epoch,omitempty"`
	EnactedEpoch  *uint32         `json:"enacted_epoch,omitempty"`
	Anchor        *Anchor         `json:"anchor,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
	BlockTime     *uint64         `json:"block_time,omitempty"`
}

type ActionsPage struct {
	Actions []GovernanceAction `json:"actions"`
	HasMore bool               `json:"has_more"`
	Total   *uint64            `json:"total,omitempty"`
}

// VoteTally holds lovelace sums as decimal strings; they overflow uint64 on mainnet.
type VoteTally struct {
	Yes     string `json:"yes"`
	No      string `json:"no"`
	Abstain string `json:"abstain"`
}

type ActionVotingBreakdown struct {
	DRepVotes        VoteTally `json:"drep_votes"`
	SPOVotes         VoteTally `json:"spo_votes"`
	CCVotes          VoteTally `json:"cc_votes"`
	TotalVotingPower string    `json:"total_voting_power"`
}

func EmptyVoteTally() VoteTally {
	return VoteTally{Yes: "0", No: "0", Abstain: "0"}
}

func EmptyVotingBreakdown() ActionVotingBreakdown {
	return ActionVotingBreakdown{
		DRepVotes:        EmptyVoteTally(),
		SPOVotes:         EmptyVoteTally(),
		CCVotes:          EmptyVoteTally(),
		TotalVotingPower: "0",
	}
}

type StakeDelegation struct {
	StakeAddress     string  `json:"stake_address"`
	DelegatedPool    *string `json:"delegated_pool"`
	DelegatedDRep    *string `json:"delegated_drep"`
	TotalBalance     *string `json:"total_balance"`
	UtxoBalance      *string `json:"utxo_balance"`
	RewardsAvailable *string `json:"rewards_available"`
}

type StakePool struct {
	PoolID        string  `json:"pool_id"`
	Hex           *string `json:"hex,omitempty"`
	Ticker        *string `json:"ticker,omitempty"`
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Homepage      *string `json:"homepage,omitempty"`
	RetiringEpoch *uint32 `json:"retiring_epoch,omitempty"`
}

type StakePoolPage struct {
	Pools   []StakePool `json:"pools"`
	HasMore bool        `json:"has_more"`
	Total   *uint64     `json:"total,omitempty"`
}

type CommitteeMember struct {
	Identifier  string  `json:"identifier"`
	Role        *string `json:"role,omitempty"`
	HotKey      *string `json:"hot_key,omitempty"`
	ColdKey     *string `json:"cold_key,omitempty"`
	ExpiryEpoch *uint32 `json:"expiry_epoch,omitempty"`
}

// VoteRecord is one raw vote event for a governance action.
type VoteRecord struct {
	VoterIdentifier string      `json:"voter_identifier"`
	VoterType       VoterType   `json:"voter_type"`
	Vote            *VoteChoice `json:"vote,omitempty"`
	VotingPower     *string     `json:"voting_power,omitempty"`
	TxHash          *string     `json:"tx_hash,omitempty"`
	CertIndex       *uint32     `json:"cert_index,omitempty"`
	BlockTime       *uint64     `json:"block_time,omitempty"`
}

// SyncStatus describes how far the indexer behind the provider has caught up.
type SyncStatus struct {
	Connected         bool     `json:"connected"`
	LatestBlockNumber *uint64  `json:"latest_block,omitempty"`
	LatestBlockSlot   *uint64  `json:"latest_block_slot,omitempty"`
	LatestBlockTime   *int64   `json:"latest_block_time,omitempty"`
	TotalBlocks       *uint64  `json:"total_blocks,omitempty"`
	LatestEpoch       *uint32  `json:"latest_epoch,omitempty"`
	SyncProgress      *float64 `json:"sync_progress,omitempty"`
}

// IProvider is the read capability over an indexed governance data store.
// Identifiers are expected to be normalized already. A missing entity is
// reported as a nil result with a nil error.
type IProvider interface {
	GetDRepsPage(ctx context.Context, query DRepsQuery) (DRepsPage, error)
	GetDRep(ctx context.Context, id string) (*DRep, error)
	GetDRepDelegators(ctx context.Context, id string) ([]DRepDelegator, error)
	GetDRepVotingHistory(ctx context.Context, id string) ([]DRepVotingHistory, error)
	GetGovernanceActionsPage(ctx context.Context, page, count int) (ActionsPage, error)
	GetGovernanceAction(ctx context.Context, id string) (*GovernanceAction, error)
	GetActionVotingResults(ctx context.Context, id string) (ActionVotingBreakdown, error)
	GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error)
	GetTotalActiveDReps(ctx context.Context) (*uint32, error)
	GetStakeDelegation(ctx context.Context, stakeAddress string) (*StakeDelegation, error)
	GetActionVoteRecords(ctx context.Context, action GovernanceAction) ([]VoteRecord, error)
	GetStakePoolsPage(ctx context.Context, page, count int) (StakePoolPage, error)
	GetCommitteeMembers(ctx context.Context) ([]CommitteeMember, error)
	GetEpochStartTime(ctx context.Context, epoch uint32) (*uint64, error)
	GetSyncStatus(ctx context.Context) (SyncStatus, error)
	HealthCheck(ctx context.Context) (bool, error)
}
