package governance

import (
	"context"
	"encoding/json"
)

type DRepStats struct {
	ActiveDRepsCount *uint32 `json:"active_dreps_count"`
}

type EpochStartTime struct {
	Epoch     uint32 `json:"epoch"`
	StartTime uint64 `json:"start_time"`
}

// IGovernanceUsecase is the request-facing read API. Identifiers are
// accepted in any supported encoding and a missing entity is reported as a
// NotFoundError.
type IGovernanceUsecase interface {
	ListDReps(ctx context.Context, query DRepsQuery) (DRepsPage, error)
	GetDRep(ctx context.Context, id string) (DRep, error)
	GetDRepDelegators(ctx context.Context, id string) ([]DRepDelegator, error)
	GetDRepVotingHistory(ctx context.Context, id string) ([]DRepVotingHistory, error)
	GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error)
	GetDRepStats(ctx context.Context) (DRepStats, error)
	ListActions(ctx context.Context, page, count int) (ActionsPage, error)
	GetAction(ctx context.Context, id string) (GovernanceAction, error)
	GetActionVotingResults(ctx context.Context, id string) (ActionVotingBreakdown, error)
	ListStakePools(ctx context.Context, page, count int) (StakePoolPage, error)
	GetCommitteeMembers(ctx context.Context) ([]CommitteeMember, error)
	GetStakeDelegation(ctx context.Context, stakeAddress string) (StakeDelegation, error)
	GetEpochStartTime(ctx context.Context, epoch uint32) (EpochStartTime, error)
}
