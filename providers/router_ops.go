package providers

import (
	"context"
	"encoding/json"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/domains/governance"
)

const (
	OpDRepsPage           = "get_dreps_page"
	OpDRep                = "get_drep"
	OpDRepDelegators      = "get_drep_delegators"
	OpDRepVotingHistory   = "get_drep_voting_history"
	OpActionsPage         = "get_governance_actions_page"
	OpAction              = "get_governance_action"
	OpActionVotingResults = "get_action_voting_results"
	OpDRepMetadata        = "get_drep_metadata"
	OpTotalActiveDReps    = "get_total_active_dreps"
	OpStakeDelegation     = "get_stake_delegation"
	OpActionVoteRecords   = "get_action_vote_records"
	OpStakePoolsPage      = "get_stake_pools_page"
	OpCommitteeMembers    = "get_committee_members"
	OpEpochStartTime      = "get_epoch_start_time"
	OpSyncStatus          = "get_sync_status"

	// OpActionParticipation caches derived participation reports.
	OpActionParticipation = "get_action_participation"
)

// TTL class per operation. Per-action and per-epoch data barely changes once
// indexed; paged lists grow as new blocks arrive.
var opClasses = map[string]domainCache.TTLClass{
	OpDRepsPage:           domainCache.TTLList,
	OpDRep:                domainCache.TTLEntity,
	OpDRepDelegators:      domainCache.TTLList,
	OpDRepVotingHistory:   domainCache.TTLList,
	OpActionsPage:         domainCache.TTLList,
	OpAction:              domainCache.TTLEntity,
	OpActionVotingResults: domainCache.TTLParticipation,
	OpDRepMetadata:        domainCache.TTLStatic,
	OpTotalActiveDReps:    domainCache.TTLList,
	OpStakeDelegation:     domainCache.TTLEntity,
	OpActionVoteRecords:   domainCache.TTLParticipation,
	OpStakePoolsPage:      domainCache.TTLList,
	OpCommitteeMembers:    domainCache.TTLEntity,
	OpEpochStartTime:      domainCache.TTLStatic,
	OpSyncStatus:          domainCache.TTLStatus,
	OpActionParticipation: domainCache.TTLParticipation,
}

func ClassOf(op string) domainCache.TTLClass {
	if class, ok := opClasses[op]; ok {
		return class
	}
	return domainCache.TTLEntity
}

func (r *CachedProviderRouter) GetDRepsPage(ctx context.Context, query governance.DRepsQuery) (governance.DRepsPage, error) {
	return Cached(ctx, r, OpDRepsPage, ClassOf(OpDRepsPage), []any{query}, func(ctx context.Context) (governance.DRepsPage, error) {
		return r.provider.GetDRepsPage(ctx, query)
	})
}

func (r *CachedProviderRouter) GetDRep(ctx context.Context, id string) (*governance.DRep, error) {
	return Cached(ctx, r, OpDRep, ClassOf(OpDRep), []any{id}, func(ctx context.Context) (*governance.DRep, error) {
		return r.provider.GetDRep(ctx, id)
	})
}

func (r *CachedProviderRouter) GetDRepDelegators(ctx context.Context, id string) ([]governance.DRepDelegator, error) {
	return Cached(ctx, r, OpDRepDelegators, ClassOf(OpDRepDelegators), []any{id}, func(ctx context.Context) ([]governance.DRepDelegator, error) {
		return r.provider.GetDRepDelegators(ctx, id)
	})
}

func (r *CachedProviderRouter) GetDRepVotingHistory(ctx context.Context, id string) ([]governance.DRepVotingHistory, error) {
	return Cached(ctx, r, OpDRepVotingHistory, ClassOf(OpDRepVotingHistory), []any{id}, func(ctx context.Context) ([]governance.DRepVotingHistory, error) {
		return r.provider.GetDRepVotingHistory(ctx, id)
	})
}

func (r *CachedProviderRouter) GetGovernanceActionsPage(ctx context.Context, page, count int) (governance.ActionsPage, error) {
	return Cached(ctx, r, OpActionsPage, ClassOf(OpActionsPage), []any{page, count}, func(ctx context.Context) (governance.ActionsPage, error) {
		return r.provider.GetGovernanceActionsPage(ctx, page, count)
	})
}

func (r *CachedProviderRouter) GetGovernanceAction(ctx context.Context, id string) (*governance.GovernanceAction, error) {
	return Cached(ctx, r, OpAction, ClassOf(OpAction), []any{id}, func(ctx context.Context) (*governance.GovernanceAction, error) {
		return r.provider.GetGovernanceAction(ctx, id)
	})
}

func (r *CachedProviderRouter) GetActionVotingResults(ctx context.Context, id string) (governance.ActionVotingBreakdown, error) {
	return Cached(ctx, r, OpActionVotingResults, ClassOf(OpActionVotingResults), []any{id}, func(ctx context.Context) (governance.ActionVotingBreakdown, error) {
		return r.provider.GetActionVotingResults(ctx, id)
	})
}

func (r *CachedProviderRouter) GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error) {
	return Cached(ctx, r, OpDRepMetadata, ClassOf(OpDRepMetadata), []any{id}, func(ctx context.Context) (json.RawMessage, error) {
		return r.provider.GetDRepMetadata(ctx, id)
	})
}

func (r *CachedProviderRouter) GetTotalActiveDReps(ctx context.Context) (*uint32, error) {
	return Cached(ctx, r, OpTotalActiveDReps, ClassOf(OpTotalActiveDReps), nil, func(ctx context.Context) (*uint32, error) {
		return r.provider.GetTotalActiveDReps(ctx)
	})
}

func (r *CachedProviderRouter) GetStakeDelegation(ctx context.Context, stakeAddress string) (*governance.StakeDelegation, error) {
	return Cached(ctx, r, OpStakeDelegation, ClassOf(OpStakeDelegation), []any{stakeAddress}, func(ctx context.Context) (*governance.StakeDelegation, error) {
		return r.provider.GetStakeDelegation(ctx, stakeAddress)
	})
}

// GetActionVoteRecords is keyed by the action id only.
func (r *CachedProviderRouter) GetActionVoteRecords(ctx context.Context, action governance.GovernanceAction) ([]governance.VoteRecord, error) {
	return Cached(ctx, r, OpActionVoteRecords, ClassOf(OpActionVoteRecords), []any{action.ActionID}, func(ctx context.Context) ([]governance.VoteRecord, error) {
		return r.provider.GetActionVoteRecords(ctx, action)
	})
}

func (r *CachedProviderRouter) GetStakePoolsPage(ctx context.Context, page, count int) (governance.StakePoolPage, error) {
	return Cached(ctx, r, OpStakePoolsPage, ClassOf(OpStakePoolsPage), []any{page, count}, func(ctx context.Context) (governance.StakePoolPage, error) {
		return r.provider.GetStakePoolsPage(ctx, page, count)
	})
}

func (r *CachedProviderRouter) GetCommitteeMembers(ctx context.Context) ([]governance.CommitteeMember, error) {
	return Cached(ctx, r, OpCommitteeMembers, ClassOf(OpCommitteeMembers), nil, func(ctx context.Context) ([]governance.CommitteeMember, error) {
		return r.provider.GetCommitteeMembers(ctx)
	})
}

func (r *CachedProviderRouter) GetEpochStartTime(ctx context.Context, epoch uint32) (*uint64, error) {
	return Cached(ctx, r, OpEpochStartTime, ClassOf(OpEpochStartTime), []any{epoch}, func(ctx context.Context) (*uint64, error) {
		return r.provider.GetEpochStartTime(ctx, epoch)
	})
}

func (r *CachedProviderRouter) GetSyncStatus(ctx context.Context) (governance.SyncStatus, error) {
	return Cached(ctx, r, OpSyncStatus, ClassOf(OpSyncStatus), nil, func(ctx context.Context) (governance.SyncStatus, error) {
		return r.provider.GetSyncStatus(ctx)
	})
}

// HealthCheck always asks the provider; liveness is never served from cache.
func (r *CachedProviderRouter) HealthCheck(ctx context.Context) (bool, error) {
	return r.provider.HealthCheck(ctx)
}
