package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/pkg/cip129"
	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
	"github.com/govtwool/govtwool-backend/validations"
)

type governanceService struct {
	provider governance.IProvider
}

// NewGovernanceService serves reads through provider, normally the cached
// router.
func NewGovernanceService(provider governance.IProvider) governance.IGovernanceUsecase {
	return &governanceService{provider: provider}
}

func (s *governanceService) ListDReps(ctx context.Context, query governance.DRepsQuery) (governance.DRepsPage, error) {
	query = withDRepsDefaults(query)
	if err := validations.ValidateDRepsQuery(ctx, query); err != nil {
		return governance.DRepsPage{}, err
	}
	page, err := s.provider.GetDRepsPage(ctx, query)
	if err != nil {
		return governance.DRepsPage{}, err
	}
	if page.DReps == nil {
		page.DReps = []governance.DRep{}
	}
	return page, nil
}

func (s *governanceService) GetDRep(ctx context.Context, id string) (governance.DRep, error) {
	if err := validations.ValidateIdentifier(ctx, "drep_id", id); err != nil {
		return governance.DRep{}, err
	}
	drep, err := s.provider.GetDRep(ctx, normalizeDRepID(id))
	if err != nil {
		return governance.DRep{}, err
	}
	if drep == nil {
		return governance.DRep{}, pkgError.NotFoundError(fmt.Sprintf("drep %s not found", id))
	}
	return *drep, nil
}

func (s *governanceService) GetDRepDelegators(ctx context.Context, id string) ([]governance.DRepDelegator, error) {
	if err := validations.ValidateIdentifier(ctx, "drep_id", id); err != nil {
		return nil, err
	}
	delegators, err := s.provider.GetDRepDelegators(ctx, normalizeDRepID(id))
	if err != nil {
		return nil, err
	}
	if delegators == nil {
		delegators = []governance.DRepDelegator{}
	}
	return delegators, nil
}

func (s *governanceService) GetDRepVotingHistory(ctx context.Context, id string) ([]governance.DRepVotingHistory, error) {
	if err := validations.ValidateIdentifier(ctx, "drep_id", id); err != nil {
		return nil, err
	}
	history, err := s.provider.GetDRepVotingHistory(ctx, normalizeDRepID(id))
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []governance.DRepVotingHistory{}
	}
	return history, nil
}

func (s *governanceService) GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error) {
	if err := validations.ValidateIdentifier(ctx, "drep_id", id); err != nil {
		return nil, err
	}
	metadata, err := s.provider.GetDRepMetadata(ctx, normalizeDRepID(id))
	if err != nil {
		return nil, err
	}
	if len(metadata) == 0 {
		return nil, pkgError.NotFoundError(fmt.Sprintf("metadata of drep %s not found", id))
	}
	return metadata, nil
}

// GetDRepStats reports a nil count when the store cannot tell; that is not
// an error.
func (s *governanceService) GetDRepStats(ctx context.Context) (governance.DRepStats, error) {
	total, err := s.provider.GetTotalActiveDReps(ctx)
	if err != nil {
		return governance.DRepStats{}, err
	}
	return governance.DRepStats{ActiveDRepsCount: total}, nil
}

func (s *governanceService) ListActions(ctx context.Context, page, count int) (governance.ActionsPage, error) {
	req := withPageDefaults(validations.PageRequest{Page: page, Count: count})
	if err := validations.ValidatePage(ctx, req); err != nil {
		return governance.ActionsPage{}, err
	}
	out, err := s.provider.GetGovernanceActionsPage(ctx, req.Page, req.Count)
	if err != nil {
		return governance.ActionsPage{}, err
	}
	if out.Actions == nil {
		out.Actions = []governance.GovernanceAction{}
	}
	return out, nil
}

func (s *governanceService) GetAction(ctx context.Context, id string) (governance.GovernanceAction, error) {
	if err := validations.ValidateIdentifier(ctx, "action_id", id); err != nil {
		return governance.GovernanceAction{}, err
	}
	action, err := s.provider.GetGovernanceAction(ctx, normalizeActionID(id))
	if err != nil {
		return governance.GovernanceAction{}, err
	}
	if action == nil {
		return governance.GovernanceAction{}, pkgError.NotFoundError(fmt.Sprintf("governance action %s not found", id))
	}
	return *action, nil
}

func (s *governanceService) GetActionVotingResults(ctx context.Context, id string) (governance.ActionVotingBreakdown, error) {
	action, err := s.GetAction(ctx, id)
	if err != nil {
		return governance.ActionVotingBreakdown{}, err
	}
	return s.provider.GetActionVotingResults(ctx, action.ActionID)
}

func (s *governanceService) ListStakePools(ctx context.Context, page, count int) (governance.StakePoolPage, error) {
	req := withPageDefaults(validations.PageRequest{Page: page, Count: count})
	if err := validations.ValidatePage(ctx, req); err != nil {
		return governance.StakePoolPage{}, err
	}
	out, err := s.provider.GetStakePoolsPage(ctx, req.Page, req.Count)
	if err != nil {
		return governance.StakePoolPage{}, err
	}
	if out.Pools == nil {
		out.Pools = []governance.StakePool{}
	}
	return out, nil
}

func (s *governanceService) GetCommitteeMembers(ctx context.Context) ([]governance.CommitteeMember, error) {
	members, err := s.provider.GetCommitteeMembers(ctx)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []governance.CommitteeMember{}
	}
	return members, nil
}

func (s *governanceService) GetStakeDelegation(ctx context.Context, stakeAddress string) (governance.StakeDelegation, error) {
	if err := validations.ValidateStakeAddress(ctx, stakeAddress); err != nil {
		return governance.StakeDelegation{}, err
	}
	delegation, err := s.provider.GetStakeDelegation(ctx, stakeAddress)
	if err != nil {
		return governance.StakeDelegation{}, err
	}
	if delegation == nil {
		return governance.StakeDelegation{}, pkgError.NotFoundError(fmt.Sprintf("stake address %s not found", stakeAddress))
	}
	return *delegation, nil
}

func (s *governanceService) GetEpochStartTime(ctx context.Context, epoch uint32) (governance.EpochStartTime, error) {
	start, err := s.provider.GetEpochStartTime(ctx, epoch)
	if err != nil {
		return governance.EpochStartTime{}, err
	}
	if start == nil {
		return governance.EpochStartTime{}, pkgError.NotFoundError(fmt.Sprintf("epoch %d not found", epoch))
	}
	return governance.EpochStartTime{Epoch: epoch, StartTime: *start}, nil
}

func withPageDefaults(req validations.PageRequest) validations.PageRequest {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Count == 0 {
		req.Count = validations.DefaultPageSize
	}
	return req
}

func withDRepsDefaults(query governance.DRepsQuery) governance.DRepsQuery {
	req := withPageDefaults(validations.PageRequest{Page: query.Page, Count: query.Count})
	query.Page, query.Count = req.Page, req.Count
	return query
}

func normalizeDRepID(id string) string {
	normalized, err := cip129.NormalizeDRepID(id)
	if err != nil {
		logrus.Debugf("[GOVERNANCE] using drep id %q as given: %v", id, err)
		return id
	}
	return normalized
}

func normalizeActionID(id string) string {
	ref, err := cip129.ParseAction(id)
	if err != nil {
		logrus.Debugf("[GOVERNANCE] using action id %q as given: %v", id, err)
		return id
	}
	return ref.String()
}
