package rest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/domains/health"
	"github.com/govtwool/govtwool-backend/domains/participation"
)

type mockGovernance struct {
	mock.Mock
}

var _ governance.IGovernanceUsecase = (*mockGovernance)(nil)

func (m *mockGovernance) ListDReps(ctx context.Context, query governance.DRepsQuery) (governance.DRepsPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(governance.DRepsPage), args.Error(1)
}

func (m *mockGovernance) GetDRep(ctx context.Context, id string) (governance.DRep, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(governance.DRep), args.Error(1)
}

func (m *mockGovernance) GetDRepDelegators(ctx context.Context, id string) ([]governance.DRepDelegator, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]governance.DRepDelegator), args.Error(1)
}

func (m *mockGovernance) GetDRepVotingHistory(ctx context.Context, id string) ([]governance.DRepVotingHistory, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]governance.DRepVotingHistory), args.Error(1)
}

func (m *mockGovernance) GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockGovernance) GetDRepStats(ctx context.Context) (governance.DRepStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(governance.DRepStats), args.Error(1)
}

func (m *mockGovernance) ListActions(ctx context.Context, page, count int) (governance.ActionsPage, error) {
	args := m.Called(ctx, page, count)
	return args.Get(0).(governance.ActionsPage), args.Error(1)
}

func (m *mockGovernance) GetAction(ctx context.Context, id string) (governance.GovernanceAction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(governance.GovernanceAction), args.Error(1)
}

func (m *mockGovernance) GetActionVotingResults(ctx context.Context, id string) (governance.ActionVotingBreakdown, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(governance.ActionVotingBreakdown), args.Error(1)
}

func (m *mockGovernance) ListStakePools(ctx context.Context, page, count int) (governance.StakePoolPage, error) {
	args := m.Called(ctx, page, count)
	return args.Get(0).(governance.StakePoolPage), args.Error(1)
}

func (m *mockGovernance) GetCommitteeMembers(ctx context.Context) ([]governance.CommitteeMember, error) {
	args := m.Called(ctx)
	return args.Get(0).([]governance.CommitteeMember), args.Error(1)
}

func (m *mockGovernance) GetStakeDelegation(ctx context.Context, stakeAddress string) (governance.StakeDelegation, error) {
	args := m.Called(ctx, stakeAddress)
	return args.Get(0).(governance.StakeDelegation), args.Error(1)
}

func (m *mockGovernance) GetEpochStartTime(ctx context.Context, epoch uint32) (governance.EpochStartTime, error) {
	args := m.Called(ctx, epoch)
	return args.Get(0).(governance.EpochStartTime), args.Error(1)
}

type mockParticipation struct {
	mock.Mock
}

func (m *mockParticipation) GetActionParticipation(ctx context.Context, actionID string) (participation.ActionVoterParticipation, error) {
	args := m.Called(ctx, actionID)
	return args.Get(0).(participation.ActionVoterParticipation), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetStats(ctx context.Context) domainCache.CacheStats {
	return m.Called(ctx).Get(0).(domainCache.CacheStats)
}

func (m *mockCache) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubHealth struct {
	report health.Report
}

func (s stubHealth) Report(context.Context) health.Report { return s.report }

func (s stubHealth) StartPeriodicChecks(context.Context, time.Duration) {}
