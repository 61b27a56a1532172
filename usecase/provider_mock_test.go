package usecase

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/govtwool/govtwool-backend/domains/governance"
)

type mockProvider struct {
	mock.Mock
}

var _ governance.IProvider = (*mockProvider)(nil)

func (m *mockProvider) GetDRepsPage(ctx context.Context, query governance.DRepsQuery) (governance.DRepsPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(governance.DRepsPage), args.Error(1)
}

func (m *mockProvider) GetDRep(ctx context.Context, id string) (*governance.DRep, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*governance.DRep)
	return v, args.Error(1)
}

func (m *mockProvider) GetDRepDelegators(ctx context.Context, id string) ([]governance.DRepDelegator, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).([]governance.DRepDelegator)
	return v, args.Error(1)
}

func (m *mockProvider) GetDRepVotingHistory(ctx context.Context, id string) ([]governance.DRepVotingHistory, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).([]governance.DRepVotingHistory)
	return v, args.Error(1)
}

func (m *mockProvider) GetGovernanceActionsPage(ctx context.Context, page, count int) (governance.ActionsPage, error) {
	args := m.Called(ctx, page, count)
	return args.Get(0).(governance.ActionsPage), args.Error(1)
}

func (m *mockProvider) GetGovernanceAction(ctx context.Context, id string) (*governance.GovernanceAction, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*governance.GovernanceAction)
	return v, args.Error(1)
}

func (m *mockProvider) GetActionVotingResults(ctx context.Context, id string) (governance.ActionVotingBreakdown, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(governance.ActionVotingBreakdown), args.Error(1)
}

func (m *mockProvider) GetDRepMetadata(ctx context.Context, id string) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(json.RawMessage)
	return v, args.Error(1)
}

func (m *mockProvider) GetTotalActiveDReps(ctx context.Context) (*uint32, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*uint32)
	return v, args.Error(1)
}

func (m *mockProvider) GetStakeDelegation(ctx context.Context, stakeAddress string) (*governance.StakeDelegation, error) {
	args := m.Called(ctx, stakeAddress)
	v, _ := args.Get(0).(*governance.StakeDelegation)
	return v, args.Error(1)
}

func (m *mockProvider) GetActionVoteRecords(ctx context.Context, action governance.GovernanceAction) ([]governance.VoteRecord, error) {
	args := m.Called(ctx, action)
	v, _ := args.Get(0).([]governance.VoteRecord)
	return v, args.Error(1)
}

func (m *mockProvider) GetStakePoolsPage(ctx context.Context, page, count int) (governance.StakePoolPage, error) {
	args := m.Called(ctx, page, count)
	return args.Get(0).(governance.StakePoolPage), args.Error(1)
}

func (m *mockProvider) GetCommitteeMembers(ctx context.Context) ([]governance.CommitteeMember, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]governance.CommitteeMember)
	return v, args.Error(1)
}

func (m *mockProvider) GetEpochStartTime(ctx context.Context, epoch uint32) (*uint64, error) {
	args := m.Called(ctx, epoch)
	v, _ := args.Get(0).(*uint64)
	return v, args.Error(1)
}

func (m *mockProvider) GetSyncStatus(ctx context.Context) (governance.SyncStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(governance.SyncStatus), args.Error(1)
}

func (m *mockProvider) HealthCheck(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func ptr[T any](v T) *T {
	return &v
}
