package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/domains/participation"
	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
)

// Only the methods a test calls are implemented; anything else panics on
// the nil embedded interface.
type stubGovernance struct {
	governance.IGovernanceUsecase
	drep    governance.DRep
	query   governance.DRepsQuery
	page    governance.DRepsPage
	lastErr error
}

func (s *stubGovernance) GetDRep(_ context.Context, id string) (governance.DRep, error) {
	if s.lastErr != nil {
		return governance.DRep{}, s.lastErr
	}
	d := s.drep
	d.DRepID = id
	return d, nil
}

func (s *stubGovernance) ListDReps(_ context.Context, query governance.DRepsQuery) (governance.DRepsPage, error) {
	s.query = query
	return s.page, s.lastErr
}

type stubParticipation struct {
	report participation.ActionVoterParticipation
}

func (s stubParticipation) GetActionParticipation(context.Context, string) (participation.ActionVoterParticipation, error) {
	return s.report, nil
}

type stubCache struct{ stats domainCache.CacheStats }

func (s stubCache) GetStats(context.Context) domainCache.CacheStats { return s.stats }
func (s stubCache) Clear(context.Context) error                   { return nil }

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestAddQueryTools_RegistersReadOnlyTools(t *testing.T) {
	s := server.NewMCPServer("test", "v0")
	InitMcpQuery(&stubGovernance{}, stubParticipation{}, stubCache{}).AddQueryTools(s)

	tools := s.ListTools()
	for _, name := range []string{
		"governance_list_dreps",
		"governance_get_drep",
		"governance_get_action",
		"governance_action_participation",
		"governance_cache_stats",
	} {
		tool, ok := tools[name]
		require.True(t, ok, name)
		require.NotNil(t, tool.Tool.Annotations.ReadOnlyHint)
		assert.True(t, *tool.Tool.Annotations.ReadOnlyHint, name)
	}
}

func TestHandleListDReps_PassesArguments(t *testing.T) {
	gov := &stubGovernance{page: governance.DRepsPage{DReps: []governance.DRep{{DRepID: "drep1a"}}, HasMore: true}}
	h := InitMcpQuery(gov, stubParticipation{}, stubCache{})

	res, err := h.handleListDReps(context.Background(), callRequest(map[string]any{
		"page": float64(3), "count": float64(50), "status": "retired",
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, governance.DRepsQuery{Page: 3, Count: 50, Status: governance.DRepStatusRetired}, gov.query)
	assert.Equal(t, gov.page, res.StructuredContent)
}

func TestHandleGetDRep_RequiresID(t *testing.T) {
	h := InitMcpQuery(&stubGovernance{}, stubParticipation{}, stubCache{})

	_, err := h.handleGetDRep(context.Background(), callRequest(map[string]any{}))

	assert.Error(t, err)
}

func TestHandleGetDRep_NotFoundIsToolError(t *testing.T) {
	gov := &stubGovernance{lastErr: pkgError.NotFoundError("drep not found")}
	h := InitMcpQuery(gov, stubParticipation{}, stubCache{})

	res, err := h.handleGetDRep(context.Background(), callRequest(map[string]any{"drep_id": "drep1zzz"}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleGetDRep_BackendFailureIsProtocolError(t *testing.T) {
	gov := &stubGovernance{lastErr: errors.New("db down")}
	h := InitMcpQuery(gov, stubParticipation{}, stubCache{})

	res, err := h.handleGetDRep(context.Background(), callRequest(map[string]any{"drep_id": "drep1zzz"}))

	assert.Nil(t, res)
	assert.EqualError(t, err, "db down")
}

func TestHandleActionParticipation_SummarizesTurnout(t *testing.T) {
	report := participation.ActionVoterParticipation{ActionID: "gov_action1x"}
	report.DReps.Summary = participation.CalculateSummary(4, 1)
	report.Committee.Summary = participation.CalculateSummary(7, 7)
	h := InitMcpQuery(&stubGovernance{}, stubParticipation{report: report}, stubCache{})

	res, err := h.handleActionParticipation(context.Background(), callRequest(map[string]any{"action_id": "gov_action1x"}))

	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "DReps 1/4, pools 0/0, committee 7/7 voted", text.Text)
}

func TestHandleCacheStats(t *testing.T) {
	h := InitMcpQuery(&stubGovernance{}, stubParticipation{}, stubCache{stats: domainCache.CacheStats{Entries: 2, Hits: 5, Misses: 1}})

	res, err := h.handleCacheStats(context.Background(), callRequest(nil))

	require.NoError(t, err)
	assert.Equal(t, domainCache.CacheStats{Entries: 2, Hits: 5, Misses: 1}, res.StructuredContent)
}
