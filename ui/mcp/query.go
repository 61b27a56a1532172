package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/domains/participation"
	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
)

// QueryHandler exposes the read API as MCP tools.
type QueryHandler struct {
	governanceService    governance.IGovernanceUsecase
	participationService participation.IParticipationUsecase
	cacheService         domainCache.ICacheUsecase
}

func InitMcpQuery(
	governanceService governance.IGovernanceUsecase,
	participationService participation.IParticipationUsecase,
	cacheService domainCache.ICacheUsecase,
) *QueryHandler {
	return &QueryHandler{
		governanceService:    governanceService,
		participationService: participationService,
		cacheService:         cacheService,
	}
}

func (h *QueryHandler) AddQueryTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolListDReps(), h.handleListDReps)
	mcpServer.AddTool(h.toolGetDRep(), h.handleGetDRep)
	mcpServer.AddTool(h.toolGetAction(), h.handleGetAction)
	mcpServer.AddTool(h.toolActionParticipation(), h.handleActionParticipation)
	mcpServer.AddTool(h.toolCacheStats(), h.handleCacheStats)
}

func readOnly(name, title, description string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append([]mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	}, opts...)
	return mcp.NewTool(name, opts...)
}

func (h *QueryHandler) toolListDReps() mcp.Tool {
	return readOnly(
		"governance_list_dreps",
		"List DReps",
		"List registered delegated representatives, one page at a time.",
		mcp.WithNumber("page", mcp.Description("1-based page number. Defaults to 1.")),
		mcp.WithNumber("count", mcp.Description("Page size, at most 100. Defaults to 20.")),
		mcp.WithString("status",
			mcp.Description("Only return DReps with this status."),
			mcp.Enum(string(governance.DRepStatusActive), string(governance.DRepStatusInactive), string(governance.DRepStatusRetired)),
		),
		mcp.WithString("search", mcp.Description("Match against the DRep id or given name.")),
	)
}

func (h *QueryHandler) handleListDReps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := governance.DRepsQuery{
		Page:   request.GetInt("page", 0),
		Count:  request.GetInt("count", 0),
		Status: governance.DRepStatus(request.GetString("status", "")),
		Search: request.GetString("search", ""),
	}
	page, err := h.governanceService.ListDReps(ctx, query)
	if err != nil {
		return toolError(err)
	}

	fallback := fmt.Sprintf("Found %d DReps (more: %t)", len(page.DReps), page.HasMore)
	return mcp.NewToolResultStructured(page, fallback), nil
}

func (h *QueryHandler) toolGetDRep() mcp.Tool {
	return readOnly(
		"governance_get_drep",
		"Get DRep",
		"Fetch one DRep by its CIP-129 bech32, legacy bech32 or hex id.",
		mcp.WithString("drep_id", mcp.Description("The DRep identifier."), mcp.Required()),
	)
}

func (h *QueryHandler) handleGetDRep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("drep_id")
	if err != nil {
		return nil, err
	}
	drep, err := h.governanceService.GetDRep(ctx, id)
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultStructured(drep, fmt.Sprintf("DRep %s", drep.DRepID)), nil
}

func (h *QueryHandler) toolGetAction() mcp.Tool {
	return readOnly(
		"governance_get_action",
		"Get Governance Action",
		"Fetch one governance action by its gov_action bech32 id or tx_hash#index.",
		mcp.WithString("action_id", mcp.Description("The governance action identifier."), mcp.Required()),
	)
}

func (h *QueryHandler) handleGetAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("action_id")
	if err != nil {
		return nil, err
	}
	action, err := h.governanceService.GetAction(ctx, id)
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultStructured(action, fmt.Sprintf("%s action %s", action.Type, action.ActionID)), nil
}

func (h *QueryHandler) toolActionParticipation() mcp.Tool {
	return readOnly(
		"governance_action_participation",
		"Governance Action Participation",
		"Report which DReps, stake pools and committee members voted on an action, with turnout per group.",
		mcp.WithString("action_id", mcp.Description("The governance action identifier."), mcp.Required()),
	)
}

func (h *QueryHandler) handleActionParticipation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("action_id")
	if err != nil {
		return nil, err
	}
	report, err := h.participationService.GetActionParticipation(ctx, id)
	if err != nil {
		return toolError(err)
	}

	fallback := fmt.Sprintf("DReps %d/%d, pools %d/%d, committee %d/%d voted",
		report.DReps.Summary.TotalVoted, report.DReps.Summary.TotalEligible,
		report.StakePools.Summary.TotalVoted, report.StakePools.Summary.TotalEligible,
		report.Committee.Summary.TotalVoted, report.Committee.Summary.TotalEligible,
	)
	return mcp.NewToolResultStructured(report, fallback), nil
}

func (h *QueryHandler) toolCacheStats() mcp.Tool {
	return readOnly(
		"governance_cache_stats",
		"Cache Stats",
		"Show hit and miss counters of the provider cache.",
	)
}

func (h *QueryHandler) handleCacheStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := h.cacheService.GetStats(ctx)
	fallback := fmt.Sprintf("%d entries, %d hits, %d misses", stats.Entries, stats.Hits, stats.Misses)
	return mcp.NewToolResultStructured(stats, fallback), nil
}

// toolError reports caller mistakes as tool results so the agent can
// correct itself. Backend failures stay protocol errors.
func toolError(err error) (*mcp.CallToolResult, error) {
	var typed pkgError.GenericError
	if errors.As(err, &typed) && typed.StatusCode() < 500 {
		return mcp.NewToolResultError(typed.Error()), nil
	}
	return nil, err
}
