package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/pkg/utils"
)

type DRep struct {
	Service governance.IGovernanceUsecase
}

func InitRestDRep(app fiber.Router, service governance.IGovernanceUsecase) DRep {
	rest := DRep{Service: service}
	app.Get("/dreps", rest.List)
	app.Get("/dreps/stats", rest.Stats)
	app.Get("/dreps/:id", rest.Get)
	app.Get("/dreps/:id/delegators", rest.Delegators)
	app.Get("/dreps/:id/votes", rest.VotingHistory)
	app.Get("/dreps/:id/metadata", rest.Metadata)

	return rest
}

func (handler *DRep) List(c *fiber.Ctx) error {
	query := governance.DRepsQuery{
		Page:   c.QueryInt("page", 0),
		Count:  c.QueryInt("count", 0),
		Status: governance.DRepStatus(c.Query("status")),
		Search: c.Query("search"),
	}
	page, err := handler.Service.ListDReps(c.UserContext(), query)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "DReps retrieved",
		Results: page,
	})
}

func (handler *DRep) Stats(c *fiber.Ctx) error {
	stats, err := handler.Service.GetDRepStats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "DRep stats retrieved",
		Results: stats,
	})
}

func (handler *DRep) Get(c *fiber.Ctx) error {
	drep, err := handler.Service.GetDRep(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "DRep retrieved",
		Results: drep,
	})
}

func (handler *DRep) Delegators(c *fiber.Ctx) error {
	delegators, err := handler.Service.GetDRepDelegators(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "DRep delegators retrieved",
		Results: delegators,
	})
}

func (handler *DRep) VotingHistory(c *fiber.Ctx) error {
	history, err := handler.Service.GetDRepVotingHistory(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "DRep voting history retrieved",
		Results: history,
	})
}

func (handler *DRep) Metadata(c *fiber.Ctx) error {
	metadata, err := handler.Service.GetDRepMetadata(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "DRep metadata retrieved",
		Results: metadata,
	})
}
