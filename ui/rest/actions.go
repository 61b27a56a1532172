package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/domains/participation"
	"github.com/govtwool/govtwool-backend/pkg/utils"
)

type Action struct {
	Service       governance.IGovernanceUsecase
	Participation participation.IParticipationUsecase
}

func InitRestAction(app fiber.Router, service governance.IGovernanceUsecase, participationService participation.IParticipationUsecase) Action {
	rest := Action{Service: service, Participation: participationService}
	app.Get("/actions", rest.List)
	app.Get("/actions/:id", rest.Get)
	app.Get("/actions/:id/results", rest.VotingResults)
	app.Get("/actions/:id/votes", rest.Participation)

	return rest
}

func (handler *Action) List(c *fiber.Ctx) error {
	page, err := handler.Service.ListActions(c.UserContext(), c.QueryInt("page", 0), c.QueryInt("count", 0))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Governance actions retrieved",
		Results: page,
	})
}

func (handler *Action) Get(c *fiber.Ctx) error {
	action, err := handler.Service.GetAction(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Governance action retrieved",
		Results: action,
	})
}

func (handler *Action) VotingResults(c *fiber.Ctx) error {
	results, err := handler.Service.GetActionVotingResults(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Voting results retrieved",
		Results: results,
	})
}

func (handler *Action) Participation(c *fiber.Ctx) error {
	report, err := handler.Participation.GetActionParticipation(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Voter participation retrieved",
		Results: report,
	})
}
