package rest

import (
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/govtwool/govtwool-backend/domains/governance"
	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
	"github.com/govtwool/govtwool-backend/pkg/utils"
)

// Network serves the non-DRep voting bodies, epochs and stake accounts.
type Network struct {
	Service governance.IGovernanceUsecase
}

func InitRestNetwork(app fiber.Router, service governance.IGovernanceUsecase) Network {
	rest := Network{Service: service}
	app.Get("/pools", rest.StakePools)
	app.Get("/committee", rest.Committee)
	app.Get("/epochs/:epoch/start-time", rest.EpochStartTime)
	app.Get("/stake/:address/delegation", rest.StakeDelegation)

	return rest
}

func (handler *Network) StakePools(c *fiber.Ctx) error {
	page, err := handler.Service.ListStakePools(c.UserContext(), c.QueryInt("page", 0), c.QueryInt("count", 0))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Stake pools retrieved",
		Results: page,
	})
}

func (handler *Network) Committee(c *fiber.Ctx) error {
	members, err := handler.Service.GetCommitteeMembers(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Committee members retrieved",
		Results: members,
	})
}

func (handler *Network) EpochStartTime(c *fiber.Ctx) error {
	epoch, err := c.ParamsInt("epoch")
	if err != nil || epoch < 0 || epoch > math.MaxUint32 {
		utils.PanicIfNeeded(pkgError.ValidationError("epoch: must be a non-negative integer"))
	}
	start, err := handler.Service.GetEpochStartTime(c.UserContext(), uint32(epoch))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Epoch start time retrieved",
		Results: start,
	})
}

func (handler *Network) StakeDelegation(c *fiber.Ctx) error {
	delegation, err := handler.Service.GetStakeDelegation(c.UserContext(), c.Params("address"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Stake delegation retrieved",
		Results: delegation,
	})
}
