package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/govtwool/govtwool-backend/pkg/jobpool"
	"github.com/govtwool/govtwool-backend/pkg/utils"
)

// WarmupStatsSource is satisfied by the background cache warmer.
type WarmupStatsSource interface {
	Stats() jobpool.Stats
}

type Warmup struct {
	Source WarmupStatsSource
}

// InitRestWarmup mounts the warmer pool stats. source may be nil when
// warmup is disabled.
func InitRestWarmup(app fiber.Router, source WarmupStatsSource) Warmup {
	rest := Warmup{Source: source}
	app.Get("/warmup/stats", rest.GetStats)

	return rest
}

func (handler *Warmup) GetStats(c *fiber.Ctx) error {
	if handler.Source == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  fiber.StatusServiceUnavailable,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "Cache warmup is disabled",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Warmup pool stats retrieved",
		Results: handler.Source.Stats(),
	})
}
