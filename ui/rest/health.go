package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/govtwool/govtwool-backend/domains/health"
)

type Health struct {
	Service health.IHealthUsecase
}

// InitRestHealth mounts GET /health on app. It is meant for the root
// router so load balancers can reach it without credentials.
func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}
	app.Get("/health", handler.GetStatus)

	return handler
}

// GetStatus always answers 200; a degraded backend is reported in the body.
func (h *Health) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.Service.Report(c.UserContext()))
}
