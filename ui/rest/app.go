package rest

import (
	"runtime"

	"github.com/gofiber/fiber/v2"

	"github.com/govtwool/govtwool-backend/pkg/utils"
)

type App struct {
	Version string
}

func InitRestApp(app fiber.Router, version string) App {
	rest := App{Version: version}
	app.Get("/app/version", rest.GetVersion)

	return rest
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Version retrieved",
		Results: fiber.Map{
			"version": handler.Version,
			"go":      runtime.Version(),
			"os":      runtime.GOOS,
		},
	})
}
