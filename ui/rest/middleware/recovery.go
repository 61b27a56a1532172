package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
	"github.com/govtwool/govtwool-backend/pkg/utils"
)

// Recovery turns panics raised by utils.PanicIfNeeded into JSON responses.
// Typed errors keep their status; anything else is a 500.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err == nil {
				return
			}

			res := utils.ResponseData{
				Status:  fiber.StatusInternalServerError,
				Code:    "INTERNAL_SERVER_ERROR",
				Message: fmt.Sprintf("%v", err),
			}
			if typed, ok := err.(pkgError.GenericError); ok {
				res.Status = typed.StatusCode()
				res.Code = typed.ErrCode()
				res.Message = typed.Error()
			}

			entry := logrus.WithFields(logrus.Fields{
				"request_id": RequestID(ctx),
				"method":     ctx.Method(),
				"path":       ctx.Path(),
			})
			if res.Status >= fiber.StatusInternalServerError {
				entry.Errorf("[REST] panic recovered: %v", err)
			} else {
				entry.Debugf("[REST] %s: %s", res.Code, res.Message)
			}

			_ = ctx.Status(res.Status).JSON(res)
		}()

		return ctx.Next()
	}
}
