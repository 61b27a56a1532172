package utils

import (
	"github.com/sirupsen/logrus"

	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
)

type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results"`
}

// PanicIfNeeded hands err to the Recovery middleware. Errors that do not
// carry their own status are wrapped as InternalServerError.
func PanicIfNeeded(err any) {
	if err == nil {
		return
	}
	if e, ok := err.(error); ok {
		if _, typed := e.(pkgError.GenericError); !typed {
			logrus.WithError(e).Debug("[REST] untyped error escalated as internal server error")
			panic(pkgError.InternalServerError(e.Error()))
		}
	}
	panic(err)
}
