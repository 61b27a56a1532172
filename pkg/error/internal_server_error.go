package error

import "net/http"

// InternalServerError marks a failure of an upstream dependency (data store,
// cache tier) that the caller cannot fix by changing the request.
type InternalServerError string

func (err InternalServerError) Error() string {
	return string(err)
}

func (err InternalServerError) ErrCode() string {
	return "INTERNAL_SERVER_ERROR"
}

func (err InternalServerError) StatusCode() int {
	return http.StatusInternalServerError
}
