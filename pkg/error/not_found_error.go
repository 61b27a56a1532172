package error

import "net/http"

// NotFoundError is returned when a well-formed identifier matches no entity.
// It renders as a 404 with empty results, never as a server error.
type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}
