package error

// GenericError is implemented by errors that know how they should be
// rendered by the REST layer.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
