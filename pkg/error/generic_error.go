package error

// GenericError is implemented by every typed error the service returns so the
// REST layer can map it to a response envelope.
type GenericError interface {
	ErrCode() string
	StatusCode() int
	Error() string
}
