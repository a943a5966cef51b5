package error

import "net/http"

// VerificationError is returned when a webhook verify token or payload
// signature does not match the configured secret.
type VerificationError string

func (err VerificationError) Error() string {
	return string(err)
}

func (err VerificationError) ErrCode() string {
	return "VERIFICATION_ERROR"
}

func (err VerificationError) StatusCode() int {
	return http.StatusForbidden
}

// UpstreamError wraps NLU and profile lookup failures.
type UpstreamError string

func (err UpstreamError) Error() string {
	return string(err)
}

func (err UpstreamError) ErrCode() string {
	return "UPSTREAM_ERROR"
}

func (err UpstreamError) StatusCode() int {
	return http.StatusBadGateway
}

// MalformedEventError marks a messaging event the dispatcher cannot classify.
type MalformedEventError string

func (err MalformedEventError) Error() string {
	return string(err)
}

func (err MalformedEventError) ErrCode() string {
	return "MALFORMED_EVENT"
}

func (err MalformedEventError) StatusCode() int {
	return http.StatusBadRequest
}

// DeliveryError is returned by the platform Send API client.
type DeliveryError string

func (err DeliveryError) Error() string {
	return string(err)
}

func (err DeliveryError) ErrCode() string {
	return "DELIVERY_ERROR"
}

func (err DeliveryError) StatusCode() int {
	return http.StatusBadGateway
}

type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}
