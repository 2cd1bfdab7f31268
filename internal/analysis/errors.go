package analysis

import (
	"errors"
	"net/http"
)

// Failure classes for analysis operations. Every operation error wraps
// exactly one of these.
var (
	ErrConfiguration   = errors.New("analysis backend is not configured")
	ErrPermission      = errors.New("analysis backend denied the request")
	ErrMalformedOutput = errors.New("analysis backend returned malformed output")
	ErrTransport       = errors.New("analysis backend call failed")
	ErrInvalidInput    = errors.New("invalid analysis request")
)

// MapHTTPStatus maps analysis errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPermission),
		errors.Is(err, ErrMalformedOutput),
		errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
