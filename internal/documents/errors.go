package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document intake.
var (
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrUnsupportedType = errors.New("unsupported document type: expected plain text or pdf")
	ErrEmptyDocument   = errors.New("document contains no extractable text")
	ErrUndecodableText = errors.New("document text uses a font encoding that cannot be decoded")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrUnsupportedType) {
		return http.StatusUnsupportedMediaType
	}
	if errors.Is(err, ErrEmptyDocument) || errors.Is(err, ErrUndecodableText) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
