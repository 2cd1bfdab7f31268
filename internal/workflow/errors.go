package workflow

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/documents"
)

// Flow errors.
var (
	ErrNotReady       = errors.New("step is not ready to advance")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrNoDocument     = errors.New("no document uploaded")
	ErrNoRiskAnalysis = errors.New("no risk analysis available")
	ErrRiskNotFound   = errors.New("risk card not found")
	ErrStale          = errors.New("document changed while the request was running")
	ErrBusy           = errors.New("operation already in progress")
	ErrAudioTooLarge  = errors.New("audio file too large")
	ErrEmptyQuestion  = errors.New("question is empty")
)

// MapHTTPStatus maps flow errors, and the document and analysis errors they
// wrap, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotReady),
		errors.Is(err, ErrInvalidProfile),
		errors.Is(err, ErrEmptyQuestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNoDocument),
		errors.Is(err, ErrNoRiskAnalysis),
		errors.Is(err, ErrStale),
		errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrRiskNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAudioTooLarge):
		return http.StatusRequestEntityTooLarge
	}

	if status := documents.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return analysis.MapHTTPStatus(err)
}
