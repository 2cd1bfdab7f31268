package wizard

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/cognivex/internal/workflow"
)

// ErrNotificationNotFound is returned when dismissing an unknown notification.
var ErrNotificationNotFound = errors.New("notification not found")

// MapHTTPStatus maps registry errors and the flow errors beneath them to
// HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrNotificationNotFound) {
		return http.StatusNotFound
	}
	return workflow.MapHTTPStatus(err)
}
