package routes

import (
	"net/http"

	"github.com/JaimeStill/cognivex/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler, with optional
// OpenAPI documentation for the operation.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
