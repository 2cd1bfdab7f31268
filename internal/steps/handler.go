package steps

import (
	"net/http"

	"github.com/JaimeStill/cognivex/pkg/handlers"
	"github.com/JaimeStill/cognivex/pkg/openapi"
	"github.com/JaimeStill/cognivex/pkg/routes"
)

// Handler exposes the step table over HTTP.
type Handler struct {
	registry *Registry
}

// NewHandler creates a Handler for the given registry.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Routes returns the route group for step endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/steps",
		Tags:        []string{"Steps"},
		Description: "Ordered wizard step table",
		Schemas:     Schemas(),
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List wizard steps in order",
					Responses: map[int]*openapi.Response{
						200: {
							Description: "Step table",
							Content: map[string]*openapi.MediaType{
								"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Step")}},
							},
						},
					},
				},
			},
		},
	}
}

// List returns the ordered step table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.registry.All())
}

// Schemas returns the OpenAPI component schemas for this package.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Step": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":   {Type: "integer", Description: "1-based position", Example: 1},
				"name": {Type: "string", Example: "User Profiling"},
				"path": {Type: "string", Example: "/user-profiling"},
			},
		},
	}
}
