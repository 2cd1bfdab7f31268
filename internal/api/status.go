package api

import (
	"net/http"

	"github.com/JaimeStill/cognivex/internal/wizard"
	"github.com/JaimeStill/cognivex/pkg/handlers"
	"github.com/JaimeStill/cognivex/pkg/openapi"
	"github.com/JaimeStill/cognivex/pkg/routes"
)

// Status reports service version and whether the wizard is usable.
type Status struct {
	Version     string `json:"version"`
	ConfigValid bool   `json:"config_valid"`
	ConfigError string `json:"config_error,omitempty"`
	Sessions    int    `json:"sessions"`
}

type statusHandler struct {
	version   string
	configErr error
	sessions  *wizard.Registry
}

func newStatusHandler(version string, configErr error, sessions *wizard.Registry) *statusHandler {
	return &statusHandler{
		version:   version,
		configErr: configErr,
		sessions:  sessions,
	}
}

func (h *statusHandler) routes() routes.Group {
	return routes.Group{
		Prefix:      "/status",
		Tags:        []string{"Status"},
		Description: "Service version and configuration validity",
		Schemas: map[string]*openapi.Schema{
			"Status": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"version":      {Type: "string"},
					"config_valid": {Type: "boolean"},
					"config_error": {Type: "string"},
					"sessions":     {Type: "integer"},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.get,
				OpenAPI: &openapi.Operation{
					Summary: "Report service status",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Service status", "Status"),
					},
				},
			},
		},
	}
}

func (h *statusHandler) get(w http.ResponseWriter, r *http.Request) {
	s := Status{
		Version:     h.version,
		ConfigValid: h.configErr == nil,
		Sessions:    h.sessions.Count(),
	}
	if h.configErr != nil {
		s.ConfigError = h.configErr.Error()
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}
