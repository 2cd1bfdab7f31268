package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/cognivex/internal/config"
	"github.com/JaimeStill/cognivex/internal/steps"
	"github.com/JaimeStill/cognivex/internal/wizard"
	"github.com/JaimeStill/cognivex/pkg/openapi"
	"github.com/JaimeStill/cognivex/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		newStatusHandler(cfg.Version, runtime.ConfigErr, domain.Sessions).routes(),
		steps.NewHandler(domain.Steps).Routes(),
		wizard.NewHandler(
			domain.Sessions,
			runtime.Logger,
			cfg.API.MaxUploadSizeBytes(),
			cfg.API.MaxAudioSizeBytes(),
			runtime.ConfigErr,
		).Routes(),
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(cfg.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	routes.Document(spec, "", groups...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
