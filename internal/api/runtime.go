package api

import (
	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/config"
	"github.com/JaimeStill/cognivex/internal/infrastructure"
)

// Runtime extends Infrastructure with the analysis backend.
type Runtime struct {
	*infrastructure.Infrastructure
	Analysis analysis.System
	// ConfigErr is set when the analysis backend is not configured. The
	// wizard answers 503 while it is set.
	ConfigErr error
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	rt := &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Storage:   infra.Storage,
		},
	}

	client, err := analysis.New(&cfg.Analysis, infra.Storage, logger)
	if err != nil {
		logger.Warn("analysis backend not configured; wizard disabled", "error", err)
		rt.ConfigErr = err
		return rt
	}
	rt.Analysis = client
	return rt
}
