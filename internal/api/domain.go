package api

import (
	"github.com/JaimeStill/cognivex/internal/config"
	"github.com/JaimeStill/cognivex/internal/steps"
	"github.com/JaimeStill/cognivex/internal/wizard"
	"github.com/JaimeStill/cognivex/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Steps    *steps.Registry
	Sessions *wizard.Registry
}

// NewDomain creates all domain systems from the API runtime. Live sessions
// are closed on shutdown; their background summaries run as lifecycle tasks.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	stepTable := steps.Default()

	sessions := wizard.NewRegistry(
		&cfg.Session,
		stepTable,
		&workflow.Runtime{
			Analysis:     runtime.Analysis,
			Storage:      runtime.Storage,
			Logger:       runtime.Logger,
			MaxAudioSize: cfg.API.MaxAudioSizeBytes(),
		},
		runtime.Lifecycle,
		runtime.Logger,
	)

	lc := runtime.Lifecycle
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		sessions.Close()
	})

	return &Domain{
		Steps:    stepTable,
		Sessions: sessions,
	}
}
