// Package wizard keeps the live wizard sessions and serves them over HTTP.
package wizard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/JaimeStill/cognivex/internal/session"
	"github.com/JaimeStill/cognivex/internal/steps"
	"github.com/JaimeStill/cognivex/internal/workflow"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds one workflow.Flow per session. Sessions expire after the
// configured TTL without access; expiring or deleting a session releases its
// stored recording.
type Registry struct {
	cache  *cache.Cache
	steps  *steps.Registry
	rt     *workflow.Runtime
	runner session.Runner
	logger *slog.Logger
}

// NewRegistry creates a session registry. runner starts background
// summarization; *lifecycle.Coordinator ties it to process shutdown.
func NewRegistry(cfg *Config, stepTable *steps.Registry, rt *workflow.Runtime, runner session.Runner, logger *slog.Logger) *Registry {
	r := &Registry{
		cache:  cache.New(cfg.TTLDuration(), cfg.CleanupIntervalDuration()),
		steps:  stepTable,
		rt:     rt,
		runner: runner,
		logger: logger.With("system", "wizard"),
	}

	r.cache.OnEvicted(func(id string, v any) {
		flow, ok := v.(*workflow.Flow)
		if !ok {
			return
		}
		flow.Close(context.Background())
		r.logger.Info("session released", "session", id)
	})

	return r
}

// Create starts a new session on the first step.
func (r *Registry) Create() *workflow.Flow {
	id := uuid.NewString()
	store := session.New(id, r.steps, r.rt.Analysis, r.runner, r.rt.Logger)
	flow := workflow.New(store, r.rt)

	r.cache.Set(id, flow, cache.DefaultExpiration)
	r.logger.Info("session created", "session", id)
	return flow
}

// Get returns the flow for id and extends its expiry. A session deleted or
// expired while the lookup runs stays gone.
func (r *Registry) Get(id string) (*workflow.Flow, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	flow := v.(*workflow.Flow)
	if err := r.cache.Replace(id, flow, cache.DefaultExpiration); err != nil {
		return nil, ErrSessionNotFound
	}
	return flow, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) error {
	if _, ok := r.cache.Get(id); !ok {
		return ErrSessionNotFound
	}
	r.cache.Delete(id)
	return nil
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}

// Wait blocks until background tasks of every live session have settled.
func (r *Registry) Wait() {
	for _, item := range r.cache.Items() {
		if flow, ok := item.Object.(*workflow.Flow); ok {
			flow.Session().Wait()
		}
	}
}

// Close ends every live session, releasing stored recordings.
func (r *Registry) Close() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
