// Package workflow implements the per-step rules of the wizard on top of a
// session.Store: what each step sends to the analysis backend, how results
// and failures are folded back into the session, and when a step may advance.
package workflow

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/cognivex/internal/session"
	"github.com/JaimeStill/cognivex/internal/steps"
)

// Greeting opens every chat transcript.
const Greeting = "Hello! I'm Cognivex, your AI legal assistant. Ask me anything about the document you uploaded."

// Flow drives one session through the wizard. It is safe for concurrent use.
type Flow struct {
	store    *session.Store
	rt       *Runtime
	logger   *slog.Logger
	validate *validator.Validate

	risks     singleflight.Group
	analyzing atomic.Int32
	goalsBusy atomic.Bool
}

// New creates a Flow over store and seeds the chat transcript.
func New(store *session.Store, rt *Runtime) *Flow {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if len(store.Messages()) == 0 {
		store.AppendMessage(session.SenderBot, Greeting)
	}

	return &Flow{
		store:    store,
		rt:       rt,
		logger:   rt.Logger.With("system", "workflow", "session", store.ID()),
		validate: v,
	}
}

// Session returns the underlying store.
func (f *Flow) Session() *session.Store {
	return f.store
}

// Ready reports whether the given step allows advancing. The error wraps
// ErrNotReady with the reason.
func (f *Flow) Ready(stepID int) error {
	snap := f.store.Snapshot()

	switch stepID {
	case steps.Profile:
		if err := f.validateProfile(snap.Profile); err != nil {
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}
	case steps.Document:
		if snap.Document == nil {
			return fmt.Errorf("%w: upload a document", ErrNotReady)
		}
	case steps.VerbalContext:
		if snap.Transcribing {
			return fmt.Errorf("%w: audio is still processing", ErrNotReady)
		}
		if !snap.Consent {
			return fmt.Errorf("%w: consent is required", ErrNotReady)
		}
	case steps.Summary:
		if snap.Summary == "" {
			return fmt.Errorf("%w: summary is %s", ErrNotReady, snap.SummaryStatus)
		}
	case steps.Goals:
		if f.goalsBusy.Load() {
			return fmt.Errorf("%w: goals are still processing", ErrNotReady)
		}
	case steps.Risks:
		if f.analyzing.Load() > 0 {
			return fmt.Errorf("%w: risk analysis is still running", ErrNotReady)
		}
	}
	return nil
}

// Next advances from the current step when it is ready.
func (f *Flow) Next() (session.Transition, error) {
	current := f.store.CurrentStep()
	if err := f.Ready(current.ID); err != nil {
		return session.Transition{Step: current.ID, Path: current.Path}, err
	}
	return f.store.GoToNextStep(), nil
}

// Prev moves back one step.
func (f *Flow) Prev() session.Transition {
	return f.store.GoToPrevStep()
}

// GoTo jumps to a step. Ids outside the step table are ignored.
func (f *Flow) GoTo(id int) session.Transition {
	return f.store.GoToStep(id)
}

// SyncRoute aligns the current step with the client's location.
func (f *Flow) SyncRoute(path string) session.Transition {
	return f.store.SyncRoute(path)
}

// advanceFrom moves to the step after from.
func (f *Flow) advanceFrom(from int) session.Transition {
	if from >= f.store.Registry().Last().ID {
		return f.store.GoToNextStep()
	}
	return f.store.GoToStep(from + 1)
}
