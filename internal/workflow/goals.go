package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/session"
	"github.com/JaimeStill/cognivex/internal/steps"
)

const (
	goalsFailedTitle   = "Processing Failed"
	goalsFailedMessage = "Could not parse your goals. Please try again or skip this step."
)

// SubmitGoals parses the user's goals and advances past the goals step.
// Blank text skips the backend, clears any stored goals and advances. On
// failure the stored goals are left unchanged and the step does not advance.
func (f *Flow) SubmitGoals(ctx context.Context, text string) (session.Transition, error) {
	if !f.goalsBusy.CompareAndSwap(false, true) {
		return session.Transition{}, fmt.Errorf("%w: goal parsing", ErrBusy)
	}
	defer f.goalsBusy.Store(false)

	if strings.TrimSpace(text) == "" {
		f.store.SetGoals("", analysis.ParsedGoals{
			UserIntentions: []string{},
			RisksToAvoid:   []string{},
		})
		f.logger.Info("goals skipped")
		return f.advanceFrom(steps.Goals), nil
	}

	parsed, err := f.rt.Analysis.ParseGoals(ctx, analysis.ParseGoalsRequest{Goals: text})
	if err != nil {
		f.store.Notify(session.KindError, goalsFailedTitle, goalsFailedMessage)
		f.logger.Error("goal parsing failed", "error", err)
		return session.Transition{}, err
	}

	f.store.SetGoals(text, *parsed)
	f.logger.Info(
		"goals parsed",
		"intentions", len(parsed.UserIntentions),
		"risks_to_avoid", len(parsed.RisksToAvoid),
	)
	return f.advanceFrom(steps.Goals), nil
}
