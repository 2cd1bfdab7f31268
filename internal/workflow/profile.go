package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/session"
	"github.com/JaimeStill/cognivex/internal/steps"
)

// UpdateProfile merges a partial profile without validation.
func (f *Flow) UpdateProfile(patch session.ProfilePatch) analysis.UserProfile {
	f.store.UpdateUserProfile(patch)
	return f.store.Profile()
}

// SubmitProfile validates a complete profile, stores it and advances past
// the profiling step. An invalid profile never reaches the session.
func (f *Flow) SubmitProfile(p analysis.UserProfile) (session.Transition, error) {
	p = normalizeProfile(p)
	if err := f.validateProfile(p); err != nil {
		return session.Transition{}, err
	}

	f.store.UpdateUserProfile(session.PatchFrom(p))
	f.logger.Info("profile submitted", "profession", p.Profession, "city", p.City)
	return f.advanceFrom(steps.Profile), nil
}

func (f *Flow) validateProfile(p analysis.UserProfile) error {
	err := f.validate.Struct(normalizeProfile(p))
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(fields, ", "))
}

func normalizeProfile(p analysis.UserProfile) analysis.UserProfile {
	p = p.Clone()
	p.Profession = strings.TrimSpace(p.Profession)
	p.City = strings.TrimSpace(p.City)
	p.LegalKnowledge = strings.TrimSpace(p.LegalKnowledge)
	p.Education = strings.TrimSpace(p.Education)
	for i, l := range p.Languages {
		p.Languages[i] = strings.TrimSpace(l)
	}
	return p
}
