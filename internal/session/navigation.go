package session

import "github.com/JaimeStill/cognivex/internal/steps"

// Transition reports the outcome of a navigation request. Exit is set when
// advancing past the final step; the current step is then left unchanged
// and Path is steps.ExitPath.
type Transition struct {
	Step  int    `json:"step"`
	Path  string `json:"path"`
	Exit  bool   `json:"exit"`
	Moved bool   `json:"moved"`
}

// CurrentStep returns the step the session is on.
func (s *Store) CurrentStep() steps.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, _ := s.registry.ByID(s.current)
	return step
}

// GoToStep moves to id. Ids outside the registry are ignored.
func (s *Store) GoToStep(id int) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Contains(id) {
		s.logger.Debug("navigation ignored", "target", id)
		return s.stay()
	}
	return s.moveTo(id)
}

// GoToNextStep advances one step. From the final step it exits the wizard.
func (s *Store) GoToNextStep() Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current >= s.registry.Last().ID {
		s.logger.Info("wizard exited", "step", s.current)
		return Transition{Step: s.current, Path: steps.ExitPath, Exit: true}
	}
	return s.moveTo(s.current + 1)
}

// GoToPrevStep moves back one step. It is a no-op on the first step.
func (s *Store) GoToPrevStep() Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current <= s.registry.First().ID {
		return s.stay()
	}
	return s.moveTo(s.current - 1)
}

// SyncRoute aligns the current step with a location. Unknown locations
// leave the step unchanged.
func (s *Store) SyncRoute(path string) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, ok := s.registry.ByPath(path)
	if !ok {
		s.logger.Debug("route not in step table", "path", path)
		return s.stay()
	}
	return s.moveTo(step.ID)
}

func (s *Store) moveTo(id int) Transition {
	moved := id != s.current
	s.current = id
	if moved {
		s.touch()
	}
	step, _ := s.registry.ByID(id)
	return Transition{Step: id, Path: step.Path, Moved: moved}
}

func (s *Store) stay() Transition {
	step, _ := s.registry.ByID(s.current)
	return Transition{Step: s.current, Path: step.Path}
}
