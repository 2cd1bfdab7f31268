// Package steps defines the ordered wizard step table and the pure mapping
// between step IDs and their navigable paths.
package steps

import (
	"fmt"
	"strings"
)

// ExitPath is the location reached by advancing past the final step.
const ExitPath = "/"

// Step IDs for the default wizard.
const (
	Profile = iota + 1
	Document
	VerbalContext
	Summary
	Goals
	Risks
	Query
)

// Step describes one stage of the wizard.
type Step struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Registry is an immutable, ordered step table. IDs run 1..N in order.
type Registry struct {
	steps  []Step
	byPath map[string]int
}

// Default returns the registry for the legal-document wizard.
func Default() *Registry {
	r, err := New(
		Step{ID: Profile, Name: "User Profiling", Path: "/user-profiling"},
		Step{ID: Document, Name: "Document Submission", Path: "/document-submission"},
		Step{ID: VerbalContext, Name: "Verbal Context", Path: "/verbal-context"},
		Step{ID: Summary, Name: "Summarization", Path: "/summarization"},
		Step{ID: Goals, Name: "Goals Congruence", Path: "/goal-congruence"},
		Step{ID: Risks, Name: "Risk Analysis", Path: "/risk-analyser"},
		Step{ID: Query, Name: "RAG Bot", Path: "/query-bot"},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds a Registry, rejecting tables whose IDs are not 1..N in order
// or whose paths are empty, duplicated, or collide with ExitPath.
func New(steps ...Step) (*Registry, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidTable)
	}

	r := &Registry{
		steps:  make([]Step, len(steps)),
		byPath: make(map[string]int, len(steps)),
	}

	for i, s := range steps {
		if s.ID != i+1 {
			return nil, fmt.Errorf("%w: step %q has id %d, want %d", ErrInvalidTable, s.Name, s.ID, i+1)
		}
		path := normalize(s.Path)
		if path == "" || path == ExitPath {
			return nil, fmt.Errorf("%w: step %d has invalid path %q", ErrInvalidTable, s.ID, s.Path)
		}
		if _, dup := r.byPath[path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %q", ErrInvalidTable, path)
		}
		s.Path = path
		r.steps[i] = s
		r.byPath[path] = s.ID
	}

	return r, nil
}

// Len returns N, the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// All returns a copy of the step table in order.
func (r *Registry) All() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Contains reports whether id is within [1, N].
func (r *Registry) Contains(id int) bool {
	return id >= 1 && id <= len(r.steps)
}

// ByID returns the step with the given id.
func (r *Registry) ByID(id int) (Step, bool) {
	if !r.Contains(id) {
		return Step{}, false
	}
	return r.steps[id-1], true
}

// ByPath maps a location to its step. Trailing slashes and query strings are ignored.
func (r *Registry) ByPath(path string) (Step, bool) {
	id, ok := r.byPath[normalize(path)]
	if !ok {
		return Step{}, false
	}
	return r.steps[id-1], true
}

// First returns step 1.
func (r *Registry) First() Step {
	return r.steps[0]
}

// Last returns step N.
func (r *Registry) Last() Step {
	return r.steps[len(r.steps)-1]
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
