// Package middleware wraps the API module's routes with request logging,
// panic recovery and the CORS policy of the wizard front end.
package middleware

import (
	"net/http"
	"slices"
)

// Func wraps a handler with cross-cutting behavior.
type Func func(http.Handler) http.Handler

// System is an ordered middleware stack. The first Func registered is the
// outermost wrapper.
type System interface {
	Use(fns ...Func)
	Apply(handler http.Handler) http.Handler
}

type stack []Func

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fns ...Func) {
	*s = append(*s, fns...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, fn := range slices.Backward(*s) {
		handler = fn(handler)
	}
	return handler
}
