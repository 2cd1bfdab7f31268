// Package module mounts HTTP handlers under single-level path prefixes and
// exposes the health and readiness probes of the process.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/cognivex/pkg/middleware"
)

// ErrInvalidPrefix is the panic value New raises for a malformed prefix.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves an inner router under a prefix such as "/api". Requests
// reach the router with the prefix removed, wrapped in the module's own
// middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
	handler    http.Handler
}

// New creates a Module for prefix. It panics with an error wrapping
// ErrInvalidPrefix unless prefix is a single segment with a leading slash.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
		handler:    router,
	}
}

// Handler returns the inner router wrapped in the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.handler
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the prefix from the request path and dispatches it.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.handler.ServeHTTP(w, stripPrefix(req, m.prefix))
}

// Use appends middleware to the stack. Call it before the module serves
// traffic; the wrapped handler is rebuilt on every call.
func (m *Module) Use(fns ...middleware.Func) {
	m.middleware.Use(fns...)
	m.handler = m.middleware.Apply(m.router)
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	out := new(http.Request)
	*out = *req
	out.URL = new(url.URL)
	*out.URL = *req.URL
	out.URL.Path = path
	out.URL.RawPath = ""
	return out
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %s must start with /", ErrInvalidPrefix, prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("%w: %s must be a single segment", ErrInvalidPrefix, prefix)
	}
	return nil
}
