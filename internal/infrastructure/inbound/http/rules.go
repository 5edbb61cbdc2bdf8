package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// rule is one entry of the ordered dispatch list. Each rule owns a single-route
// mux used only to decide whether the rule applies and to extract path params.
type rule struct {
	name    string
	methods []string // empty matches every method
	pattern string
	mux     *chi.Mux
	handle  http.HandlerFunc
}

func noopHandler(http.ResponseWriter, *http.Request) {}

// newRule compiles pattern into a matcher. chi panics on malformed patterns,
// which is reported as an error instead.
func newRule(name string, methods []string, pattern string, handle http.HandlerFunc) (r *rule, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("invalid route pattern %q: %v", pattern, rec)
		}
	}()

	mux := chi.NewRouter()
	if len(methods) == 0 {
		mux.HandleFunc(pattern, noopHandler)
	} else {
		for _, m := range methods {
			mux.MethodFunc(m, pattern, noopHandler)
		}
	}
	return &rule{name: name, methods: methods, pattern: pattern, mux: mux, handle: handle}, nil
}

// match reports whether the rule applies and returns a route context holding its path params.
func (r *rule) match(method, path string) (*chi.Context, bool) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, method, path) {
		return nil, false
	}
	return rctx, true
}

func (r *rule) describe() string {
	if len(r.methods) == 0 {
		return mock.AnyMethod + " " + r.pattern
	}
	return strings.Join(r.methods, ",") + " " + r.pattern
}

// dispatch runs the first rule that matches the request.
func (s *Server) dispatch(rules []*rule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, rl := range rules {
			rctx, ok := rl.match(r.Method, r.URL.Path)
			if !ok {
				continue
			}
			ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
			rl.handle(w, r.WithContext(ctx))
			return
		}
		s.noMatch(w, r)
	}
}

func (s *Server) noMatch(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("request received (no rule)", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	writeJSON(w, map[string]string{
		"error":   "no_match",
		"method":  r.Method,
		"path":    r.URL.Path,
		"message": "No route configured for this request",
	})
}
