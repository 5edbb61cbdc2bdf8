package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// EngineCompiler compiles a template source string into a BodyRenderer.
type EngineCompiler interface {
	Compile(name, source string) (mock.BodyRenderer, error)
}

// Registry maps engine names to their compilers.
type Registry struct {
	engines map[string]EngineCompiler
}

// NewRegistry creates a registry with the built-in engines (expr, jinja2).
func NewRegistry() *Registry {
	return &Registry{
		engines: map[string]EngineCompiler{
			"expr":   &ExprCompiler{},
			"jinja2": &Jinja2Compiler{},
		},
	}
}

// Supports reports whether engine names a registered compiler.
func (r *Registry) Supports(engine string) bool {
	_, ok := r.engines[strings.ToLower(engine)]
	return ok
}

// Compile resolves the engine by name and compiles the source.
func (r *Registry) Compile(engine, name, source string) (mock.BodyRenderer, error) {
	ec, ok := r.engines[strings.ToLower(engine)]
	if !ok {
		return nil, fmt.Errorf("unknown template engine: %q (supported: %s)", engine, strings.Join(r.names(), ", "))
	}
	return ec.Compile(name, source)
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
