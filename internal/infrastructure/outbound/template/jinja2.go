package template

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// Jinja2Compiler compiles body templates using Pongo2 (Django/Jinja2-style).
type Jinja2Compiler struct{}

// Compile parses the source as a Pongo2 template.
func (c *Jinja2Compiler) Compile(name, source string) (mock.BodyRenderer, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jinja2 template %q: %w", name, err)
	}
	return &jinja2Renderer{tpl: tpl}, nil
}

type jinja2Renderer struct {
	tpl *pongo2.Template
}

func (r *jinja2Renderer) Render(ctx mock.RenderContext) ([]byte, error) {
	h := newHelpers(ctx)
	pongoCtx := pongo2.Context{
		"method":      ctx.Method,
		"path":        ctx.Path,
		"headers":     ctx.Headers,
		"queryParams": ctx.QueryParams,
		"pathParams":  ctx.PathParams,
		"body":        string(ctx.Body),
		"now":         ctx.Now,

		"pathParam":  h.pathParam,
		"queryParam": h.queryParam,
		"header":     h.header,
		"uuid":       h.uuid,
		"randomInt":  h.randomInt,
		"seq":        seqInts,
		"toJSON":     toJSONString,
		"jsonPath":   h.jsonPath,
		"xmlPath":    h.xmlPath,
		"nowFormat":  h.nowFormat,
	}

	result, err := r.tpl.Execute(pongoCtx)
	if err != nil {
		return nil, fmt.Errorf("jinja2 template render failed: %w", err)
	}
	return []byte(result), nil
}
