package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

var validMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "CONNECT": true, "OPTIONS": true, "TRACE": true,
	mock.AnyMethod: true,
}

// CompiledMock is a definition accepted at start-up, with its headers resolved
// and its body template compiled.
type CompiledMock struct {
	Def      mock.Definition
	Headers  map[string]string
	Renderer mock.BodyRenderer // nil for static bodies
}

// RegisterMocksUseCase validates mock definitions once before serving.
// Invalid definitions are skipped with a warning and never abort start-up.
type RegisterMocksUseCase struct {
	files     ports.ResponseFiles
	templates ports.TemplateCompiler
	logger    ports.Logger
}

// NewRegisterMocksUseCase creates a new use case.
func NewRegisterMocksUseCase(files ports.ResponseFiles, templates ports.TemplateCompiler, logger ports.Logger) *RegisterMocksUseCase {
	return &RegisterMocksUseCase{files: files, templates: templates, logger: logger}
}

// Execute returns the accepted mocks in ordinal order. When two definitions share
// method and path the later one replaces the earlier one in place.
func (uc *RegisterMocksUseCase) Execute(ctx context.Context, defs []mock.Definition) []*CompiledMock {
	var out []*CompiledMock
	slots := make(map[string]int)

	for _, def := range defs {
		if ctx.Err() != nil {
			break
		}
		cm, ok := uc.compile(def.WithDefaults())
		if !ok {
			continue
		}
		key := cm.Def.Key()
		if i, dup := slots[key]; dup {
			uc.logger.Info("mock overrides earlier definition",
				"mock", cm.Def.Ordinal, "replaced", out[i].Def.Ordinal, "route", cm.Def.Route, "method", cm.Def.Method)
			out[i] = cm
			continue
		}
		slots[key] = len(out)
		out = append(out, cm)
	}

	for _, cm := range out {
		uc.logger.Info("mock registered",
			"mock", cm.Def.Ordinal, "method", cm.Def.Method, "route", cm.Def.Route,
			"file", cm.Def.ResponseFile, "status", cm.Def.Status)
	}
	return out
}

func (uc *RegisterMocksUseCase) compile(def mock.Definition) (*CompiledMock, bool) {
	if err := def.Validate(); err != nil {
		missing := "route"
		if errors.Is(err, mock.ErrMissingFile) {
			missing = "file"
		}
		uc.logger.Warn("skipping mock", "mock", def.Ordinal, "missing", missing)
		return nil, false
	}
	if !validMethods[def.Method] {
		uc.logger.Warn("skipping mock", "mock", def.Ordinal, "error", fmt.Sprintf("unsupported method %q", def.Method))
		return nil, false
	}
	if !mock.ValidStatus(def.Status) {
		uc.logger.Warn("skipping mock", "mock", def.Ordinal, "error", fmt.Sprintf("invalid status %d", def.Status))
		return nil, false
	}
	if err := uc.files.Stat(def.ResponseFile); err != nil {
		uc.logger.Warn("skipping mock", "mock", def.Ordinal, "file", def.ResponseFile, "error", err)
		return nil, false
	}

	cm := &CompiledMock{Def: def, Headers: uc.resolveHeaders(def)}

	if def.Engine != "" {
		if !uc.templates.Supports(def.Engine) {
			uc.logger.Warn("skipping mock", "mock", def.Ordinal, "error", fmt.Sprintf("unknown template engine %q", def.Engine))
			return nil, false
		}
		source, err := uc.files.Read(def.ResponseFile)
		if err != nil {
			uc.logger.Warn("skipping mock", "mock", def.Ordinal, "file", def.ResponseFile, "error", err)
			return nil, false
		}
		renderer, err := uc.templates.Compile(def.Engine, def.Label(), string(source))
		if err != nil {
			uc.logger.Warn("skipping mock", "mock", def.Ordinal, "engine", def.Engine, "error", err)
			return nil, false
		}
		cm.Renderer = renderer
	}
	return cm, true
}

// resolveHeaders merges RawHeaders over Headers with canonical header names.
// A malformed RawHeaders value is reported and treated as empty.
func (uc *RegisterMocksUseCase) resolveHeaders(def mock.Definition) map[string]string {
	headers := make(map[string]string, len(def.Headers))
	for k, v := range def.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	raw := strings.TrimSpace(def.RawHeaders)
	if raw == "" {
		return headers
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		uc.logger.Warn("invalid mock headers, using none", "mock", def.Ordinal, "error", err)
		return headers
	}
	for k, v := range parsed {
		k = http.CanonicalHeaderKey(k)
		switch tv := v.(type) {
		case string:
			headers[k] = tv
		case nil:
			headers[k] = ""
		default:
			b, _ := json.Marshal(tv)
			headers[k] = string(b)
		}
	}
	return headers
}
