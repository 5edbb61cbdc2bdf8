package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

// ReplayMockUseCase answers a request with the canned response of a registered mock.
type ReplayMockUseCase struct {
	files    ports.ResponseFiles
	limiter  ports.RateLimiter
	clock    ports.Clock
	recorder *RecordRequestUseCase
	logger   ports.Logger
}

// NewReplayMockUseCase creates a new use case.
func NewReplayMockUseCase(
	files ports.ResponseFiles,
	limiter ports.RateLimiter,
	clock ports.Clock,
	recorder *RecordRequestUseCase,
	logger ports.Logger,
) *ReplayMockUseCase {
	return &ReplayMockUseCase{
		files:    files,
		limiter:  limiter,
		clock:    clock,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute loads the body of cm, waits the configured delay and records the exchange.
// Loading failures produce a 500 reply without delay. A cancelled ctx only shortens the delay.
func (uc *ReplayMockUseCase) Execute(ctx context.Context, cm *CompiledMock, req reqlog.Request) Reply {
	def := cm.Def

	if rl := def.RateLimit; rl != nil && rl.Rate > 0 {
		if !uc.limiter.Allow(ctx, fmt.Sprintf("mock:%d", def.Ordinal), rl.Rate, rl.Burst) {
			headers := jsonHeaders()
			headers["Retry-After"] = "1"
			body := ErrorBody{Error: "rate_limited", Message: fmt.Sprintf("rate limit exceeded for mock #%d", def.Ordinal)}
			return uc.reply(req, def, http.StatusTooManyRequests, headers, body)
		}
	}

	body, err := uc.loadBody(cm, req)
	if err != nil {
		uc.logger.Error("mock route failure", "mock", def.Ordinal, "file", def.ResponseFile, "error", err)
		body := ErrorBody{Error: "mock_route_failure", Message: err.Error()}
		return uc.reply(req, def, http.StatusInternalServerError, jsonHeaders(), body)
	}

	headers := make(map[string]string, len(cm.Headers)+1)
	for k, v := range cm.Headers {
		if http.CanonicalHeaderKey(k) == "Content-Type" {
			continue
		}
		headers[k] = v
	}
	headers["Content-Type"] = def.ContentType

	if d := def.Delay(); d > 0 {
		if err := uc.clock.SleepContext(ctx, d); err != nil {
			uc.logger.Debug("mock delay interrupted", "mock", def.Ordinal, "error", err)
		}
	}

	return uc.reply(req, def, def.Status, headers, body)
}

func (uc *ReplayMockUseCase) reply(req reqlog.Request, def mock.Definition, status int, headers map[string]string, body any) Reply {
	rec := uc.recorder.Execute(RecordInput{
		Request:   req,
		RouteType: reqlog.RouteMock,
		MockID:    def.Ordinal,
		Status:    status,
		Headers:   headers,
		Body:      body,
	})
	return Reply{Status: status, Headers: headers, Body: body, Record: rec}
}

// loadBody returns the decoded JSON value for JSON content types and the raw bytes otherwise.
// A top-level JSON string is kept as its encoded literal so it is sent and previewed quoted.
func (uc *ReplayMockUseCase) loadBody(cm *CompiledMock, req reqlog.Request) (any, error) {
	var (
		raw []byte
		err error
	)
	if cm.Renderer != nil {
		raw, err = cm.Renderer.Render(mock.RenderContext{
			Method:      req.Method,
			Path:        req.Path,
			Headers:     req.Headers,
			QueryParams: req.QueryParams(),
			PathParams:  req.PathParams,
			Body:        req.RawBody,
			Now:         uc.clock.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", cm.Def.ResponseFile, err)
		}
	} else {
		raw, err = uc.files.Read(cm.Def.ResponseFile)
		if err != nil {
			return nil, err
		}
	}

	if !cm.Def.IsJSON() {
		return raw, nil
	}
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(string); ok {
		return json.RawMessage(bytes.TrimSpace(raw)), nil
	}
	return v, nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON response body: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON response body: trailing data after value")
	}
	return v, nil
}
