package usecases

import (
	"net/http"
	"time"

	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

// CapturedRequest is the request echo returned to the caller of the catch-all route.
type CapturedRequest struct {
	ID        string            `json:"id"`
	RouteType reqlog.RouteType  `json:"routeType"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Headers   map[string]string `json:"headers"`
	Body      any               `json:"body"`
	Query     map[string]any    `json:"query"`
	Timestamp time.Time         `json:"timestamp"`
}

// Envelope is the status wrapper used by the catch-all route and the inspection API.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// CaptureFallbackUseCase acknowledges and records requests no other rule claimed.
type CaptureFallbackUseCase struct {
	recorder *RecordRequestUseCase
	ids      ports.IDGenerator
	clock    ports.Clock
}

// NewCaptureFallbackUseCase creates a new use case.
func NewCaptureFallbackUseCase(recorder *RecordRequestUseCase, ids ports.IDGenerator, clock ports.Clock) *CaptureFallbackUseCase {
	return &CaptureFallbackUseCase{recorder: recorder, ids: ids, clock: clock}
}

// Execute records the request and returns the acknowledgement. It has no failure path.
func (uc *CaptureFallbackUseCase) Execute(req reqlog.Request) Reply {
	captured := CapturedRequest{
		ID:        uc.ids.NewID(),
		RouteType: reqlog.RouteFallback,
		Method:    req.Method,
		Path:      req.Path,
		Headers:   nonNilHeaders(req.Headers),
		Body:      req.Body,
		Query:     nonNilQuery(req.Query),
		Timestamp: uc.clock.Now(),
	}
	body := Envelope{
		Status:  "success",
		Message: "Request received",
		Data:    captured,
	}
	headers := jsonHeaders()

	rec := uc.recorder.Execute(RecordInput{
		ID:        captured.ID,
		Timestamp: captured.Timestamp,
		Request:   req,
		RouteType: reqlog.RouteFallback,
		Status:    http.StatusOK,
		Headers:   headers,
		Body:      body,
	})

	return Reply{Status: http.StatusOK, Headers: headers, Body: body, Record: rec}
}
