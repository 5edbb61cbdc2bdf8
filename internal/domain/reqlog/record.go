package reqlog

import (
	"errors"
	"time"
)

// RouteType tags which handler produced a record.
type RouteType string

const (
	RouteToken    RouteType = "token"
	RouteMock     RouteType = "mock"
	RouteFallback RouteType = "fallback"
)

// ErrNotFound is returned when no record carries the requested ID.
var ErrNotFound = errors.New("request record not found")

// Record is one captured request together with the response that was sent for it.
type Record struct {
	ID        string            `json:"id"`
	RouteType RouteType         `json:"routeType"`
	MockID    int               `json:"mockId,omitempty"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Headers   map[string]string `json:"headers"`
	Body      any               `json:"body"`
	Query     map[string]any    `json:"query"`
	Response  Response          `json:"response"`
	Timestamp time.Time         `json:"timestamp"`
}

// Response is the logged view of a sent response. The body is kept only as a bounded preview.
type Response struct {
	Status      int               `json:"status"`
	Headers     map[string]string `json:"headers"`
	BodyPreview string            `json:"bodyPreview"`
}
