package usecases

import (
	"maps"
	"time"

	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

// RecordInput describes one handled request and the response sent for it.
type RecordInput struct {
	Request   reqlog.Request
	RouteType reqlog.RouteType
	MockID    int
	Status    int
	Headers   map[string]string
	Body      any

	// ID and Timestamp are generated when empty.
	ID        string
	Timestamp time.Time
}

// RecordRequestUseCase turns a handled request into a log record with a bounded body preview.
type RecordRequestUseCase struct {
	log          *reqlog.Log
	ids          ports.IDGenerator
	clock        ports.Clock
	logger       ports.Logger
	previewLimit int
}

// NewRecordRequestUseCase creates a new use case. previewLimit <= 0 disables truncation.
func NewRecordRequestUseCase(log *reqlog.Log, ids ports.IDGenerator, clock ports.Clock, logger ports.Logger, previewLimit int) *RecordRequestUseCase {
	return &RecordRequestUseCase{
		log:          log,
		ids:          ids,
		clock:        clock,
		logger:       logger,
		previewLimit: previewLimit,
	}
}

// Execute appends the record and returns the stored copy. It never fails.
func (uc *RecordRequestUseCase) Execute(in RecordInput) reqlog.Record {
	id := in.ID
	if id == "" {
		id = uc.ids.NewID()
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = uc.clock.Now()
	}

	headers := make(map[string]string, len(in.Headers))
	maps.Copy(headers, in.Headers)

	rec := reqlog.Record{
		ID:        id,
		RouteType: in.RouteType,
		MockID:    in.MockID,
		Method:    in.Request.Method,
		Path:      in.Request.Path,
		Headers:   nonNilHeaders(in.Request.Headers),
		Body:      in.Request.Body,
		Query:     nonNilQuery(in.Request.Query),
		Response: reqlog.Response{
			Status:      in.Status,
			Headers:     headers,
			BodyPreview: reqlog.Preview(in.Body, uc.previewLimit),
		},
		Timestamp: ts,
	}

	stored := uc.log.Append(rec)
	uc.logger.Debug("request recorded", "id", stored.ID, "type", stored.RouteType, "method", stored.Method, "path", stored.Path, "status", stored.Response.Status)
	return stored
}

func nonNilHeaders(h map[string]string) map[string]string {
	if h == nil {
		return map[string]string{}
	}
	return h
}

func nonNilQuery(q map[string]any) map[string]any {
	if q == nil {
		return map[string]any{}
	}
	return q
}
