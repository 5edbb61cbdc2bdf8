package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/filesystem"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/template"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/usecases"
	"github.com/fabiorvs/fake-requests/internal/testutil"
)

func compileOne(t *testing.T, files map[string]string, def mock.Definition) (*usecases.CompiledMock, *filesystem.ResponseStore) {
	t.Helper()
	store := newResponseStore(t, files)
	got := usecases.NewRegisterMocksUseCase(store, template.NewRegistry(), &testutil.NoopLogger{}).
		Execute(context.Background(), []mock.Definition{def})
	require.Len(t, got, 1)
	return got[0], store
}

func TestReplayMock_JSONBody(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"x.json": `{"x":1}`}, mock.Definition{
		Ordinal: 4, Route: "/x", ResponseFile: "x.json", Status: 418, DelayMs: 100,
		Headers: map[string]string{"X-Mock": "yes"},
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/x"})

	assert.Equal(t, 418, reply.Status)
	assert.Equal(t, "application/json", reply.Headers["Content-Type"])
	assert.Equal(t, "yes", reply.Headers["X-Mock"])
	assert.Equal(t, map[string]any{"x": json.Number("1")}, reply.Body)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, f.clock.Sleeps())

	assert.Equal(t, reqlog.RouteMock, reply.Record.RouteType)
	assert.Equal(t, 4, reply.Record.MockID)
	assert.Equal(t, 418, reply.Record.Response.Status)
	assert.Equal(t, `{"x":1}`, reply.Record.Response.BodyPreview)
	assert.Equal(t, epoch.Add(100*time.Millisecond), reply.Record.Timestamp)
}

func TestReplayMock_BinaryBody(t *testing.T) {
	f := newFixture(4)
	cm, store := compileOne(t, map[string]string{"logo.png": "\x89PNG\r\n"}, mock.Definition{
		Ordinal: 1, Route: "/logo", ResponseFile: "logo.png", ContentType: "image/png",
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/logo"})

	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Equal(t, []byte("\x89PNG\r\n"), reply.Body)
	assert.Equal(t, "image/png", reply.Headers["Content-Type"])
	assert.Equal(t, "\x89PNG ... [truncated 2 bytes]", reply.Record.Response.BodyPreview)
	assert.Empty(t, f.clock.Sleeps())
}

func TestReplayMock_InvalidJSONFails(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"bad.json": `{"x":`}, mock.Definition{
		Ordinal: 2, Route: "/bad", ResponseFile: "bad.json", DelayMs: 500,
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/bad"})

	assert.Equal(t, http.StatusInternalServerError, reply.Status)
	body, ok := reply.Body.(usecases.ErrorBody)
	require.True(t, ok)
	assert.Equal(t, "mock_route_failure", body.Error)
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, 2, reply.Record.MockID)
	assert.Equal(t, reqlog.RouteMock, reply.Record.RouteType)
	assert.Empty(t, f.clock.Sleeps())
}

func TestReplayMock_TrailingJSONFails(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"two.json": `{} {}`}, mock.Definition{
		Ordinal: 1, Route: "/two", ResponseFile: "two.json",
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/two"})

	assert.Equal(t, http.StatusInternalServerError, reply.Status)
}

func TestReplayMock_FileRemovedAfterRegistration(t *testing.T) {
	f := newFixture(2048)
	cm, _ := compileOne(t, map[string]string{"a.json": `{}`}, mock.Definition{Ordinal: 1, Route: "/a", ResponseFile: "a.json"})
	empty := newResponseStore(t, nil)
	uc := usecases.NewReplayMockUseCase(empty, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/a"})

	assert.Equal(t, http.StatusInternalServerError, reply.Status)
	assert.Len(t, f.logger.Lines("ERROR"), 1)
	assert.Equal(t, 1, f.log.Count())
}

func TestReplayMock_RateLimited(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"a.json": `{}`}, mock.Definition{
		Ordinal: 7, Route: "/a", ResponseFile: "a.json", RateLimit: &mock.RateLimit{Rate: 1, Burst: 1},
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: false}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/a"})

	assert.Equal(t, http.StatusTooManyRequests, reply.Status)
	assert.Equal(t, "1", reply.Headers["Retry-After"])
	assert.Equal(t, "rate_limited", reply.Body.(usecases.ErrorBody).Error)
	assert.Equal(t, 7, reply.Record.MockID)
}

func TestReplayMock_CancelledDelayStillRecords(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"a.json": `{}`}, mock.Definition{
		Ordinal: 1, Route: "/a", ResponseFile: "a.json", DelayMs: 1000,
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reply := uc.Execute(ctx, cm, reqlog.Request{Method: "GET", Path: "/a"})

	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Equal(t, 1, f.log.Count())
	assert.Len(t, f.logger.Lines("DEBUG"), 2)
}

func TestReplayMock_TemplatedBody(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"user.json": `{"id":"${pathParam('id')}","method":"${method}"}`}, mock.Definition{
		Ordinal: 1, Route: "/users/:id", ResponseFile: "user.json", Engine: "expr",
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{
		Method:     "GET",
		Path:       "/users/42",
		PathParams: map[string]string{"id": "42"},
	})

	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Equal(t, map[string]any{"id": "42", "method": "GET"}, reply.Body)
}

func TestReplayMock_RenderFailure(t *testing.T) {
	f := newFixture(2048)
	cm := &usecases.CompiledMock{
		Def:      mock.Definition{Ordinal: 9, Route: "/r", ResponseFile: "r.json", ContentType: "application/json", Status: 200},
		Renderer: &testutil.StubBodyRenderer{Err: errors.New("boom")},
	}
	uc := usecases.NewReplayMockUseCase(newResponseStore(t, nil), &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/r"})

	assert.Equal(t, http.StatusInternalServerError, reply.Status)
	assert.Contains(t, reply.Body.(usecases.ErrorBody).Message, "boom")
	assert.Equal(t, 9, reply.Record.MockID)
}

func TestReplayMock_JSONStringBodyStaysQuoted(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"s.json": "  \"hello\"\n"}, mock.Definition{
		Ordinal: 1, Route: "/s", ResponseFile: "s.json",
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/s"})

	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Equal(t, json.RawMessage(`"hello"`), reply.Body)
	assert.Equal(t, `"hello"`, reply.Record.Response.BodyPreview)
}

func TestReplayMock_DeclaredContentTypeWins(t *testing.T) {
	f := newFixture(2048)
	cm, store := compileOne(t, map[string]string{"x.json": `{}`}, mock.Definition{
		Ordinal: 1, Route: "/x", ResponseFile: "x.json",
		RawHeaders: `{"content-type":"text/plain","x-extra":"1"}`,
	})
	uc := usecases.NewReplayMockUseCase(store, &testutil.StubRateLimiter{AllowAll: true}, f.clock, f.recorder, f.logger)

	reply := uc.Execute(context.Background(), cm, reqlog.Request{Method: "GET", Path: "/x"})

	assert.Equal(t, map[string]string{"Content-Type": "application/json", "X-Extra": "1"}, reply.Headers)
	assert.Equal(t, reply.Headers, reply.Record.Response.Headers)
}
