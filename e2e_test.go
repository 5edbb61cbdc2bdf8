package fakerequests_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiorvs/fake-requests/internal/app"
)

const e2eSecret = "e2e-secret"

func setupE2EServer(t *testing.T, env map[string]string, files map[string]string) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	vars := map[string]string{
		"MOCKS_DIR":   dir,
		"JWT_SECRET":  e2eSecret,
		"WATCH_MOCKS": "false",
	}
	for k, v := range env {
		vars[k] = v
	}
	cfg := app.LoadEnv(func(k string) string { return vars[k] })

	a, err := app.NewWithOutput(cfg, io.Discard)
	require.NoError(t, err)

	ts := httptest.NewServer(a.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func listRequests(t *testing.T, ts *httptest.Server) []map[string]any {
	t.Helper()
	resp, err := http.Get(ts.URL + "/requests")
	require.NoError(t, err)
	defer resp.Body.Close()

	var env struct {
		Status  string           `json:"status"`
		Message string           `json:"message"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Equal(t, "success", env.Status)
	require.Equal(t, "Requests retrieved successfully", env.Message)
	return env.Data
}

func TestE2E_HealthCheck(t *testing.T) {
	ts := setupE2EServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestE2E_ConcurrentFallbackRequestsAreAllLogged(t *testing.T) {
	ts := setupE2EServer(t, nil, nil)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/events", "application/json", strings.NewReader(`{"n":1}`))
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	records := listRequests(t, ts)
	require.Len(t, records, n)

	ids := map[string]bool{}
	var last time.Time
	for _, rec := range records {
		id := rec["id"].(string)
		assert.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
		assert.Equal(t, "fallback", rec["routeType"])

		stamp, err := time.Parse(time.RFC3339Nano, rec["timestamp"].(string))
		require.NoError(t, err)
		assert.False(t, stamp.Before(last), "timestamps must not decrease")
		last = stamp
	}
}

func TestE2E_ClearThenList(t *testing.T) {
	ts := setupE2EServer(t, nil, nil)

	for i := 0; i < 3; i++ {
		resp, err := http.Post(ts.URL+"/x", "text/plain", strings.NewReader("hi"))
		require.NoError(t, err)
		resp.Body.Close()
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/requests", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"status":"success","message":"Requests cleared"}`, string(body))

	assert.Empty(t, listRequests(t, ts))
}

func TestE2E_TokenIssuer(t *testing.T) {
	ts := setupE2EServer(t, map[string]string{
		"JWT_TTL":               "3600",
		"INCLUDE_REFRESH_TOKEN": "true",
	}, nil)

	issue := func() map[string]any {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/login", strings.NewReader(`{"user":"a","pass":"b"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "e2e-agent")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	first, second := issue(), issue()
	for _, body := range []map[string]any{first, second} {
		assert.NotEmpty(t, body["access_token"])
		assert.Equal(t, "Bearer", body["token_type"])
		assert.Equal(t, float64(3600), body["expires_in"])
		assert.NotEmpty(t, body["refresh_token"])
	}
	assert.NotEqual(t, first["access_token"], second["access_token"])
	assert.NotEqual(t, first["refresh_token"], second["refresh_token"])

	token, err := jwt.Parse(first["access_token"].(string), func(*jwt.Token) (any, error) {
		return []byte(e2eSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "mock-user-id", claims["sub"])
	assert.Equal(t, "mock-api", claims["iss"])
	assert.Equal(t, float64(3600), claims["exp"].(float64)-claims["iat"].(float64))
	meta := claims["meta"].(map[string]any)
	assert.Equal(t, "e2e-agent", meta["ua"])
	assert.Equal(t, "/login", meta["path"])

	records := listRequests(t, ts)
	require.Len(t, records, 2)
	assert.Equal(t, "token", records[0]["routeType"])
}

func TestE2E_DelayedMock(t *testing.T) {
	ts := setupE2EServer(t, map[string]string{
		"MOCK_COUNT":      "1",
		"MOCK_1_ROUTE":    "/teapot",
		"MOCK_1_FILE":     "x.json",
		"MOCK_1_STATUS":   "418",
		"MOCK_1_DELAY_MS": "100",
		"MOCK_1_HEADERS":  `{"X-Brew":"earl-grey"}`,
	}, map[string]string{"x.json": `{"x":1}`})

	start := time.Now()
	resp, err := http.Get(ts.URL + "/teapot")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	elapsed := time.Since(start)

	assert.Equal(t, 418, resp.StatusCode)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.JSONEq(t, `{"x":1}`, string(body))
	assert.Equal(t, "earl-grey", resp.Header.Get("X-Brew"))

	records := listRequests(t, ts)
	require.Len(t, records, 1)
	assert.Equal(t, "mock", records[0]["routeType"])
	assert.Equal(t, float64(1), records[0]["mockId"])
}

func TestE2E_PreviewTruncation(t *testing.T) {
	big := `"` + strings.Repeat("a", 5000) + `"`
	ts := setupE2EServer(t, map[string]string{
		"LOG_BODY_PREVIEW_MAX": "10",
		"MOCK_COUNT":           "1",
		"MOCK_1_ROUTE":         "/big",
		"MOCK_1_FILE":          "big.bin",
		"MOCK_1_CONTENT_TYPE":  "application/octet-stream",
	}, map[string]string{"big.bin": big})

	resp, err := http.Get(ts.URL + "/big")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Len(t, body, 5002)

	records := listRequests(t, ts)
	require.Len(t, records, 1)
	preview := records[0]["response"].(map[string]any)["bodyPreview"].(string)
	assert.Equal(t, `"aaaaaaaaa ... [truncated 4992 bytes]`, preview)
}

func TestE2E_SkippedMockFallsThroughToFallback(t *testing.T) {
	ts := setupE2EServer(t, map[string]string{
		"MOCK_COUNT":   "1",
		"MOCK_1_ROUTE": "/ghost",
		"MOCK_1_FILE":  "missing.json",
	}, nil)

	resp, err := http.Post(ts.URL+"/ghost", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/ghost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	records := listRequests(t, ts)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "fallback", rec["routeType"])
	}
}

func TestE2E_MalformedMockHeaders(t *testing.T) {
	ts := setupE2EServer(t, map[string]string{
		"MOCK_COUNT":     "1",
		"MOCK_1_ROUTE":   "/h",
		"MOCK_1_FILE":    "h.json",
		"MOCK_1_HEADERS": `{not-json`,
	}, map[string]string{"h.json": `{"ok":true}`})

	resp, err := http.Get(ts.URL + "/h")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
