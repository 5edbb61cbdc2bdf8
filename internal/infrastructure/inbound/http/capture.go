package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
)

const maxBodySize = 10 << 20 // 10 MB

// captureRequest reads the body and converts r into the form stored in the log.
// A body read error keeps whatever was read before the failure.
func (s *Server) captureRequest(r *http.Request) reqlog.Request {
	defer func() { _ = r.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.logger.Debug("failed to read request body", "path", r.URL.Path, "error", err)
	}

	return reqlog.Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		Headers:    captureHeaders(r),
		Body:       decodeBody(r.Header.Get("Content-Type"), raw),
		RawBody:    raw,
		Query:      captureQuery(r.URL.Query()),
		PathParams: capturePathParams(r),
		RemoteIP:   remoteIP(r.RemoteAddr),
		UserAgent:  r.UserAgent(),
	}
}

func captureHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header)+1)
	for k, v := range r.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	if r.Host != "" {
		headers["host"] = r.Host
	}
	return headers
}

func captureQuery(values url.Values) map[string]any {
	query := make(map[string]any, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
			query[k] = ""
		case 1:
			query[k] = v[0]
		default:
			query[k] = append([]string(nil), v...)
		}
	}
	return query
}

func capturePathParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if i < len(rctx.URLParams.Values) && key != "*" {
				params[key] = rctx.URLParams.Values[i]
			}
		}
	}
	return params
}

// decodeBody returns an empty object for an empty body, decoded JSON or form
// data when the content type says so, and the raw text otherwise. Bodies that
// are not valid UTF-8 are base64 encoded.
func decodeBody(contentType string, raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.Contains(mediaType, "json"):
		if v, ok := decodeJSONBody(raw); ok {
			return v
		}
	case mediaType == "application/x-www-form-urlencoded":
		if values, err := url.ParseQuery(string(raw)); err == nil {
			return captureQuery(values)
		}
	}

	if utf8.Valid(raw) {
		return string(raw)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func decodeJSONBody(raw []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return v, true
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
