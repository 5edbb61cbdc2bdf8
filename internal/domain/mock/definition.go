package mock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMissingRoute is returned by Validate when a definition has no route pattern.
	ErrMissingRoute = errors.New("missing route")
	// ErrMissingFile is returned by Validate when a definition has no response file.
	ErrMissingFile = errors.New("missing response file")
)

// AnyMethod registers a definition for every HTTP method.
const AnyMethod = "*"

// Definition is a single declared mock route. It is immutable once loaded.
type Definition struct {
	// Ordinal numbers definitions from 1 in declaration order and identifies the mock in the request log.
	Ordinal      int
	Route        string
	Method       string
	ResponseFile string
	Status       int
	Headers      map[string]string
	// RawHeaders is an unparsed JSON object of extra headers, as given in env-style configuration.
	RawHeaders  string
	DelayMs     int
	ContentType string
	Engine      string // "" = static, "expr", "jinja2"
	RateLimit   *RateLimit
}

// RateLimit is a token-bucket limit applied per definition.
type RateLimit struct {
	Rate  float64
	Burst int
}

// Validate reports the first required field that is missing.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Route) == "" {
		return ErrMissingRoute
	}
	if strings.TrimSpace(d.ResponseFile) == "" {
		return ErrMissingFile
	}
	return nil
}

// Key identifies the route-table slot the definition occupies.
func (d Definition) Key() string {
	return d.Method + ":" + d.Pattern()
}

// IsJSON reports whether the response file should be parsed as JSON.
func (d Definition) IsJSON() bool {
	ct := strings.ToLower(d.ContentType)
	return strings.Contains(ct, "json")
}

// Delay returns the artificial latency applied before responding.
func (d Definition) Delay() time.Duration {
	if d.DelayMs <= 0 {
		return 0
	}
	return time.Duration(d.DelayMs) * time.Millisecond
}

// Label is a short human-readable name used in logs.
func (d Definition) Label() string {
	return fmt.Sprintf("mock #%d %s %s", d.Ordinal, d.Method, d.Route)
}

// Pattern converts the route into router syntax: express-style ":name" segments
// become "{name}" and a leading slash is enforced.
func (d Definition) Pattern() string {
	return ConvertPattern(d.Route)
}

// ConvertPattern rewrites ":name" path segments as "{name}".
func ConvertPattern(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	segments := strings.Split(route, "/")
	for i, seg := range segments {
		if len(seg) > 1 && seg[0] == ':' {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// ValidStatus reports whether code can be written as an HTTP status line.
func ValidStatus(code int) bool {
	return code >= 100 && code <= 999
}

// Default values applied by WithDefaults.
const (
	DefaultMethod      = "GET"
	DefaultStatus      = 200
	DefaultContentType = "application/json"
)

// WithDefaults fills unset fields and normalizes the method name.
// "ALL" and "ANY" are accepted as aliases of AnyMethod.
func (d Definition) WithDefaults() Definition {
	d.Method = strings.ToUpper(strings.TrimSpace(d.Method))
	switch d.Method {
	case "":
		d.Method = DefaultMethod
	case "ALL", "ANY":
		d.Method = AnyMethod
	}
	if d.Status <= 0 {
		d.Status = DefaultStatus
	}
	if strings.TrimSpace(d.ContentType) == "" {
		d.ContentType = DefaultContentType
	}
	d.Engine = strings.ToLower(strings.TrimSpace(d.Engine))
	return d
}
