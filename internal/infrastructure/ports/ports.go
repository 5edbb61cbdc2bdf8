package ports

import (
	"context"
	"time"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// Clock provides the current time (for testing).
type Clock interface {
	Now() time.Time
	// SleepContext blocks for d or until ctx is cancelled. Returns ctx.Err() if cancelled.
	SleepContext(ctx context.Context, d time.Duration) error
}

// Logger provides structured logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// RateLimiter checks whether a request is allowed under rate limits.
type RateLimiter interface {
	// Allow checks if a request identified by key is within the rate limit.
	// rate is tokens per second, burst is the max burst size.
	Allow(ctx context.Context, key string, rate float64, burst int) bool
}

// TokenSigner signs a claims payload into a bearer token.
type TokenSigner interface {
	Sign(claims map[string]any) (string, error)
}

// IDGenerator produces unique identifiers for records and refresh tokens.
type IDGenerator interface {
	NewID() string
}

// ResponseFiles reads response bodies from the mock base directory.
type ResponseFiles interface {
	Stat(name string) error
	Read(name string) ([]byte, error)
}

// TemplateCompiler compiles response bodies for a named template engine.
type TemplateCompiler interface {
	Supports(engine string) bool
	Compile(engine, name, source string) (mock.BodyRenderer, error)
}
