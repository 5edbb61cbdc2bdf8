package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
)

var _ ports.Logger = (*NoopLogger)(nil)

// NoopLogger discards all log output.
type NoopLogger struct{}

func (l *NoopLogger) Info(string, ...any)  {}
func (l *NoopLogger) Warn(string, ...any)  {}
func (l *NoopLogger) Error(string, ...any) {}
func (l *NoopLogger) Debug(string, ...any) {}

var _ ports.Logger = (*RecordingLogger)(nil)

// LogLine is one message captured by RecordingLogger.
type LogLine struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger keeps every message for later assertions.
type RecordingLogger struct {
	mu    sync.Mutex
	lines []LogLine
}

func (l *RecordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, LogLine{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.add("ERROR", msg, args) }
func (l *RecordingLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args) }

// Lines returns the captured messages at the given level.
func (l *RecordingLogger) Lines(level string) []LogLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogLine
	for _, line := range l.lines {
		if line.Level == level {
			out = append(out, line)
		}
	}
	return out
}

var _ ports.Clock = (*FixedClock)(nil)

// FixedClock returns a fixed time and never sleeps.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }
func (c *FixedClock) SleepContext(context.Context, time.Duration) error {
	return nil
}

var _ ports.Clock = (*ManualClock)(nil)

// ManualClock only moves when advanced. SleepContext advances the clock by d and records it.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewManualClock creates a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *ManualClock) SleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// Sleeps returns every duration passed to SleepContext.
func (c *ManualClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

var _ ports.RateLimiter = (*StubRateLimiter)(nil)

// StubRateLimiter returns a configurable Allow result.
type StubRateLimiter struct {
	AllowAll bool
}

func (r *StubRateLimiter) Allow(context.Context, string, float64, int) bool {
	return r.AllowAll
}

var _ ports.IDGenerator = (*SequenceIDs)(nil)

// SequenceIDs returns "id-1", "id-2", ... in order.
type SequenceIDs struct {
	n atomic.Int64
}

func (g *SequenceIDs) NewID() string {
	return fmt.Sprintf("id-%d", g.n.Add(1))
}

var _ ports.TokenSigner = (*StubSigner)(nil)

// StubSigner returns a configurable token or error and remembers the last claims.
type StubSigner struct {
	Token string
	Err   error

	mu     sync.Mutex
	claims map[string]any
}

func (s *StubSigner) Sign(claims map[string]any) (string, error) {
	s.mu.Lock()
	s.claims = claims
	s.mu.Unlock()
	return s.Token, s.Err
}

// LastClaims returns the claims passed to the most recent Sign call.
func (s *StubSigner) LastClaims() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims
}

var _ mock.BodyRenderer = (*StubBodyRenderer)(nil)

// StubBodyRenderer returns a configurable render result.
type StubBodyRenderer struct {
	Result []byte
	Err    error
}

func (r *StubBodyRenderer) Render(mock.RenderContext) ([]byte, error) {
	return r.Result, r.Err
}
