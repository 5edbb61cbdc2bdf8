package wiring

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	inboundhttp "github.com/fabiorvs/fake-requests/internal/infrastructure/inbound/http"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/clock"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/filesystem"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/ids"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/ratelimit"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/template"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/tokens"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/usecases"
)

// Params holds the subset of configuration needed to construct infrastructure components.
type Params struct {
	MocksDir     string
	Mocks        []mock.Definition
	LogCapacity  int
	PreviewLimit int

	Token        usecases.TokenSettings
	JWTAlgorithm string
	JWTSecret    string

	Server         inboundhttp.Options
	RateLimiterTTL time.Duration
	Logger         ports.Logger

	// Clock defaults to the system clock.
	Clock ports.Clock
}

// Container owns the construction and lifecycle of all infrastructure components.
type Container struct {
	logger           ports.Logger
	server           *inboundhttp.Server
	log              *reqlog.Log
	store            *filesystem.ResponseStore
	mocks            []*usecases.CompiledMock
	rateLimiterStore *ratelimit.TokenBucketStore
	closeOnce        sync.Once
}

// New constructs all infrastructure components and registers the mock
// definitions. Fallible operations run before the rate limiter store starts
// its background goroutine.
func New(p Params) (*Container, error) {
	store, err := filesystem.NewResponseStore(p.MocksDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create response store: %w", err)
	}
	if _, err := os.Stat(store.BaseDir()); err != nil {
		p.Logger.Warn("mocks directory not accessible", "dir", store.BaseDir(), "error", err)
	}

	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	idGen := ids.New()

	signer := tokens.NewJWTSigner(p.JWTAlgorithm, p.JWTSecret)
	if err := signer.Err(); err != nil && p.Server.TokenEnabled {
		p.Logger.Error("token signer misconfigured, token requests will fail", "alg", p.JWTAlgorithm, "error", err)
	}

	mocks := usecases.NewRegisterMocksUseCase(store, template.NewRegistry(), p.Logger).
		Execute(context.Background(), p.Mocks)

	// Start background goroutine only after all fallible ops succeed.
	rateLimiterStore := ratelimit.NewTokenBucketStore(p.RateLimiterTTL, clk)

	log := reqlog.NewLog(p.LogCapacity)
	recorder := usecases.NewRecordRequestUseCase(log, idGen, clk, p.Logger, p.PreviewLimit)
	tokenUC := usecases.NewIssueTokenUseCase(p.Token, signer, idGen, clk, recorder, p.Logger)
	replayUC := usecases.NewReplayMockUseCase(store, rateLimiterStore, clk, recorder, p.Logger)
	fallbackUC := usecases.NewCaptureFallbackUseCase(recorder, idGen, clk)

	server := inboundhttp.NewServer(p.Server, log, tokenUC, replayUC, fallbackUC, p.Logger, mocks)

	return &Container{
		logger:           p.Logger,
		server:           server,
		log:              log,
		store:            store,
		mocks:            mocks,
		rateLimiterStore: rateLimiterStore,
	}, nil
}

// Close releases resources held by the container. It is idempotent.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		c.rateLimiterStore.Stop()
	})
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger {
	return c.logger
}

// Server returns the HTTP server.
func (c *Container) Server() *inboundhttp.Server {
	return c.server
}

// RequestLog returns the in-memory request log.
func (c *Container) RequestLog() *reqlog.Log {
	return c.log
}

// Mocks returns the registered mocks in dispatch order.
func (c *Container) Mocks() []*usecases.CompiledMock {
	return c.mocks
}

// MocksDir returns the absolute directory response files are read from.
func (c *Container) MocksDir() string {
	return c.store.BaseDir()
}

// RateLimiterStore returns the token bucket store for rate limiting.
func (c *Container) RateLimiterStore() *ratelimit.TokenBucketStore {
	return c.rateLimiterStore
}

// ResponseFiles returns the absolute paths of the files backing registered mocks,
// mapped to the ordinals that use them.
func (c *Container) ResponseFiles() map[string][]int {
	files := make(map[string][]int)
	for _, cm := range c.mocks {
		path, err := c.store.Resolve(cm.Def.ResponseFile)
		if err != nil {
			continue
		}
		files[path] = append(files[path], cm.Def.Ordinal)
	}
	return files
}

// ReportFileChanges logs whether each changed response file is still available.
// Registered mocks are not affected; a missing file makes its mocks answer 500.
func (c *Container) ReportFileChanges(paths []string) {
	files := c.ResponseFiles()
	for _, path := range slices.Sorted(slices.Values(paths)) {
		ordinals, ok := files[path]
		if !ok {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			c.logger.Warn("response file removed", "file", path, "mocks", ordinals)
			continue
		}
		c.logger.Info("response file changed", "file", path, "mocks", ordinals)
	}
}
