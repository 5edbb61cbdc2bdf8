package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
	inboundhttp "github.com/fabiorvs/fake-requests/internal/infrastructure/inbound/http"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/filesystem"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/logging"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/usecases"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/wiring"
)

// App is the thin lifecycle manager that delegates dependency construction to wiring.Container.
type App struct {
	cfg        Config
	container  *wiring.Container
	httpServer *http.Server
}

// New validates cfg, loads mock definitions, wires infrastructure components
// via the container, and sets up the HTTP server. Log output goes to stdout.
func New(cfg Config) (*App, error) {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput is New with log output sent to w.
func NewWithOutput(cfg Config, w io.Writer) (*App, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewWithOptions(w, cfg.LogLevel, cfg.LogFormat)

	defs, err := mockDefinitions(cfg)
	if err != nil {
		return nil, err
	}

	container, err := wiring.New(wiring.Params{
		MocksDir:     cfg.MocksDir,
		Mocks:        defs,
		LogCapacity:  cfg.LogCapacity,
		PreviewLimit: cfg.LogBodyPreviewMax,
		Token: usecases.TokenSettings{
			Field:               cfg.TokenField,
			Status:              cfg.TokenStatus,
			TTLSeconds:          cfg.JWTTTL,
			TokenType:           cfg.TokenType,
			IncludeTokenType:    cfg.IncludeTokenType,
			IncludeExpiresIn:    cfg.IncludeExpiresIn,
			IncludeRefreshToken: cfg.IncludeRefreshToken,
		},
		JWTAlgorithm: cfg.JWTAlgorithm,
		JWTSecret:    cfg.JWTSecret,
		Server: inboundhttp.Options{
			TokenEnabled:    cfg.TokenEnable,
			TokenMethod:     cfg.TokenMethod,
			TokenRoute:      cfg.TokenRoute,
			FallbackMethods: cfg.FallbackMethods,
			CORSOrigins:     cfg.CORSOrigins,
		},
		RateLimiterTTL: cfg.RateLimiterTTL,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire infrastructure: %w", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      container.Server(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		container:  container,
		httpServer: httpServer,
	}, nil
}

// mockDefinitions returns the env-declared mocks followed by those of MOCKS_FILE,
// numbering the file entries after the env ones.
func mockDefinitions(cfg Config) ([]mock.Definition, error) {
	defs := append([]mock.Definition(nil), cfg.Mocks...)
	if cfg.MocksFile == "" {
		return defs, nil
	}

	fileDefs, err := filesystem.NewYAMLSource(cfg.MocksFile).Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load mocks file: %w", err)
	}

	next := 1
	for _, d := range defs {
		if d.Ordinal >= next {
			next = d.Ordinal + 1
		}
	}
	for _, d := range fileDefs {
		d.Ordinal = next
		next++
		defs = append(defs, d)
	}
	return defs, nil
}

// Handler returns the HTTP handler, for use in tests.
func (a *App) Handler() http.Handler {
	return a.container.Server()
}

// Run serves HTTP, watches response files, and handles graceful shutdown on
// SIGINT/SIGTERM or context cancellation.
func (a *App) Run(ctx context.Context) error {
	defer a.container.Close()

	logger := a.container.Logger()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.WatchMocks {
		if watcher := a.setupWatcher(); watcher != nil {
			defer watcher.Stop()
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server is running", "addr", a.httpServer.Addr, "mocks", len(a.container.Mocks()), "mocks_dir", a.container.MocksDir())
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped", "requests_logged", a.container.RequestLog().Count())
	return nil
}

func (a *App) setupWatcher() *filesystem.Watcher {
	logger := a.container.Logger()

	files := a.container.ResponseFiles()
	if len(files) == 0 {
		return nil
	}
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}

	watcher, err := filesystem.NewWatcher(a.container.MocksDir(), paths, a.cfg.WatcherDebounce, logger, a.container.ReportFileChanges)
	if err != nil {
		logger.Warn("file watcher not available", "error", err)
		return nil
	}

	watcher.Start()
	logger.Info("file watcher started", "dir", a.container.MocksDir(), "files", len(paths))
	return watcher
}
