package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
	"github.com/fabiorvs/fake-requests/internal/domain/reqlog"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/ports"
	"github.com/fabiorvs/fake-requests/internal/infrastructure/usecases"
)

// Options controls which rules the server dispatches to.
type Options struct {
	TokenEnabled bool
	TokenMethod  string
	TokenRoute   string
	// FallbackMethods restricts the catch-all rule. Empty or "*" accepts every method.
	FallbackMethods []string
	CORSOrigins     []string
}

// Server is the HTTP front of the mock server.
type Server struct {
	router     *chi.Mux
	opts       Options
	log        *reqlog.Log
	tokenUC    *usecases.IssueTokenUseCase
	replayUC   *usecases.ReplayMockUseCase
	fallbackUC *usecases.CaptureFallbackUseCase
	logger     ports.Logger
}

// NewServer creates a Server dispatching to mocks. The route table is fixed for
// the life of the server.
func NewServer(
	opts Options,
	log *reqlog.Log,
	tokenUC *usecases.IssueTokenUseCase,
	replayUC *usecases.ReplayMockUseCase,
	fallbackUC *usecases.CaptureFallbackUseCase,
	logger ports.Logger,
	mocks []*usecases.CompiledMock,
) *Server {
	s := &Server{
		opts:       opts,
		log:        log,
		tokenUC:    tokenUC,
		replayUC:   replayUC,
		fallbackUC: fallbackUC,
		logger:     logger,
	}
	s.router = s.BuildRouter(mocks)
	logger.Info("router built", "mocks", len(mocks))
	return s
}

// BuildRouter creates a router serving the inspection API and dashboard, and
// dispatching everything else over the ordered rules: token, mocks, fallback.
func (s *Server) BuildRouter(mocks []*usecases.CompiledMock) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins(),
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/requests", s.handleListRequests)
	r.Delete("/requests", s.handleClearRequests)
	r.Get("/requests/{requestID}", s.handleGetRequest)
	r.Get("/health", s.handleHealth)

	serveDashboard := s.dashboardHandler()
	r.Get("/__ui", serveDashboard)
	r.Get("/__ui/*", serveDashboard)

	dispatch := s.dispatch(s.buildRules(mocks))
	r.NotFound(dispatch)
	r.MethodNotAllowed(dispatch)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRules(mocks []*usecases.CompiledMock) []*rule {
	var rules []*rule

	if s.opts.TokenEnabled && s.tokenUC != nil {
		method := strings.ToUpper(s.opts.TokenMethod)
		rl, err := newRule("token", []string{method}, mock.ConvertPattern(s.opts.TokenRoute), s.tokenHandler)
		if err != nil {
			s.logger.Error("token route disabled", "route", s.opts.TokenRoute, "error", err)
		} else {
			rules = append(rules, rl)
			s.logger.Info("token route enabled", "rule", rl.describe())
		}
	}

	for _, cm := range mocks {
		var methods []string
		if cm.Def.Method != mock.AnyMethod {
			methods = []string{cm.Def.Method}
		}
		rl, err := newRule(cm.Def.Label(), methods, cm.Def.Pattern(), s.mockHandler(cm))
		if err != nil {
			s.logger.Warn("skipping mock", "mock", cm.Def.Ordinal, "error", err)
			continue
		}
		rules = append(rules, rl)
	}

	rl, err := newRule("fallback", s.fallbackMethods(), "/*", s.fallbackHandler)
	if err != nil {
		s.logger.Error("fallback route disabled", "error", err)
		return rules
	}
	return append(rules, rl)
}

func (s *Server) fallbackMethods() []string {
	var methods []string
	for _, m := range s.opts.FallbackMethods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if m == mock.AnyMethod {
			return nil
		}
		methods = append(methods, m)
	}
	return methods
}

func (s *Server) corsOrigins() []string {
	if len(s.opts.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return s.opts.CORSOrigins
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	req := s.captureRequest(r)
	s.writeReply(w, s.tokenUC.Execute(req))
}

func (s *Server) mockHandler(cm *usecases.CompiledMock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := s.captureRequest(r)
		s.writeReply(w, s.replayUC.Execute(r.Context(), cm, req))
	}
}

func (s *Server) fallbackHandler(w http.ResponseWriter, r *http.Request) {
	req := s.captureRequest(r)
	s.writeReply(w, s.fallbackUC.Execute(req))
}

// writeReply sends a use case reply. []byte bodies are written verbatim,
// anything else as compact JSON. Content-Type is applied after the other headers.
func (s *Server) writeReply(w http.ResponseWriter, reply usecases.Reply) {
	contentType := ""
	for k, v := range reply.Headers {
		if http.CanonicalHeaderKey(k) == "Content-Type" {
			contentType = v
			continue
		}
		w.Header().Set(k, v)
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(reply.Status)

	var err error
	switch body := reply.Body.(type) {
	case nil:
	case []byte:
		_, err = w.Write(body)
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		err = enc.Encode(body)
	}
	if err != nil {
		s.logger.Debug("failed to write response body", "error", err)
	}

	rec := reply.Record
	s.logger.Info("request handled",
		"id", rec.ID, "type", rec.RouteType, "method", rec.Method, "path", rec.Path, "status", reply.Status)
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
