// Package http serves the signup wizard as server-rendered HTML pages plus a
// small JSON surface (state, live diffs, health, OpenAPI description).
package http

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/paddock"
	"github.com/aretw0/paddock/internal/logging"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/ports"
	"github.com/aretw0/paddock/pkg/session"
	"github.com/aretw0/paddock/pkg/steps"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var rawSpec []byte

//go:embed templates/*.html
var templateFS embed.FS

// Server handles every route of the wizard.
type Server struct {
	sessions *session.Manager
	source   ports.DriverSource
	guards   *steps.Guards
	guardTTL time.Duration
	Streams  *StreamManager

	hooks         domain.LifecycleHooks
	metrics       http.Handler
	secureCookies bool
	logger        *slog.Logger

	pages *template.Template
	spec  *openapi3.T
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request and diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithLifecycleHooks adds hooks run for every session's wizard.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithGuardTTL drops the fetch guard of a session idle for ttl.
// Set it to the store's session TTL so guards do not outlive their sessions.
func WithGuardTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.guardTTL = ttl
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// NewServer builds a Server. It fails when the embedded assets are invalid.
func NewServer(sessions *session.Manager, source ports.DriverSource, opts ...Option) (*Server, error) {
	s := &Server{
		sessions: sessions,
		source:   source,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.guards = steps.NewGuards(steps.WithGuardTTL(s.guardTTL))
	sessions.OnDelete(s.guards.Forget)
	s.Streams = NewStreamManager(s.logger)

	pages, err := template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.pages = pages

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi description: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi description: %w", err)
	}
	s.spec = spec
	return s, nil
}

// Guards reports how many sessions currently hold a fetch guard.
func (s *Server) Guards() int {
	return s.guards.Len()
}

// NewHandler is NewServer followed by Handler.
func NewHandler(sessions *session.Manager, source ports.DriverSource, opts ...Option) (http.Handler, error) {
	s, err := NewServer(sessions, source, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.page)
		r.Get("/{route}", s.page)
		r.Post("/basic-info", s.postBasicInfo)
		r.Post("/driver-selection", s.postDriverSelection)
		r.Post("/next", s.next)
		r.Post("/back", s.back)
		r.Post("/clear", s.clear)
		r.Post("/steps/{label}", s.jump)

		r.Get("/api/state", s.getState)
		r.Get("/api/events", s.subscribeEvents)
		r.Get("/api/ws", s.subscribeWebSocket)
	})

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", s.getSpec)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// wizard binds a Wizard to sess for the duration of one locked update.
// Fetch starts are broadcast right away so live clients see the pending phase.
func (s *Server) wizard(sess *domain.Session) *paddock.Wizard {
	stream := domain.LifecycleHooks{
		OnFetchStart: func(ctx context.Context, e *domain.FetchEvent) {
			loading := true
			s.broadcast(&domain.StateDiff{SessionID: sess.ID, Loading: &loading})
		},
	}
	return paddock.New(s.source,
		paddock.WithState(sess.Form),
		paddock.WithGuard(s.guards.For(sess.ID)),
		paddock.WithLogger(s.logger),
		paddock.WithLifecycleHooks(s.hooks.Chain(stream)),
	)
}

// update runs fn against the session's wizard under the session lock, stores
// the resulting form and broadcasts what changed.
func (s *Server) update(ctx context.Context, id string, fn func(context.Context, *domain.Session, *paddock.Wizard) error) (*domain.Session, error) {
	var before domain.FormState
	sess, err := s.sessions.Update(ctx, id, func(ctx context.Context, sess *domain.Session) error {
		before = sess.Form.Clone()
		w := s.wizard(sess)
		if err := fn(ctx, sess, w); err != nil {
			return err
		}
		sess.Form = w.State()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(domain.Diff(id, &before, &sess.Form))
	return sess, nil
}

func (s *Server) broadcast(diff *domain.StateDiff) {
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to encode diff", "session_id", diff.SessionID, "err", err)
		return
	}
	s.Streams.Broadcast(diff.SessionID, data)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, "err", err, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// getHealth reports ok, or degraded when the session store does not answer.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := map[string]string{"status": "ok"}
	if p, ok := s.sessions.Store().(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("store ping failed", "err", err)
			status = http.StatusServiceUnavailable
			resp["status"] = "degraded"
		}
	}
	writeJSON(w, status, resp)
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "paddock-http",
		"version":     strings.TrimSpace(paddock.Version),
		"api_version": apiVersion,
	})
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(rawSpec)
}
