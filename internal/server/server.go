// Package server exposes the Flytz operations as a local JSON API for a
// browser front end.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"flytz/internal/advisor"
	"flytz/internal/config"
	"flytz/internal/flights"
	"flytz/internal/logging"
	"flytz/internal/store"
	"flytz/internal/strategy"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Services are the remote-backed dependencies rebuilt whenever credentials or
// the config file change.
type Services struct {
	Flights *flights.Client
	Advisor *advisor.Advisor
}

// ServiceBuilder constructs Services from a config.
type ServiceBuilder func(ctx context.Context, cfg *config.Config) Services

// DefaultServices builds the Amadeus client and the Gemini advisor.
func DefaultServices(ctx context.Context, cfg *config.Config) Services {
	return Services{
		Flights: flights.NewClient(cfg.Amadeus),
		Advisor: advisor.FromConfig(ctx, cfg),
	}
}

// Server serves the JSON API.
type Server struct {
	mu       sync.RWMutex
	base     config.Config
	cfg      *config.Config
	services Services
	reloads  int

	store    *store.Store
	engine   *strategy.Engine
	build    ServiceBuilder
	logger   *zap.Logger
	visitors *visitorLimiter
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithServiceBuilder replaces DefaultServices, mainly for tests.
func WithServiceBuilder(b ServiceBuilder) Option {
	return func(s *Server) { s.build = b }
}

// WithEngine replaces the strategy engine.
func WithEngine(e *strategy.Engine) Option {
	return func(s *Server) { s.engine = e }
}

// WithVisitorRate sets the per-client request rate.
func WithVisitorRate(r rate.Limit, burst int) Option {
	return func(s *Server) { s.visitors = newVisitorLimiter(r, burst) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server. Stored settings fill in missing credentials before the
// services are built.
func New(ctx context.Context, cfg *config.Config, st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:    st,
		engine:   strategy.NewEngine(),
		build:    DefaultServices,
		logger:   zap.NewNop(),
		visitors: newVisitorLimiter(20, 40),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base = *cfg
	s.cfg, s.services = s.prepare(ctx, s.base)
	return s
}

// prepare applies stored settings to a copy of base so credentials removed
// from settings are not carried over.
func (s *Server) prepare(ctx context.Context, base config.Config) (*config.Config, Services) {
	cfg := base
	if settings, err := s.store.Settings(); err != nil {
		logging.Get(logging.CategoryServer).Warn("settings unavailable: %v", err)
	} else {
		cfg.ApplySettings(settings)
	}
	return &cfg, s.build(ctx, &cfg)
}

// Reload swaps in a new config and rebuilds the services. In-flight requests
// keep the services they started with.
func (s *Server) Reload(ctx context.Context, base *config.Config) {
	cfg, svc := s.prepare(ctx, *base)

	s.mu.Lock()
	s.base = *base
	s.cfg = cfg
	s.services = svc
	s.reloads++
	s.mu.Unlock()

	logging.Server("Reloaded services (amadeus=%v, llm=%v)", cfg.HasAmadeusCredentials(), cfg.HasLLMKey())
	s.logger.Info("services reloaded",
		zap.Bool("amadeus", cfg.HasAmadeusCredentials()),
		zap.Bool("llm", cfg.HasLLMKey()))
}

func (s *Server) reapplySettings(ctx context.Context) {
	s.mu.RLock()
	base := s.base
	s.mu.RUnlock()
	s.Reload(ctx, &base)
}

// Reloads returns how many times Reload ran.
func (s *Server) Reloads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reloads
}

func (s *Server) current() (*config.Config, Services) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.services
}

// Router registers every route.
func (s *Server) Router() *httprouter.Router {
	r := httprouter.New()
	r.GET("/health", s.handleHealth)

	r.POST("/api/strategy", s.limit(s.handleStrategy))
	r.POST("/api/deals", s.limit(s.handleDeals))
	r.POST("/api/deals/confirm", s.limit(s.handleConfirm))
	r.GET("/api/locations", s.limit(s.handleLocations))
	r.GET("/api/hotels/:city", s.limit(s.handleHotels))
	r.GET("/api/activities", s.limit(s.handleActivities))
	r.GET("/api/inspiration/:origin", s.limit(s.handleInspiration))

	r.POST("/api/analysis", s.limit(s.handleAnalysis))
	r.POST("/api/analysis/seats", s.limit(s.handleSeats))
	r.POST("/api/analysis/visa", s.limit(s.handleVisa))

	r.GET("/api/chat/:id", s.limit(s.handleChatHistory))
	r.POST("/api/chat/:id", s.limit(s.handleChat))
	r.DELETE("/api/chat/:id", s.limit(s.handleChatClear))

	r.GET("/api/saved", s.limit(s.handleListSaved))
	r.POST("/api/saved", s.limit(s.handleSave))
	r.GET("/api/saved/:id", s.limit(s.handleGetSaved))
	r.DELETE("/api/saved/:id", s.limit(s.handleDeleteSaved))
	r.GET("/api/saved/:id/deals/:deal/ics", s.limit(s.handleICS))

	r.GET("/api/alerts/:id", s.limit(s.handleGetAlert))
	r.PUT("/api/alerts/:id", s.limit(s.handleSetAlert))
	r.DELETE("/api/alerts/:id", s.limit(s.handleDeleteAlert))

	r.POST("/api/waitlist", s.limit(s.handleWaitlist))
	r.GET("/api/waitlist.csv", s.limit(s.handleWaitlistCSV))

	r.GET("/api/settings", s.limit(s.handleGetSettings))
	r.PUT("/api/settings", s.limit(s.handleSaveSettings))
	return r
}

// Handler wraps the router with CORS and request logging.
func (s *Server) Handler() http.Handler {
	cfg, _ := s.current()
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return s.logRequests(c.Handler(s.Router()))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg, _ := s.current()
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.GetReadTimeout(),
		WriteTimeout:      cfg.GetWriteTimeout(),
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		logging.Server("Listening on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", s.now().Sub(start)))
	})
}
