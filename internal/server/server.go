package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/cache"
	"github.com/djstrauss/dingertuesday/internal/clock"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
	"github.com/djstrauss/dingertuesday/internal/modules/matchup"
	"github.com/djstrauss/dingertuesday/internal/modules/report"
	"github.com/djstrauss/dingertuesday/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Port      int
	DevMode   bool
	Log       zerolog.Logger
	Clock     *clock.Clock
	Cache     *cache.Cache
	Resolver  *daily.Resolver
	Store     *daily.Store
	Matchups  *matchup.Service
	Content   *report.ContentRepository
	Scheduler *scheduler.Scheduler
	// RetentionDays drives the admin purge cutoff.
	RetentionDays int
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	clk           *clock.Clock
	cache         *cache.Cache
	resolver      *daily.Resolver
	store         *daily.Store
	matchups      *matchup.Service
	content       *report.ContentRepository
	sched         *scheduler.Scheduler
	retentionDays int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           cfg.Log.With().Str("component", "server").Logger(),
		clk:           cfg.Clock,
		cache:         cfg.Cache,
		resolver:      cfg.Resolver,
		store:         cfg.Store,
		matchups:      cfg.Matchups,
		content:       cfg.Content,
		sched:         cfg.Scheduler,
		retentionDays: cfg.RetentionDays,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// Live fallbacks walk a full provider round-trip, so the request
	// timeout is generous relative to the 10s fetch timeout.
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/pitchers", s.handleDaily(daily.ClassPitchers))
		r.Get("/hitters", s.handleDaily(daily.ClassHitters))
		r.Get("/schedule", s.handleDaily(daily.ClassSchedule))
		r.Get("/matchup_hitters/{teamID}", s.handleMatchupHitters)

		r.Get("/articles", s.handleListArticles)
		r.Get("/articles/{slug}", s.handleGetArticle)

		r.Get("/daily_status", s.handleDailyStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/refresh", s.handleTriggerRefresh)
			r.Post("/jobs/{name}/trigger", s.handleTriggerJob)
			r.Post("/clear_cache", s.handleClearCache)
			r.Post("/purge", s.handlePurge)
			r.Get("/scheduler", s.handleSchedulerStatus)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the mux, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs each request with timing
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("Request")
	})
}
