// Package server provides the HTTP server and routing for Aura.
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

	"github.com/shubhams167/aura/internal/auth"
	"github.com/shubhams167/aura/internal/di"
	brokerhandlers "github.com/shubhams167/aura/internal/modules/brokers/handlers"
	profilehandlers "github.com/shubhams167/aura/internal/modules/profiles/handlers"
)

// brokerCallsPerRequest is the longest chain of sequential broker calls one
// request makes (token, holdings, LTP)
const brokerCallsPerRequest = 3

// timeoutMargin separates the request deadline from the write deadline
const timeoutMargin = 5 * time.Second

// defaultBrokerTimeout applies when Config.BrokerTimeout is unset
const defaultBrokerTimeout = 15 * time.Second

// Config holds server configuration
type Config struct {
	Log              zerolog.Logger
	Port             int
	DevMode          bool
	CORSOrigins      []string
	AuthHeaderPrefix string
	BrokerTimeout    time.Duration // Per-call broker deadline; sizes the request and write timeouts
	Container        *di.Container // DI container with all services
}

// requestTimeouts sizes the handler deadline and the connection write deadline.
// The handler deadline covers a full chain of broker calls and expires before
// the write deadline, so a failure is still written as a JSON body.
func requestTimeouts(brokerTimeout time.Duration) (request, write time.Duration) {
	if brokerTimeout <= 0 {
		brokerTimeout = defaultBrokerTimeout
	}
	request = brokerCallsPerRequest*brokerTimeout + timeoutMargin
	write = request + timeoutMargin
	return request, write
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	requestTimeout time.Duration
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	requestTimeout, writeTimeout := requestTimeouts(cfg.BrokerTimeout)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		requestTimeout: requestTimeout,
		container:      cfg.Container,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Container),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(cfg Config) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(s.requestTimeout))

	// CORS
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Identity asserted by the upstream auth proxy
	s.router.Use(auth.HeaderMiddleware(cfg.AuthHeaderPrefix))

	// Compress responses
	if !cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	if s.container.Metrics != nil {
		s.router.Handle("/metrics", s.container.Metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

		profilehandlers.NewHandler(s.container.ProfileService, s.log).RegisterRoutes(r)
		brokerhandlers.NewHandler(s.container.BrokerService, s.log).RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
