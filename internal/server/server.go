// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and
// routes, and it decides how the server starts and stops.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New() creates:
//	  sqlite.DB → services (user, item, request, booking, comment) → handlers
//	  prometheus.Registry → metrics.Collector → booking events + HTTP middleware
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sakif/shareit/internal/auth"
	"github.com/sakif/shareit/internal/clock"
	"github.com/sakif/shareit/internal/config"
	"github.com/sakif/shareit/internal/handler"
	"github.com/sakif/shareit/internal/metrics"
	"github.com/sakif/shareit/internal/middleware"
	sqliteRepo "github.com/sakif/shareit/internal/repository/sqlite"
	"github.com/sakif/shareit/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and the rate limiter's cleanup
// goroutine. Both are released by Close, which Start calls on its way out.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	clock    clock.Clock
	db       *sqliteRepo.DB
	registry *prometheus.Registry
	limiter  *middleware.RateLimiter
}

// Option customises a Server before its routes are built.
type Option func(*Server)

// WithClock replaces the wall clock, for tests that need fixed instants.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// New opens the database, builds every service and handler, and mounts the routes.
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with the
// sqlite driver package.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		clock:    clock.Real{},
		db:       db,
		registry: registry,
		limiter: middleware.NewRateLimiter(
			middleware.PerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst), logger),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns an xid to each request (or keeps the caller's)
//  2. RealIP: extracts the client IP from proxy headers
//  3. Logger: logs each request with timing info and the request id
//  4. Metrics: status and latency per request
//  5. Recoverer: turns panics into 500 instead of crashing
//  6. Identify: reads X-Sharer-User-Id into the context
//  7. RateLimiter: one bucket per caller, or per IP for anonymous requests
func (s *Server) setupRoutes() {
	collector := metrics.NewCollector(s.registry)

	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(collector))
	s.router.Use(chimiddleware.Recoverer)

	// === Operational routes ===
	// Not rate limited, so probes and scrapes keep working under load.
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler(s.registry))

	// === API routes ===
	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) → implements repository.Store
	//   services receive repository interfaces
	//   handlers receive the services through their own narrow interfaces
	bookingService := service.NewBookingService(s.db, s.clock, s.logger).WithRecorder(collector)
	userHandler := handler.NewUserHandler(service.NewUserService(s.db, s.logger), s.logger)
	itemHandler := handler.NewItemHandler(
		service.NewItemService(s.db, bookingService, s.logger),
		service.NewCommentService(s.db, s.clock, s.logger),
		s.logger,
	)
	bookingHandler := handler.NewBookingHandler(bookingService, s.clock, s.logger)
	requestHandler := handler.NewItemRequestHandler(service.NewItemRequestService(s.db, s.clock, s.logger), s.logger)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.Identify)
		r.Use(s.limiter.Middleware)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.HandleCreate)
			r.Get("/", userHandler.HandleList)
			r.Get("/{userId}", userHandler.HandleGet)
			r.Patch("/{userId}", userHandler.HandleUpdate)
			r.Delete("/{userId}", userHandler.HandleDelete)
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", itemHandler.HandleCreate)
			r.Get("/", itemHandler.HandleListMine)
			r.Get("/search", itemHandler.HandleSearch)
			r.Get("/{itemId}", itemHandler.HandleGet)
			r.Patch("/{itemId}", itemHandler.HandleUpdate)
			r.Delete("/{itemId}", itemHandler.HandleDelete)
			r.Post("/{itemId}/comment", itemHandler.HandleComment)
			r.Get("/{itemId}/bookings.ics", bookingHandler.HandleItemCalendar)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingHandler.HandleCreate)
			r.Get("/", bookingHandler.HandleListByBooker)
			r.Get("/owner", bookingHandler.HandleListByOwner)
			r.Get("/{bookingId}", bookingHandler.HandleGet)
			r.Patch("/{bookingId}", bookingHandler.HandleDecide)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requestHandler.HandleCreate)
			r.Get("/", requestHandler.HandleListMine)
			r.Get("/all", requestHandler.HandleListOthers)
			r.Get("/{requestId}", requestHandler.HandleGet)
		})
	})
}

// handleHealth reports 200 while the database answers a ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

// Close stops the rate limiter and closes the database.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (SHUTDOWN_TIMEOUT)
//  3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
