// Package server sets up the HTTP server, router, and all route definitions.
//
// It is the composition root: New opens the database, builds the GitHub
// client, the optional lookup cache, the explorer service and the handlers,
// and wires them to routes. main only reads configuration and calls Start.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/repo-explorer/internal/config"
	"github.com/sakif/repo-explorer/internal/explorer"
	"github.com/sakif/repo-explorer/internal/github"
	"github.com/sakif/repo-explorer/internal/handler"
	"github.com/sakif/repo-explorer/internal/middleware"
	sqliteRepo "github.com/sakif/repo-explorer/internal/repository/sqlite"
	"github.com/sakif/repo-explorer/internal/service"
	"github.com/sakif/repo-explorer/web"
)

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server for cfg.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	gh, err := github.New(github.Config{
		BaseURL: cfg.GitHubAPIURL,
		Token:   cfg.GitHubToken,
		Timeout: cfg.GitHubTimeout,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}

	var lister explorer.Lister = gh
	if cfg.CacheTTL > 0 {
		lister = service.NewCachedLister(gh, db, cfg.CacheTTL, logger)
		logger.Info("lookup cache enabled", slog.Duration("ttl", cfg.CacheTTL))
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	svc := service.NewExplorerService(lister, db, logger)
	if err := s.setupRoutes(svc, web.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
// GET    /                              → explorer page (HTML)
// POST   /search                        → submit search, redirect to /
// POST   /sort                          → change sort order, redirect to /
// POST   /page                          → change page, redirect to /
// POST   /reset                         → forget the session, redirect to /
// GET    /static/*                      → CSS
// GET    /api/session                   → session snapshot (JSON)
// POST   /api/session/search|sort|page  → session operations (JSON)
// GET    /api/users/{username}/repos    → stateless lookup (JSON)
// GET    /healthz                       → liveness
func (s *Server) setupRoutes(svc handler.ExplorerService, files fs.FS) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Session(s.config.SecureCookies))
	s.router.Use(middleware.Logger(s.logger))

	static, err := fs.Sub(files, "static")
	if err != nil {
		return fmt.Errorf("locating static files: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	s.router.Get("/healthz", handler.HandleHealth)

	pages, err := handler.NewExplorerHandler(files, svc, s.logger)
	if err != nil {
		return fmt.Errorf("creating explorer handler: %w", err)
	}
	api := handler.NewAPIHandler(svc, s.logger)

	s.router.Get("/", pages.HandlePage)
	s.router.Post("/search", pages.HandleSearch)
	s.router.Post("/sort", pages.HandleSort)
	s.router.Post("/page", pages.HandlePageChange)
	s.router.Post("/reset", pages.HandleReset)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/session", api.HandleSession)
		r.Post("/session/search", api.HandleSearch)
		r.Post("/session/sort", api.HandleSort)
		r.Post("/session/page", api.HandlePage)
		r.Get("/users/{username}/repos", api.HandleLookup)
	})

	return nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30 seconds,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Two sequential upstream calls fit inside the write timeout.
		WriteTimeout: 2*s.config.GitHubTimeout + 15*time.Second,
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
			slog.String("githubAPI", s.config.GitHubAPIURL),
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
