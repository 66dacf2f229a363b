// Package server exposes the chat, provider, session, and export
// operations over HTTP. It is the service rendition of the original chat
// page: one synchronous request per user turn, streaming delegated to the
// selected provider's own mechanism.
package server

import (
	"fmt"
	"net/http/pprof"
	"sync"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/provider"
	"github.com/SAMRAT47/genchat/pkg/session"
)

// Server wires the provider registry and the session store behind the
// HTTP surface.
type Server struct {
	logger *zap.Logger
	store  session.Store
	app    *fiber.App

	// mu guards cfg and registry, which are swapped on config reload.
	mu       sync.RWMutex
	cfg      config.Config
	registry *provider.Registry
}

// New creates a Server. With a configured db path sessions persist in
// SQLite; otherwise they live in memory for the lifetime of the process.
func New(cfg config.Config, logger *zap.Logger, debug bool) (*Server, error) {
	var store session.Store
	if cfg.Server.DBPath != "" {
		var err error
		store, err = session.NewSQLiteStore(cfg.Server.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		logger.Info("using SQLite session storage", zap.String("path", cfg.Server.DBPath))
	} else {
		store = session.NewMemoryStore()
		logger.Info("using in-memory session storage")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	s := &Server{
		logger:   logger,
		store:    store,
		app:      app,
		cfg:      cfg,
		registry: provider.NewRegistry(cfg),
	}

	// Chat
	app.Post("/api/chat", s.handleChat)

	// Providers
	app.Get("/api/providers", s.handleListProviders)

	// Sessions
	app.Post("/api/sessions", s.handleCreateSession)
	app.Get("/api/sessions", s.handleListSessions)
	app.Get("/api/sessions/:id", s.handleGetSession)
	app.Delete("/api/sessions/:id", s.handleDeleteSession)
	app.Delete("/api/sessions/:id/messages", s.handleClearSession)
	app.Get("/api/sessions/:id/export", s.handleExportSession)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	if debug {
		app.Get("/debug/pprof/", adaptor.HTTPHandlerFunc(pprof.Index))
		app.Get("/debug/pprof/profile", adaptor.HTTPHandlerFunc(pprof.Profile))
	}

	return s, nil
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.mu.RLock()
	listen := s.cfg.Server.Listen
	s.mu.RUnlock()

	s.logger.Info("starting chat server", zap.String("listen", listen))
	return s.app.Listen(listen)
}

// Reload swaps in a freshly loaded configuration. The provider registry
// is rebuilt so key and model changes apply to subsequent requests;
// listen address and db path changes require a restart.
func (s *Server) Reload(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.registry = provider.NewRegistry(cfg)
	s.logger.Info("provider registry rebuilt from reloaded config")
}

// Close shuts down the server and releases resources.
func (s *Server) Close() error {
	if err := s.app.Shutdown(); err != nil {
		s.logger.Warn("server shutdown", zap.Error(err))
	}
	return s.store.Close()
}

func (s *Server) current() (config.Config, *provider.Registry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.registry
}
