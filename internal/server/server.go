// Package server provides the HTTP API for kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperdoc/kotae/internal/chat"
	"github.com/hyperdoc/kotae/internal/config"
	"github.com/hyperdoc/kotae/internal/embedding"
	"github.com/hyperdoc/kotae/internal/extract"
	"github.com/hyperdoc/kotae/internal/store"
	"go.uber.org/zap"
)

// Server is the HTTP server for the kotae API.
type Server struct {
	store     *store.Store
	extractor *extract.Extractor
	assembler *chat.Assembler
	embedder  embedding.Embedder
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	st *store.Store,
	extractor *extract.Extractor,
	assembler *chat.Assembler,
	embedder embedding.Embedder,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		store:     st,
		extractor: extractor,
		assembler: assembler,
		embedder:  embedder,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/pdf/upload", s.handleUpload)
	r.Get("/api/pdf/{documentId}", s.handleGetMetadata)
	r.Delete("/api/pdf/{documentId}", s.handleDeleteDocument)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/chat/suggestions/{documentId}", s.handleSuggestions)
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
