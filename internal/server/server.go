// Package server exposes the ingestion pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/pipeline"
	"github.com/hyperjump/cvingest/pkg/utils"
)

// Server is the upload API in front of the pipeline.
type Server struct {
	pipe     *pipeline.Pipeline
	maxBytes int64
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server for p using the server and ingestion settings in cfg.
func NewServer(p *pipeline.Pipeline, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		pipe:     p,
		maxBytes: int64(cfg.Ingestion.MaxFileSizeMB) << 20,
		logger:   utils.OrNop(logger),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the HTTP handler with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resumes", s.handleUpload)
		r.Get("/cache", s.handleCacheInfo)
		r.Delete("/cache", s.handleCacheClear)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops. A server shut down
// through Stop returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
