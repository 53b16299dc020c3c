package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eurkai/prospecting/internal/aiclient"
	"github.com/eurkai/prospecting/internal/assets"
	"github.com/eurkai/prospecting/internal/deliverables"
	"github.com/eurkai/prospecting/internal/repository"
	"github.com/eurkai/prospecting/internal/runner"
	"github.com/eurkai/prospecting/internal/scheduler"
	"github.com/eurkai/prospecting/internal/scoring"
)

// Server is the HTTP front of the prospect pipeline.
type Server struct {
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// NewServer wires the pipeline services into an HTTP server. redisClient is
// optional; when present the landing page is cached.
func NewServer(
	store repository.Store,
	registry *aiclient.Registry,
	run *runner.Runner,
	scoringSvc *scoring.Service,
	assetSvc *assets.Service,
	deliverSvc *deliverables.Service,
	sched *scheduler.Scheduler,
	redisClient *redis.Client,
	adminToken string,
) *Server {
	handlers := NewHandlers(store, registry, run, scoringSvc, assetSvc, deliverSvc, sched, redisClient, adminToken)
	router := SetupRoutes(handlers)

	return &Server{
		handler:  router,
		handlers: handlers,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// AI sweeps triggered over HTTP can run for minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
