package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"devwise/internal/adapters/config"
	"devwise/internal/adapters/docstore"
	"devwise/internal/api/health"
	"devwise/internal/domain/lineitem"
	"devwise/internal/domain/project"
	"devwise/internal/domain/proposal"
	"devwise/internal/metrics"
	budgetsvc "devwise/internal/services/budget"
	cachesvc "devwise/internal/services/cache"
	chatsvc "devwise/internal/services/chat"
	extractionsvc "devwise/internal/services/extraction"
	"devwise/internal/services/ratelimit"
	ratingsvc "devwise/internal/services/rating"
	researchsvc "devwise/internal/services/research"
	usagesvc "devwise/internal/services/usage"
	"devwise/pkg/logger"
)

// Deps collects everything the HTTP surface needs
type Deps struct {
	Identity Identity
	Health   *health.Handler

	Research   *researchsvc.Service
	Extraction *extractionsvc.Service
	Chat       *chatsvc.Service
	Ratings    *ratingsvc.Service
	Budget     *budgetsvc.Service
	Cache      *cachesvc.Service
	Usage      *usagesvc.Service

	LineItems lineitem.Repository
	Proposals proposal.Repository
	Projects  project.Repository
	Documents docstore.Store
	Limiter   ratelimit.Limiter
}

// Server is the HTTP API server
type Server struct {
	httpServer *http.Server
	log        *logger.Logger

	serviceName string
	version     string

	identity Identity
	healthH  *health.Handler

	research   *researchsvc.Service
	extraction *extractionsvc.Service
	chat       *chatsvc.Service
	ratings    *ratingsvc.Service
	budget     *budgetsvc.Service
	cache      *cachesvc.Service
	usage      *usagesvc.Service

	lineItems lineitem.Repository
	proposals proposal.Repository
	projects  project.Repository
	documents docstore.Store
	limiter   ratelimit.Limiter

	rateLimits     config.RateLimitConfig
	maxUploadBytes int64
}

// NewServer creates the HTTP API server
func NewServer(cfg *config.Config, deps Deps, log *logger.Logger) *Server {
	s := &Server{
		log:            log,
		serviceName:    cfg.App.Name,
		version:        cfg.App.Version,
		identity:       deps.Identity,
		healthH:        deps.Health,
		research:       deps.Research,
		extraction:     deps.Extraction,
		chat:           deps.Chat,
		ratings:        deps.Ratings,
		budget:         deps.Budget,
		cache:          deps.Cache,
		usage:          deps.Usage,
		lineItems:      deps.LineItems,
		proposals:      deps.Proposals,
		projects:       deps.Projects,
		documents:      deps.Documents,
		limiter:        deps.Limiter,
		rateLimits:     cfg.RateLimit,
		maxUploadBytes: cfg.Storage.MaxUploadBytes,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthH.HandleHealth)
	mux.HandleFunc("GET /ready", s.healthH.HandleReadiness)
	mux.HandleFunc("GET /live", s.healthH.HandleLiveness)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/line-items/{id}/research", s.handleResearch)
	mux.HandleFunc("POST /api/line-items/{id}/rate", s.handleRate)
	mux.HandleFunc("GET /api/line-items/{id}/rate", s.handleListRatings)
	mux.HandleFunc("PATCH /api/line-items/{id}", s.handleUpdateLineItem)

	mux.HandleFunc("POST /api/proposals/upload", s.handleUpload)
	mux.HandleFunc("POST /api/proposals/{id}/extract", s.handleExtract)

	mux.HandleFunc("GET /api/budget", s.handleBudget)
	mux.HandleFunc("PATCH /api/budget", s.handleUpdateBudget)

	mux.HandleFunc("POST /api/chat", s.handleChat)

	mux.HandleFunc("GET /{$}", s.handleRoot)

	return mux
}

// handleRoot returns basic service info
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service": s.serviceName,
		"version": s.version,
		"status":  "running",
	})
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Infow("Starting HTTP server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
