package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/arcdb/datamerge/pkg/api"
	"github.com/arcdb/datamerge/pkg/config"
	"github.com/arcdb/datamerge/pkg/dataset"
	"github.com/arcdb/datamerge/pkg/security"
)

// Server is the HTTP REST API server.
type Server struct {
	registry    *dataset.Registry
	cfg         *config.HTTPAPIConfig
	auditLogger *security.AuditLogger
	logger      api.Logger
	httpServer  *http.Server
}

// NewServer creates a new HTTP API server.
func NewServer(registry *dataset.Registry, cfg *config.HTTPAPIConfig, auditLogger *security.AuditLogger, logger api.Logger) *Server {
	if logger == nil {
		logger = api.NewNoOpLogger()
	}
	return &Server{
		registry:    registry,
		cfg:         cfg,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Handler builds the routed and middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	clientStore := NewClientStore(s.cfg.Clients)
	mergeHandler := NewMergeHandler(s.registry, s.auditLogger)
	datasetsHandler := NewDatasetsHandler(s.registry, s.auditLogger)

	mux := http.NewServeMux()

	// Health check (no auth required)
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: "1.0.0",
		})
	})

	auth := AuthMiddleware(clientStore)
	mux.Handle("/api/v1/merge", auth(mergeHandler))
	mux.Handle("/api/v1/datasets", auth(datasetsHandler))

	// Recovery → CORS → Logging
	return RecoveryMiddleware(s.logger)(CORSMiddleware(LoggingMiddleware(s.logger)(mux)))
}

// Start starts the HTTP API server (blocking).
func (s *Server) Start() error {
	addr := s.cfg.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting HTTP API server on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
