package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcdb/datamerge/pkg/api"
	"github.com/arcdb/datamerge/pkg/config"
	"github.com/arcdb/datamerge/pkg/dataset"
	"github.com/arcdb/datamerge/pkg/security"
	"github.com/arcdb/datamerge/server/httpapi"
	mcpserver "github.com/arcdb/datamerge/server/mcp"
)

func main() {
	cfg := config.LoadConfigOrDefault()
	logger := api.NewDefaultLogger(api.ParseLogLevel(cfg.Log.Level))
	logger.Info("loaded config: http_api=%s mcp=%s", cfg.HTTPAPI.Address(), cfg.MCP.Address())

	registry := dataset.NewRegistry(cfg.Registry.MaxDatasets, cfg.Registry.MaxRowsPerDataset)
	auditLogger := security.NewAuditLogger(10000)

	var httpServer *httpapi.Server
	if cfg.HTTPAPI.Enabled {
		httpServer = httpapi.NewServer(registry, &cfg.HTTPAPI, auditLogger, logger)
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error("HTTP API server exited: %v", err)
			}
		}()
	}

	if cfg.MCP.Enabled {
		mcpSrv := mcpserver.NewServer(registry, &cfg.MCP, &cfg.Merge, auditLogger, logger)
		go func() {
			if err := mcpSrv.Start(); err != nil {
				logger.Error("MCP server exited: %v", err)
			}
		}()
	}

	if !cfg.HTTPAPI.Enabled && !cfg.MCP.Enabled {
		logger.Error("both HTTP API and MCP are disabled; nothing to serve")
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn("HTTP API shutdown: %v", err)
		}
	}
}
