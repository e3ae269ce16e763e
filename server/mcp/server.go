package mcp

import (
	"context"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/arcdb/datamerge/pkg/api"
	"github.com/arcdb/datamerge/pkg/config"
	"github.com/arcdb/datamerge/pkg/dataset"
	"github.com/arcdb/datamerge/pkg/security"
)

// Server is the MCP protocol server exposing the merge engine and the dataset
// registry as assistant-facing tools.
type Server struct {
	registry    *dataset.Registry
	cfg         *config.MCPConfig
	mergeCfg    *config.MergeConfig
	auditLogger *security.AuditLogger
	logger      api.Logger
}

// NewServer creates a new MCP server.
func NewServer(registry *dataset.Registry, cfg *config.MCPConfig, mergeCfg *config.MergeConfig, auditLogger *security.AuditLogger, logger api.Logger) *Server {
	if logger == nil {
		logger = api.NewNoOpLogger()
	}
	return &Server{
		registry:    registry,
		cfg:         cfg,
		mergeCfg:    mergeCfg,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Start starts the MCP server (blocking).
func (s *Server) Start() error {
	addr := s.cfg.Address()

	deps := &ToolDeps{
		Registry:    s.registry,
		MergeCfg:    s.mergeCfg,
		AuditLogger: s.auditLogger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"datamerge",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	mergeTool := mcp.NewTool("merge_datasets",
		mcp.WithDescription("Join two previously loaded datasets by key and return the combined table with match statistics. Supports inner, left, right and full joins; duplicate keys fan out into the full cross product."),
		mcp.WithString("left_id", mcp.Description("Registry ID of the left dataset"), mcp.Required()),
		mcp.WithString("right_id", mcp.Description("Registry ID of the right dataset"), mcp.Required()),
		mcp.WithString("left_key", mcp.Description("Join key column on the left dataset"), mcp.Required()),
		mcp.WithString("right_key", mcp.Description("Join key column on the right dataset"), mcp.Required()),
		mcp.WithString("merge_type", mcp.Description("Join type: inner, left, right or full (default inner)")),
		mcp.WithString("left_prefix", mcp.Description("Prefix for left-side output columns (default \"left\")")),
		mcp.WithString("right_prefix", mcp.Description("Prefix for right-side output columns (default \"right\")")),
		mcp.WithNumber("max_rows", mcp.Description("Maximum rows to render, 1-5000 (default 500). Statistics always cover the full merge.")),
		mcp.WithString("title", mcp.Description("Optional title for the result")),
	)

	loadTool := mcp.NewTool("load_dataset",
		mcp.WithDescription("Load a dataset from a CSV, JSON or XLSX file into the registry and return its ID."),
		mcp.WithString("path", mcp.Description("Path to the file"), mcp.Required()),
		mcp.WithString("format", mcp.Description("File format: csv, json or xlsx (inferred from the extension when omitted)")),
		mcp.WithString("label", mcp.Description("Optional label for the dataset")),
		mcp.WithString("sheet", mcp.Description("Worksheet name for xlsx files (default: first sheet)")),
	)

	listTool := mcp.NewTool("list_datasets",
		mcp.WithDescription("List the datasets currently held in the registry."),
	)

	previewTool := mcp.NewTool("preview_dataset",
		mcp.WithDescription("Show the first rows of a registered dataset."),
		mcp.WithString("id", mcp.Description("Registry ID of the dataset"), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Number of rows to show (default 10)")),
	)

	mcpSrv.AddTool(mergeTool, deps.HandleMergeDatasets)
	mcpSrv.AddTool(loadTool, deps.HandleLoadDataset)
	mcpSrv.AddTool(listTool, deps.HandleListDatasets)
	mcpSrv.AddTool(previewTool, deps.HandlePreviewDataset)

	httpServer := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
		mcpserver.WithHTTPContextFunc(s.authContextFunc()),
	)

	s.logger.Info("starting MCP server on %s", addr)
	return httpServer.Start(addr)
}

// authContextFunc returns an HTTP context function that resolves Bearer token
// auth against the configured clients.
func (s *Server) authContextFunc() mcpserver.HTTPContextFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return ctx
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return ctx
		}
		apiKey := parts[1]

		for _, c := range s.cfg.Clients {
			if c.APIKey == apiKey && c.Enabled {
				clientCopy := c
				return context.WithValue(ctx, ctxKeyMCPClient, &clientCopy)
			}
		}
		return ctx
	}
}
