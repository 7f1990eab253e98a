// Package mcp exposes the linter over the Model Context Protocol so
// coding agents can lint buffers and workspaces without shelling out.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/proplint/pkg/mcplog"
	"github.com/gnana997/proplint/pkg/workspace"
)

const serverVersion = "0.1.0-dev"

// Server wraps an MCP server around a workspace runner.
type Server struct {
	mcpServer *server.MCPServer
	runner    *workspace.Runner
	jsonl     *mcplog.Logger // nil disables call logging
	logger    *slog.Logger
}

// NewServer builds the server and registers the lint tools. jsonl may be
// nil to disable tool-call logging.
func NewServer(runner *workspace.Runner, jsonl *mcplog.Logger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{runner: runner, jsonl: jsonl, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if jsonl != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("proplint", serverVersion, opts...)
	s.mcpServer.AddTools(
		server.ServerTool{Tool: lintSourceTool(), Handler: s.handleLintSource},
		server.ServerTool{Tool: lintFilesTool(), Handler: s.handleLintFiles},
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
	)
	return s
}

// ServeStdio runs the server over stdin/stdout until the client hangs up.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
