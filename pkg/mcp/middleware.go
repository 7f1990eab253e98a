package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/proplint/pkg/mcplog"
)

// loggingMiddleware records every tool call as one JSONL entry. Only
// installed when a logger is configured.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)
			_ = s.jsonl.Write(mcplog.Record(req.Params.Name, req.GetArguments(), start, result, err))
			return result, err
		}
	}
}
