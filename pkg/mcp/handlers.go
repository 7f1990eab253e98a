package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/proplint/pkg/lint"
	"github.com/gnana997/proplint/pkg/workspace"
)

// lintFilesResponse is the wire shape of a lint_files result.
type lintFilesResponse struct {
	FilesDiscovered int               `json:"filesDiscovered"`
	FilesLinted     int               `json:"filesLinted"`
	FilesFailed     int               `json:"filesFailed"`
	CacheHits       int               `json:"cacheHits"`
	Diagnostics     []lint.Diagnostic `json:"diagnostics"`
	Errors          []string          `json:"errors,omitempty"`
}

func (s *Server) handleLintSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	source, _ := args["source"].(string)
	if source == "" {
		return mcp.NewToolResultError("source is required"), nil
	}
	filename, _ := args["filename"].(string)
	if filename == "" {
		filename = "input.jsx"
	}

	res, err := s.runner.LintSource([]byte(source), filename)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleLintFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	var (
		report *workspace.Report
		err    error
	)
	if root, _ := args["root"].(string); root != "" {
		report, err = s.runner.Run(ctx, root, workspace.DefaultScanOptions(), nil)
	} else {
		paths := stringSlice(args["paths"])
		if len(paths) == 0 {
			return mcp.NewToolResultError("either root or paths is required"), nil
		}
		report, err = s.runner.RunFiles(ctx, paths, nil)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := lintFilesResponse{
		FilesDiscovered: report.Stats.FilesDiscovered,
		FilesLinted:     report.Stats.FilesLinted,
		FilesFailed:     report.Stats.FilesFailed,
		CacheHits:       report.Stats.CacheHits,
		Diagnostics:     []lint.Diagnostic{},
	}
	for _, res := range report.Results {
		resp.Diagnostics = append(resp.Diagnostics, res.Diagnostics...)
	}
	for _, fe := range report.Stats.Errors {
		resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", fe.FilePath, fe.Err))
	}
	return jsonResult(resp)
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	root, _ := args["root"].(string)
	if root == "" {
		return mcp.NewToolResultError("root is required"), nil
	}

	report, err := s.runner.Run(ctx, root, workspace.DefaultScanOptions(), nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	components := []lint.ComponentInfo{}
	for _, res := range report.Results {
		components = append(components, res.Components...)
	}
	return jsonResult(components)
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// stringSlice coerces a JSON array argument into []string, dropping
// non-string elements.
func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, el := range raw {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
