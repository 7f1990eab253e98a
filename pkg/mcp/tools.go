package mcp

import "github.com/mark3labs/mcp-go/mcp"

func lintSourceTool() mcp.Tool {
	return mcp.NewTool("lint_source",
		mcp.WithDescription("Lint a source buffer for props used but missing from the component's prop validation."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("JavaScript/TypeScript source text"),
		),
		mcp.WithString("filename",
			mcp.Description("File name used for grammar selection (.js/.jsx/.ts/.tsx); defaults to input.jsx"),
		),
	)
}

func lintFilesTool() mcp.Tool {
	return mcp.NewTool("lint_files",
		mcp.WithDescription("Lint files on disk: a workspace root to scan, or an explicit list of paths."),
		mcp.WithString("root",
			mcp.Description("Workspace root directory to scan recursively"),
		),
		mcp.WithArray("paths",
			mcp.Description("Explicit file paths to lint"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

func listComponentsTool() mcp.Tool {
	return mcp.NewTool("list_components",
		mcp.WithDescription("List the components detected under a workspace root, with their declared prop names."),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Workspace root directory to scan recursively"),
		),
	)
}
