package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/proplint/pkg/lint"
	"github.com/gnana997/proplint/pkg/workspace"
)

// --- helpers ---

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner, err := workspace.NewRunner(lint.DefaultConfig(), workspace.RunnerOptions{Workers: 2}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { runner.Close() })
	return NewServer(runner, nil, logger)
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

const missingPropSrc = `
function Hello(props) {
  return <div>{props.name}</div>;
}
Hello.propTypes = {};
`

// --- lint_source ---

func TestHandleLintSource(t *testing.T) {
	s := testServer(t)
	result, err := s.handleLintSource(context.Background(), makeRequest("lint_source", map[string]any{
		"source": missingPropSrc,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var res lint.Result
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &res))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "name", res.Diagnostics[0].Prop)
	assert.Equal(t, "'name' is missing in props validation", res.Diagnostics[0].Message)
}

func TestHandleLintSource_MissingSource(t *testing.T) {
	s := testServer(t)
	result, err := s.handleLintSource(context.Background(), makeRequest("lint_source", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleLintSource_TSXFilename(t *testing.T) {
	s := testServer(t)
	result, err := s.handleLintSource(context.Background(), makeRequest("lint_source", map[string]any{
		"source": `
type Props = { name: string };
const Hello = (props: Props) => <div>{props.name}</div>;
`,
		"filename": "hello.tsx",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var res lint.Result
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &res))
	assert.Empty(t, res.Diagnostics)
}

// --- lint_files ---

func TestHandleLintFiles_Root(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.jsx"), []byte(missingPropSrc), 0o644))

	s := testServer(t)
	result, err := s.handleLintFiles(context.Background(), makeRequest("lint_files", map[string]any{
		"root": dir,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var resp lintFilesResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, 1, resp.FilesLinted)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "name", resp.Diagnostics[0].Prop)
}

func TestHandleLintFiles_Paths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jsx")
	require.NoError(t, os.WriteFile(path, []byte(missingPropSrc), 0o644))

	s := testServer(t)
	result, err := s.handleLintFiles(context.Background(), makeRequest("lint_files", map[string]any{
		"paths": []any{path},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var resp lintFilesResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, 1, resp.FilesLinted)
}

func TestHandleLintFiles_NoInput(t *testing.T) {
	s := testServer(t)
	result, err := s.handleLintFiles(context.Background(), makeRequest("lint_files", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// --- list_components ---

func TestHandleListComponents(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.jsx"), []byte(`
class Hello extends React.Component {
  render() {
    return <div>{this.props.name}</div>;
  }
}
Hello.propTypes = { name: PropTypes.string };
`), 0o644))

	s := testServer(t)
	result, err := s.handleListComponents(context.Background(), makeRequest("list_components", map[string]any{
		"root": dir,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var comps []lint.ComponentInfo
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &comps))
	require.Len(t, comps, 1)
	assert.Equal(t, "Hello", comps[0].Name)
	assert.Equal(t, "class", comps[0].Kind)
	assert.Equal(t, []string{"name"}, comps[0].DeclaredProps)
}

func TestHandleListComponents_MissingRoot(t *testing.T) {
	s := testServer(t)
	result, err := s.handleListComponents(context.Background(), makeRequest("list_components", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
