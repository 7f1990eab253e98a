package astwalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/parser"
)

func parseJS(t *testing.T, src string) *ts.Tree {
	t.Helper()
	m := parser.NewManager(nil)
	t.Cleanup(func() { m.Close() })
	tree, err := m.Parse([]byte(src), parser.LanguageJavaScript, false)
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })
	return tree
}

func TestWalk_EnterOrderIsPreOrder(t *testing.T) {
	tree := parseJS(t, "const x = 1;")

	var kinds []string
	Walk(tree.RootNode(), FuncVisitor{
		OnEnter: func(n *ts.Node) { kinds = append(kinds, n.Kind()) },
	})

	require.NotEmpty(t, kinds)
	assert.Equal(t, "program", kinds[0])
	assert.Contains(t, kinds, "lexical_declaration")
	assert.Contains(t, kinds, "variable_declarator")
}

func TestWalk_ExitFiresForBlocksAndProgramLast(t *testing.T) {
	tree := parseJS(t, "function f() { return 1; }")

	var exits []string
	Walk(tree.RootNode(), FuncVisitor{
		OnExit: func(n *ts.Node) { exits = append(exits, n.Kind()) },
	})

	require.NotEmpty(t, exits)
	assert.Equal(t, "program", exits[len(exits)-1], "program exit must fire last")
	assert.Contains(t, exits, "statement_block")
	assert.Contains(t, exits, "function_declaration")
}

func TestScan_BoundedAndPredicateFiltered(t *testing.T) {
	tree := parseJS(t, "function f(rest) { return rest.a + rest.b.c; }")

	var members int
	Scan(tree.RootNode(), 0,
		func(n *ts.Node) bool { return n.Kind() == "member_expression" },
		func(n *ts.Node) { members++ },
	)
	// rest.a, rest.b.c, rest.b
	assert.Equal(t, 3, members)

	// Depth 1 sees only the top-level statement, no member expressions.
	members = 0
	Scan(tree.RootNode(), 1,
		func(n *ts.Node) bool { return n.Kind() == "member_expression" },
		func(n *ts.Node) { members++ },
	)
	assert.Zero(t, members)
}

func TestID_IsSpanBased(t *testing.T) {
	tree := parseJS(t, "let a = 1;")
	root := tree.RootNode()

	id := ID(root)
	assert.Equal(t, uint(0), id.Start)
	assert.Equal(t, root.EndByte(), id.End)
	assert.Equal(t, ID(root), ID(root), "same span yields same id")
}

func TestNearestAncestor(t *testing.T) {
	tree := parseJS(t, "function f() { return 1; }")

	var ret *ts.Node
	Scan(tree.RootNode(), 0,
		func(n *ts.Node) bool { return n.Kind() == "return_statement" },
		func(n *ts.Node) { ret = n },
	)
	require.NotNil(t, ret)

	fn := NearestAncestor(ret, "function_declaration")
	require.NotNil(t, fn)
	assert.Equal(t, "function_declaration", fn.Kind())

	assert.Nil(t, NearestAncestor(ret, "class_declaration"))
}
