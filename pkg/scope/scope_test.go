package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
	"github.com/gnana997/proplint/pkg/parser"
)

func parse(t *testing.T, src string) (*ts.Node, []byte) {
	t.Helper()
	m := parser.NewManager(nil)
	t.Cleanup(func() { m.Close() })
	tree, err := m.Parse([]byte(src), parser.LanguageJavaScript, false)
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })
	return tree.RootNode(), []byte(src)
}

func findFirst(root *ts.Node, kind string) *ts.Node {
	var found *ts.Node
	astwalk.Scan(root, 0,
		func(n *ts.Node) bool { return found == nil && n.Kind() == kind },
		func(n *ts.Node) { found = n },
	)
	return found
}

func TestVariablesInScope_TopLevel(t *testing.T) {
	root, src := parse(t, "const a = 1;\nfunction helper() {}\nclass Widget {}")
	r := NewResolver(root, src)

	vars := r.VariablesInScope(root)
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "Widget")
}

func TestVariablesInScope_InnerSeesOuter(t *testing.T) {
	root, src := parse(t, "const outer = 1;\nfunction f(p) { return outer + p; }")
	r := NewResolver(root, src)

	ret := findFirst(root, "return_statement")
	require.NotNil(t, ret)

	vars := r.VariablesInScope(ret)
	byName := make(map[string]Variable)
	for _, v := range vars {
		byName[v.Name] = v
	}

	require.Contains(t, byName, "p")
	require.Contains(t, byName, "outer")
	assert.NotEmpty(t, byName["p"].Definitions)
}

func TestLookup_ReferencesIncludeUses(t *testing.T) {
	root, src := parse(t, "const Foo = { bar: 1 };\nFoo.bar = 2;\nconsole.log(Foo);")
	r := NewResolver(root, src)

	v := r.Lookup(root, "Foo")
	require.NotNil(t, v)
	require.NotEmpty(t, v.Definitions)
	assert.Equal(t, "variable_declarator", v.Definitions[0].Kind())
	// Foo.bar assignment target and console.log argument.
	assert.Len(t, v.References, 2)
}

func TestLookup_DestructuredBinding(t *testing.T) {
	root, src := parse(t, "const { name, age } = person;")
	r := NewResolver(root, src)

	require.NotNil(t, r.Lookup(root, "name"))
	require.NotNil(t, r.Lookup(root, "age"))
}

func TestLookup_ImportBindings(t *testing.T) {
	root, src := parse(t, "import Dflt from 'x';\nimport { a, b as c } from 'y';")
	r := NewResolver(root, src)

	assert.NotNil(t, r.Lookup(root, "Dflt"))
	assert.NotNil(t, r.Lookup(root, "a"))
	assert.NotNil(t, r.Lookup(root, "c"))
	assert.Nil(t, r.Lookup(root, "b"))
}

func TestLookup_MissingName(t *testing.T) {
	root, src := parse(t, "const a = 1;")
	r := NewResolver(root, src)
	assert.Nil(t, r.Lookup(root, "nope"))
}
