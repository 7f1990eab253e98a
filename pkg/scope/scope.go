// Package scope resolves lexical variables over a tree-sitter syntax
// tree. For any node it answers: which variables are visible here, where
// is each one defined, and where is it referenced. The linter treats
// this as an oracle; resolution is a lexical approximation (var/let/const
// are not distinguished) which errs toward visibility.
package scope

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
)

// Variable is one lexically visible binding.
type Variable struct {
	Name string
	// Definitions are the defining sites: variable_declarator,
	// function_declaration, class_declaration, parameter pattern, or
	// import specifier nodes.
	Definitions []*ts.Node
	// References are identifier nodes with this name anywhere in the
	// defining scope's subtree, nested closures included.
	References []*ts.Node
}

// Resolver answers scope queries for a single parsed file.
type Resolver struct {
	root   *ts.Node
	source []byte
}

// NewResolver creates a resolver over one file's tree.
func NewResolver(root *ts.Node, source []byte) *Resolver {
	return &Resolver{root: root, source: source}
}

// VariablesInScope returns every variable visible at node, innermost
// scope first. Shadowed outer bindings are omitted.
func (r *Resolver) VariablesInScope(node *ts.Node) []Variable {
	var vars []Variable
	seen := make(map[string]bool)

	for _, scopeNode := range r.scopeChain(node) {
		for _, v := range r.scopeVariables(scopeNode) {
			if seen[v.Name] {
				continue
			}
			seen[v.Name] = true
			vars = append(vars, v)
		}
	}
	return vars
}

// Lookup returns the visible variable with the given name, or nil.
func (r *Resolver) Lookup(node *ts.Node, name string) *Variable {
	for _, scopeNode := range r.scopeChain(node) {
		for _, v := range r.scopeVariables(scopeNode) {
			if v.Name == name {
				return &v
			}
		}
	}
	return nil
}

// scopeChain lists the scope nodes enclosing node, innermost first,
// always ending at the program root.
func (r *Resolver) scopeChain(node *ts.Node) []*ts.Node {
	var chain []*ts.Node
	for n := node; n != nil; n = n.Parent() {
		if isScopeNode(n) {
			chain = append(chain, n)
		}
	}
	if len(chain) == 0 {
		chain = append(chain, r.root)
	}
	return chain
}

func isScopeNode(n *ts.Node) bool {
	return n.Kind() == "program" || astwalk.IsFunctionKind(n.Kind())
}

// scopeVariables collects the bindings declared directly in scopeNode.
func (r *Resolver) scopeVariables(scopeNode *ts.Node) []Variable {
	defs := make(map[string][]*ts.Node)
	var order []string

	record := func(name string, def *ts.Node) {
		if name == "" {
			return
		}
		if _, ok := defs[name]; !ok {
			order = append(order, name)
		}
		defs[name] = append(defs[name], def)
	}

	// Parameters belong to the function scope itself.
	if params := scopeNode.ChildByFieldName("parameters"); params != nil {
		r.collectPatternNames(params, func(name string, n *ts.Node) { record(name, n) })
	}
	// Single-parameter arrow without parens: x => ...
	if scopeNode.Kind() == "arrow_function" {
		if p := scopeNode.ChildByFieldName("parameter"); p != nil && p.Kind() == "identifier" {
			record(astwalk.Text(p, r.source), p)
		}
	}

	r.collectDeclarations(scopeNode, scopeNode, record)

	vars := make([]Variable, 0, len(order))
	for _, name := range order {
		vars = append(vars, Variable{
			Name:        name,
			Definitions: defs[name],
			References:  r.collectReferences(scopeNode, name),
		})
	}
	return vars
}

// collectDeclarations walks the scope subtree recording declarations,
// stopping at nested scope boundaries.
func (r *Resolver) collectDeclarations(n, scopeNode *ts.Node, record func(string, *ts.Node)) {
	if astwalk.ID(n) != astwalk.ID(scopeNode) && isScopeNode(n) {
		// Nested scope: its own declarations are not visible here, but a
		// named function declaration binds in the enclosing scope.
		if n.Kind() == "function_declaration" || n.Kind() == "generator_function_declaration" {
			if name := n.ChildByFieldName("name"); name != nil {
				record(astwalk.Text(name, r.source), n)
			}
		}
		return
	}

	switch n.Kind() {
	case "variable_declarator":
		if name := n.ChildByFieldName("name"); name != nil {
			if name.Kind() == "identifier" {
				record(astwalk.Text(name, r.source), n)
			} else {
				r.collectPatternNames(name, func(s string, _ *ts.Node) { record(s, n) })
			}
		}
	case "class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			record(astwalk.Text(name, r.source), n)
		}
	case "import_specifier":
		// import { a as b } binds b; import { a } binds a.
		bind := n.ChildByFieldName("alias")
		if bind == nil {
			bind = n.ChildByFieldName("name")
		}
		if bind != nil {
			record(astwalk.Text(bind, r.source), n)
		}
	case "import_clause":
		// Default import: import Foo from "x".
		for i := uint(0); i < uint(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Kind() == "identifier" {
				record(astwalk.Text(child, r.source), child)
			}
		}
	}

	for i := uint(0); i < uint(n.ChildCount()); i++ {
		r.collectDeclarations(n.Child(i), scopeNode, record)
	}
}

// collectPatternNames records every identifier bound by a parameter or
// destructuring pattern.
func (r *Resolver) collectPatternNames(pattern *ts.Node, record func(string, *ts.Node)) {
	astwalk.Scan(pattern, 0, func(n *ts.Node) bool {
		switch n.Kind() {
		case "identifier", "shorthand_property_identifier_pattern":
			return true
		}
		return false
	}, func(n *ts.Node) {
		// In pair_pattern {key: local}, only the value side binds.
		if p := n.Parent(); p != nil && p.Kind() == "pair_pattern" {
			if key := p.ChildByFieldName("key"); key != nil && astwalk.ID(key) == astwalk.ID(n) {
				return
			}
		}
		record(astwalk.Text(n, r.source), n)
	})
}

// collectReferences finds identifier uses of name within the scope
// subtree, excluding declaration-side identifiers.
func (r *Resolver) collectReferences(scopeNode *ts.Node, name string) []*ts.Node {
	var refs []*ts.Node
	astwalk.Scan(scopeNode, 0, func(n *ts.Node) bool {
		return n.Kind() == "identifier" && astwalk.Text(n, r.source) == name
	}, func(n *ts.Node) {
		if isDeclarationSide(n) {
			return
		}
		refs = append(refs, n)
	})
	return refs
}

// isDeclarationSide reports whether an identifier is itself the name
// being declared rather than a use.
func isDeclarationSide(n *ts.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	switch p.Kind() {
	case "variable_declarator", "function_declaration", "class_declaration",
		"generator_function_declaration", "method_definition":
		name := p.ChildByFieldName("name")
		return name != nil && astwalk.ID(name) == astwalk.ID(n)
	case "formal_parameters", "required_parameter", "optional_parameter":
		return true
	case "import_specifier", "import_clause", "namespace_import":
		return true
	}
	return false
}
