// Package astwalk drives traversal over tree-sitter syntax trees: a
// strict pre-order walk with enter callbacks per node, exit callbacks at
// block boundaries, and a final program-exit callback. It also provides
// span-based node identity and a bounded depth-first scan utility.
package astwalk

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// NodeID identifies a node by its byte span. Tree-sitter hands out node
// values, not stable pointers, so identity is the source span.
type NodeID struct {
	Start uint
	End   uint
}

// ID returns the span identity of a node.
func ID(n *ts.Node) NodeID {
	return NodeID{Start: uint(n.StartByte()), End: uint(n.EndByte())}
}

// String renders the id for logging.
func (id NodeID) String() string {
	return fmt.Sprintf("[%d,%d)", id.Start, id.End)
}

// Visitor receives traversal callbacks. Enter fires for every node in
// pre-order. Exit fires for block-scoped nodes after their subtree has
// been visited, and for the program node last of all.
type Visitor interface {
	Enter(n *ts.Node)
	Exit(n *ts.Node)
}

// FuncVisitor adapts plain functions to the Visitor interface.
type FuncVisitor struct {
	OnEnter func(n *ts.Node)
	OnExit  func(n *ts.Node)
}

func (v FuncVisitor) Enter(n *ts.Node) {
	if v.OnEnter != nil {
		v.OnEnter(n)
	}
}

func (v FuncVisitor) Exit(n *ts.Node) {
	if v.OnExit != nil {
		v.OnExit(n)
	}
}

// blockScoped lists the node kinds that receive a matching exit visit.
var blockScoped = map[string]bool{
	"program":              true,
	"statement_block":      true,
	"class_body":           true,
	"function_declaration": true,
	"function_expression":  true,
	"function":             true,
	"arrow_function":       true,
	"method_definition":    true,
}

// Walk traverses the tree rooted at root, firing visitor callbacks.
// Every node is entered exactly once; block-scoped nodes are exited in
// reverse order of entry; the root (program) exit fires last.
func Walk(root *ts.Node, v Visitor) {
	if root == nil {
		return
	}
	walk(root, v)
}

func walk(n *ts.Node, v Visitor) {
	v.Enter(n)
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		walk(n.Child(i), v)
	}
	if blockScoped[n.Kind()] {
		v.Exit(n)
	}
}

// Scan runs a bounded depth-first traversal of the subtree rooted at
// node, calling fn on every descendant for which pred returns true.
// Descent follows child edges only (never the parent link) and stops at
// maxDepth; maxDepth <= 0 means unbounded within the subtree.
func Scan(node *ts.Node, maxDepth int, pred func(*ts.Node) bool, fn func(*ts.Node)) {
	if node == nil {
		return
	}
	scan(node, 0, maxDepth, pred, fn)
}

func scan(n *ts.Node, depth, maxDepth int, pred func(*ts.Node) bool, fn func(*ts.Node)) {
	if maxDepth > 0 && depth > maxDepth {
		return
	}
	if pred(n) {
		fn(n)
	}
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		scan(n.Child(i), depth+1, maxDepth, pred, fn)
	}
}

// Text returns the source text of a node.
func Text(n *ts.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(source)
}

// FindChild returns the first direct child of the given kind, or nil.
func FindChild(n *ts.Node, kind string) *ts.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// NearestAncestor walks the parent chain from n (exclusive) and returns
// the first ancestor whose kind is in kinds, or nil.
func NearestAncestor(n *ts.Node, kinds ...string) *ts.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, k := range kinds {
			if p.Kind() == k {
				return p
			}
		}
	}
	return nil
}

// IsFunctionKind reports whether kind is any function-like node.
func IsFunctionKind(kind string) bool {
	switch kind {
	case "function_declaration", "function_expression", "function",
		"arrow_function", "generator_function", "generator_function_declaration",
		"method_definition":
		return true
	}
	return false
}
