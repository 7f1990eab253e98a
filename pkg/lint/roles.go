package lint

import (
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
	"github.com/gnana997/proplint/pkg/jsdoc"
)

// anchorPattern compiles a configured identifier pattern anchored at
// both ends so partial names never match. An invalid pattern degrades to
// a literal match.
func anchorPattern(pattern string) *regexp.Regexp {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + "$")
	}
	return re
}

// rebuildPragmaPatterns compiles the patterns that embed the pragma
// namespace. Called at walk start and whenever a comment overrides the
// pragma.
func (ru *run) rebuildPragmaPatterns() {
	p := regexp.QuoteMeta(ru.pragma)
	ru.componentRe = regexp.MustCompile("^(?:" + p + "\\.)?(?:Pure)?Component$")
	ru.pureRe = regexp.MustCompile("^(?:" + p + "\\.)?PureComponent$")
	ru.createClassRe = regexp.MustCompile("^(?:" + p + "\\.)?(?:" + ru.cfg.CreateClassPattern + ")$")
}

// calleeText returns the printed form of a call's callee, or "".
func (ru *run) calleeText(call *ts.Node) string {
	if call == nil || call.Kind() != "call_expression" {
		return ""
	}
	return astwalk.Text(call.ChildByFieldName("function"), ru.source)
}

// argumentCallee returns the callee printed form when node is an
// argument of a call expression, or "".
func (ru *run) argumentCallee(node *ts.Node) string {
	p := node.Parent()
	if p == nil || p.Kind() != "arguments" {
		return ""
	}
	return ru.calleeText(p.Parent())
}

// isFactoryComponent reports whether node is the sole object-literal
// argument of a configured kind-factory call.
func (ru *run) isFactoryComponent(node *ts.Node) bool {
	if node == nil || node.Kind() != "object" {
		return false
	}
	callee := ru.argumentCallee(node)
	return callee != "" && ru.factoryRe.MatchString(callee)
}

// isHigherOrderFactory reports whether node is the argument of a
// higher-order factory call. Used only to exclude wrapped components
// from classification; this version never processes them as components.
func (ru *run) isHigherOrderFactory(node *ts.Node) bool {
	callee := ru.argumentCallee(node)
	return callee != "" && ru.hocRe.MatchString(callee)
}

// isLegacyClassComponent reports whether node is the object argument of
// a create-class style call, optionally namespaced under the pragma.
func (ru *run) isLegacyClassComponent(node *ts.Node) bool {
	if node == nil || node.Kind() != "object" {
		return false
	}
	callee := ru.argumentCallee(node)
	return callee != "" && ru.createClassRe.MatchString(callee)
}

// isModernClassComponent reports whether a class node is a component:
// either its doc comment names a base component type, or its superclass
// printed form matches (pragma.)?(Pure)?Component.
func (ru *run) isModernClassComponent(node *ts.Node) bool {
	if node == nil || (node.Kind() != "class_declaration" && node.Kind() != "class") {
		return false
	}
	for _, ext := range jsdoc.ExtendedTypes(ru.docCommentFor(node)) {
		if ru.componentRe.MatchString(ext) {
			return true
		}
	}
	super := ru.superclassText(node)
	return super != "" && ru.componentRe.MatchString(super)
}

// isPureVariant reports whether the class extends the pure base variant.
func (ru *run) isPureVariant(node *ts.Node) bool {
	super := ru.superclassText(node)
	return super != "" && ru.pureRe.MatchString(super)
}

// superclassText returns the printed form of a class's superclass with
// type arguments stripped, or "".
func (ru *run) superclassText(node *ts.Node) string {
	heritage := astwalk.FindChild(node, "class_heritage")
	if heritage == nil {
		return ""
	}
	t := astwalk.Text(heritage, ru.source)
	t = strings.TrimSpace(strings.TrimPrefix(t, "extends"))
	if i := strings.IndexAny(t, "<({"); i >= 0 {
		t = t[:i]
	}
	fields := strings.Fields(t)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// docCommentFor returns the raw text of the comment immediately
// preceding a declaration, looking through an export wrapper.
func (ru *run) docCommentFor(node *ts.Node) string {
	target := node
	if p := node.Parent(); p != nil && p.Kind() == "export_statement" {
		target = p
	}
	prev := target.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	return astwalk.Text(prev, ru.source)
}

// subBlockRole determines whether node sits inside a factory component's
// computed or handlers sub-block. The property's grandparent key must be
// literally "computed"/"handlers" and that property's parent must be the
// factory component object.
func (ru *run) subBlockRole(node *ts.Node) Role {
	fn := ru.enclosingFunctionLike(node)
	if fn == nil {
		return RoleNone
	}
	prop := fn
	if fn.Kind() != "method_definition" {
		p := fn.Parent()
		if p == nil || p.Kind() != "pair" {
			return RoleNone
		}
		prop = p
	}
	block := prop.Parent()
	if block == nil || block.Kind() != "object" {
		return RoleNone
	}
	outer := block.Parent()
	if outer == nil || outer.Kind() != "pair" {
		return RoleNone
	}
	factory := outer.Parent()
	if factory == nil || !ru.isFactoryComponent(factory) {
		return RoleNone
	}
	switch astwalk.Text(outer.ChildByFieldName("key"), ru.source) {
	case "computed":
		return RoleComputed
	case "handlers":
		return RoleHandlers
	}
	return RoleNone
}

// enclosingFunctionLike returns node itself when function-like, else the
// nearest function-like ancestor.
func (ru *run) enclosingFunctionLike(node *ts.Node) *ts.Node {
	if astwalk.IsFunctionKind(node.Kind()) {
		return node
	}
	for n := node.Parent(); n != nil; n = n.Parent() {
		if astwalk.IsFunctionKind(n.Kind()) {
			return n
		}
	}
	return nil
}

// returnsMarkup reports whether an expression is markup: a JSX literal,
// a createElement call, or (per strictness) the branches of a ternary.
func (ru *run) returnsMarkup(expr *ts.Node, strict bool) bool {
	if expr == nil {
		return false
	}
	switch expr.Kind() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	case "parenthesized_expression":
		for i := uint(0); i < uint(expr.ChildCount()); i++ {
			child := expr.Child(i)
			if child.Kind() != "(" && child.Kind() != ")" {
				return ru.returnsMarkup(child, strict)
			}
		}
		return false
	case "call_expression":
		fn := expr.ChildByFieldName("function")
		if fn != nil && fn.Kind() == "member_expression" {
			return astwalk.Text(fn.ChildByFieldName("property"), ru.source) == "createElement"
		}
		return false
	case "ternary_expression":
		cons := ru.returnsMarkup(expr.ChildByFieldName("consequence"), strict)
		alt := ru.returnsMarkup(expr.ChildByFieldName("alternative"), strict)
		if strict {
			return cons && alt
		}
		return cons || alt
	}
	return false
}

// lastReturnValue scans a statement block's direct statements for its
// last return statement and yields the returned expression.
func (ru *run) lastReturnValue(block *ts.Node) *ts.Node {
	if block == nil {
		return nil
	}
	var value *ts.Node
	for i := uint(0); i < uint(block.ChildCount()); i++ {
		child := block.Child(i)
		if child.Kind() == "return_statement" {
			value = returnArgument(child)
		}
	}
	return value
}

// returnArgument extracts the expression of a return statement, or nil
// for a bare return.
func returnArgument(ret *ts.Node) *ts.Node {
	for i := uint(0); i < uint(ret.ChildCount()); i++ {
		child := ret.Child(i)
		k := child.Kind()
		if k != "return" && k != ";" {
			return child
		}
	}
	return nil
}
