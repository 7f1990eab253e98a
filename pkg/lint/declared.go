package lint

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
	"github.com/gnana997/proplint/pkg/scope"
)

// buildFromValidator converts a validator expression into a Shape.
// Anything that cannot be statically analyzed degrades to a leaf, never
// to an error.
func (ru *run) buildFromValidator(n *ts.Node) *Shape {
	if n == nil {
		return leaf()
	}
	switch n.Kind() {
	case "parenthesized_expression":
		return ru.buildFromValidator(unwrapParens(n))
	case "member_expression":
		// Strip a trailing required modifier: Validators.string.isRequired.
		if astwalk.Text(n.ChildByFieldName("property"), ru.source) == "isRequired" {
			return ru.buildFromValidator(n.ChildByFieldName("object"))
		}
		return leaf()
	case "call_expression":
		return ru.buildFromValidatorCall(n)
	}
	return leaf()
}

func (ru *run) buildFromValidatorCall(call *ts.Node) *Shape {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return leaf()
	}

	name := astwalk.Text(callee, ru.source)
	if callee.Kind() == "member_expression" {
		// Calls into a configured custom-validator namespace are trusted
		// without structural analysis.
		ns := astwalk.Text(callee.ChildByFieldName("object"), ru.source)
		if ru.cfg.isCustomValidatorNamespace(ns) {
			return leaf()
		}
		name = astwalk.Text(callee.ChildByFieldName("property"), ru.source)
	}

	switch name {
	case "shape", "exact":
		arg := firstCallArgument(call)
		if arg == nil || arg.Kind() != "object" {
			// Not statically analyzable (identifier, spread-built, ...).
			return leaf()
		}
		return shapeOf(ru.validatorShapeChildren(arg))
	case "arrayOf", "objectOf":
		return objectOf(ru.buildFromValidator(firstCallArgument(call)))
	case "oneOfType":
		arg := firstCallArgument(call)
		if arg == nil || arg.Kind() != "array" {
			return leaf()
		}
		var branches []*Shape
		for _, el := range arrayElements(arg) {
			branches = append(branches, ru.buildFromValidator(el))
		}
		if len(branches) == 0 {
			return leaf()
		}
		return unionOf(branches)
	case "instanceOf":
		return instance()
	}
	// oneOf and anything unrecognized.
	return leaf()
}

// validatorShapeChildren builds the child map of a shape({...}) object.
// Dynamic members (computed keys, spreads) become an any-key wildcard so
// that unknown keys stay covered.
func (ru *run) validatorShapeChildren(obj *ts.Node) map[string]*Shape {
	children := make(map[string]*Shape)
	for i := uint(0); i < uint(obj.ChildCount()); i++ {
		member := obj.Child(i)
		switch member.Kind() {
		case "pair":
			key := member.ChildByFieldName("key")
			if key == nil {
				continue
			}
			if key.Kind() == "computed_property_name" {
				children[anyKey] = leaf()
				continue
			}
			children[propertyName(key, ru.source)] = ru.buildFromValidator(member.ChildByFieldName("value"))
		case "spread_element":
			children[anyKey] = leaf()
		case "method_definition":
			if name := member.ChildByFieldName("name"); name != nil {
				children[propertyName(name, ru.source)] = leaf()
			}
		}
	}
	return children
}

// buildFromType converts a structural type annotation into a Shape,
// mirroring the validator rules. Named types go through the per-walk
// alias table; unresolvable names default to a leaf.
func (ru *run) buildFromType(n *ts.Node) *Shape {
	if n == nil {
		return leaf()
	}
	switch n.Kind() {
	case "object_type", "interface_body":
		return shapeOf(ru.typeShapeChildren(n))
	case "union_type":
		var branches []*Shape
		for _, member := range flattenUnion(n) {
			branches = append(branches, ru.buildFromType(member))
		}
		if len(branches) == 0 {
			return leaf()
		}
		return unionOf(branches)
	case "array_type":
		// element type is the first named child before the brackets
		for i := uint(0); i < uint(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Kind() != "[" && child.Kind() != "]" {
				return objectOf(ru.buildFromType(child))
			}
		}
		return objectOf(leaf())
	case "parenthesized_type":
		for i := uint(0); i < uint(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Kind() != "(" && child.Kind() != ")" {
				return ru.buildFromType(child)
			}
		}
		return leaf()
	case "generic_type":
		name := astwalk.Text(n.ChildByFieldName("name"), ru.source)
		if name == "Array" || name == "ReadonlyArray" {
			if args := astwalk.FindChild(n, "type_arguments"); args != nil {
				for i := uint(0); i < uint(args.ChildCount()); i++ {
					child := args.Child(i)
					k := child.Kind()
					if k != "<" && k != ">" && k != "," {
						return objectOf(ru.buildFromType(child))
					}
				}
			}
			return objectOf(leaf())
		}
		return ru.namedType(name)
	case "type_identifier", "nested_type_identifier":
		return ru.namedType(astwalk.Text(n, ru.source))
	case "intersection_type":
		return ru.intersectionShape(n)
	case "readonly_type":
		for i := uint(0); i < uint(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Kind() != "readonly" {
				return ru.buildFromType(child)
			}
		}
		return leaf()
	}
	// predefined_type, literal_type, function_type, and the rest.
	return leaf()
}

// namedType resolves a type reference through the alias table, guarding
// against definition cycles.
func (ru *run) namedType(name string) *Shape {
	def, ok := ru.aliases[name]
	if !ok || ru.aliasInProgress[name] {
		return leaf()
	}
	ru.aliasInProgress[name] = true
	defer delete(ru.aliasInProgress, name)
	return ru.buildFromType(def)
}

// typeShapeChildren builds the child map of an object type.
func (ru *run) typeShapeChildren(body *ts.Node) map[string]*Shape {
	children := make(map[string]*Shape)
	for i := uint(0); i < uint(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Kind() {
		case "property_signature":
			name := member.ChildByFieldName("name")
			if name == nil {
				continue
			}
			children[propertyName(name, ru.source)] = ru.buildFromType(annotatedType(member))
		case "index_signature":
			children[anyKey] = ru.buildFromType(annotatedType(member))
		case "method_signature":
			if name := member.ChildByFieldName("name"); name != nil {
				children[propertyName(name, ru.source)] = leaf()
			}
		}
	}
	return children
}

// intersectionShape merges the object parts of an intersection type.
// A non-object part that constrains structure collapses to a leaf.
func (ru *run) intersectionShape(n *ts.Node) *Shape {
	merged := make(map[string]*Shape)
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		part := n.Child(i)
		if part.Kind() == "&" {
			continue
		}
		s := ru.buildFromType(part)
		switch {
		case s.Kind == ShapeObject:
			for k, v := range s.Children {
				merged[k] = v
			}
		case s.acceptsAnyPath():
			// contributes no keys but forbids nothing
		default:
			return leaf()
		}
	}
	return shapeOf(merged)
}

// flattenUnion flattens tree-sitter's left-recursive union trees into
// their leaf members.
func flattenUnion(n *ts.Node) []*ts.Node {
	if n.Kind() != "union_type" {
		return []*ts.Node{n}
	}
	var members []*ts.Node
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Kind() == "|" {
			continue
		}
		members = append(members, flattenUnion(child)...)
	}
	return members
}

// declareFromExpression merges a propTypes value expression into the
// component's declared shapes. Unresolvable expressions set the
// ignore-validation escape; a declaration that cannot be analyzed must
// silence reporting, never produce false positives.
func (ru *run) declareFromExpression(c *Component, value *ts.Node) {
	if c == nil || value == nil {
		return
	}
	switch value.Kind() {
	case "parenthesized_expression":
		ru.declareFromExpression(c, unwrapParens(value))
	case "object":
		// Touch the map so an empty literal still counts as declared.
		if c.DeclaredTypes == nil {
			c.DeclaredTypes = make(map[string]*Shape)
		}
		for i := uint(0); i < uint(value.ChildCount()); i++ {
			member := value.Child(i)
			switch member.Kind() {
			case "pair":
				key := member.ChildByFieldName("key")
				if key == nil {
					continue
				}
				if key.Kind() == "computed_property_name" {
					c.IgnorePropsValidation = true
					continue
				}
				c.declare(propertyName(key, ru.source), ru.buildFromValidator(member.ChildByFieldName("value")))
			case "spread_element":
				c.IgnorePropsValidation = true
			case "method_definition":
				if name := member.ChildByFieldName("name"); name != nil {
					c.declare(propertyName(name, ru.source), leaf())
				}
			}
		}
	case "identifier":
		// Cross-reference: resolve to its initializer and rebuild.
		v := ru.resolver.Lookup(value, astwalk.Text(value, ru.source))
		init := declaratorValue(v)
		if init == nil {
			c.IgnorePropsValidation = true
			return
		}
		ru.declareFromExpression(c, init)
	default:
		// Member accesses, calls, imports: not statically analyzable.
		c.IgnorePropsValidation = true
	}
}

// declareFromTypeAnnotation applies a props type annotation to the
// component. Only enumerable object shapes can serve as declarations;
// anything else escapes to ignore-validation.
func (ru *run) declareFromTypeAnnotation(c *Component, typeNode *ts.Node) {
	if c == nil || typeNode == nil {
		return
	}
	s := ru.buildFromType(typeNode)
	if s.Kind != ShapeObject {
		c.IgnorePropsValidation = true
		return
	}
	if c.DeclaredTypes == nil {
		c.DeclaredTypes = make(map[string]*Shape)
	}
	for k, v := range s.Children {
		c.declare(k, v)
	}
}

// handleMemberAssignment processes `X.Y.propTypes = ...` style
// declarations, including grafting onto an already-declared key
// (`X.propTypes.extra = ...`).
func (ru *run) handleMemberAssignment(n *ts.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil || left.Kind() != "member_expression" {
		return
	}
	segs, base := memberPathSegments(left, ru.source)
	if base == nil || len(segs) < 2 {
		return
	}

	// Locate the propTypes segment from the end.
	idx := -1
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] == "propTypes" {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return
	}

	target := strings.Join(segs[:idx], ".")
	c := ru.relatedComponent(left, target)
	if c == nil {
		return
	}

	rest := segs[idx+1:]
	if len(rest) == 0 {
		ru.declareFromExpression(c, right)
		return
	}
	ru.graftDeclaration(c, rest, right)
}

// graftDeclaration walks the already-declared shape tree along segs and
// grafts the new declaration at the end. Unresolvable segments set the
// ignore-validation escape.
func (ru *run) graftDeclaration(c *Component, segs []string, value *ts.Node) {
	if len(segs) == 1 {
		c.declare(segs[0], ru.buildFromValidator(value))
		return
	}
	cur, ok := c.DeclaredTypes[segs[0]]
	if !ok {
		c.IgnorePropsValidation = true
		return
	}
	for _, seg := range segs[1 : len(segs)-1] {
		if cur.Kind != ShapeObject {
			c.IgnorePropsValidation = true
			return
		}
		next, ok := cur.Children[seg]
		if !ok {
			c.IgnorePropsValidation = true
			return
		}
		cur = next
	}
	if cur.Kind != ShapeObject {
		c.IgnorePropsValidation = true
		return
	}
	cur.Children[segs[len(segs)-1]] = ru.buildFromValidator(value)
}

// Helpers shared by the builders.

func unwrapParens(n *ts.Node) *ts.Node {
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Kind() != "(" && child.Kind() != ")" {
			return child
		}
	}
	return nil
}

// firstCallArgument returns the first real argument of a call.
func firstCallArgument(call *ts.Node) *ts.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := uint(0); i < uint(args.ChildCount()); i++ {
		child := args.Child(i)
		switch child.Kind() {
		case "(", ")", ",", "comment":
			continue
		}
		return child
	}
	return nil
}

// arrayElements returns the element nodes of an array literal.
func arrayElements(arr *ts.Node) []*ts.Node {
	var els []*ts.Node
	for i := uint(0); i < uint(arr.ChildCount()); i++ {
		child := arr.Child(i)
		switch child.Kind() {
		case "[", "]", ",", "comment":
			continue
		}
		els = append(els, child)
	}
	return els
}

// propertyName returns a key's name, unquoting string keys.
func propertyName(key *ts.Node, source []byte) string {
	t := astwalk.Text(key, source)
	if len(t) >= 2 {
		if (t[0] == '"' && t[len(t)-1] == '"') || (t[0] == '\'' && t[len(t)-1] == '\'') {
			return t[1 : len(t)-1]
		}
	}
	return t
}

// annotatedType unwraps a property/index signature's type_annotation to
// the actual type node.
func annotatedType(member *ts.Node) *ts.Node {
	anno := member.ChildByFieldName("type")
	if anno == nil {
		return nil
	}
	for i := uint(0); i < uint(anno.ChildCount()); i++ {
		child := anno.Child(i)
		if child.Kind() != ":" {
			return child
		}
	}
	return nil
}

// memberPathSegments reconstructs the dotted path of a member chain and
// returns the leftmost base identifier node. A non-literal segment
// aborts (nil base).
func memberPathSegments(n *ts.Node, source []byte) ([]string, *ts.Node) {
	switch n.Kind() {
	case "identifier":
		return []string{astwalk.Text(n, source)}, n
	case "member_expression":
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return nil, nil
		}
		segs, base := memberPathSegments(obj, source)
		if base == nil {
			return nil, nil
		}
		return append(segs, astwalk.Text(prop, source)), base
	case "subscript_expression":
		obj := n.ChildByFieldName("object")
		idx := n.ChildByFieldName("index")
		if obj == nil || idx == nil || idx.Kind() != "string" {
			return nil, nil
		}
		segs, base := memberPathSegments(obj, source)
		if base == nil {
			return nil, nil
		}
		return append(segs, propertyName(idx, source)), base
	}
	return nil, nil
}

// declaratorValue returns the initializer of a variable's declarator
// definition, or nil.
func declaratorValue(v *scope.Variable) *ts.Node {
	if v == nil {
		return nil
	}
	for _, d := range v.Definitions {
		if d.Kind() == "variable_declarator" {
			return d.ChildByFieldName("value")
		}
	}
	return nil
}
