package lint

import (
	"log/slog"
	"regexp"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
	"github.com/gnana997/proplint/pkg/jsdoc"
	"github.com/gnana997/proplint/pkg/scope"
)

// run carries the per-file walk state: the registry being populated, the
// compiled detection patterns, the type alias table and the diagnostics
// accumulated by the final reconciliation. One run never outlives one
// file walk, so a pragma override stays file-local.
type run struct {
	cfg      Config
	file     string
	source   []byte
	resolver *scope.Resolver
	registry *Registry
	logger   *slog.Logger

	pragma        string
	factoryRe     *regexp.Regexp
	hocRe         *regexp.Regexp
	createClassRe *regexp.Regexp
	componentRe   *regexp.Regexp
	pureRe        *regexp.Regexp

	aliases         map[string]*ts.Node
	aliasInProgress map[string]bool

	diags []Diagnostic
}

func newRun(cfg Config, file string, source []byte, resolver *scope.Resolver, logger *slog.Logger) *run {
	ru := &run{
		cfg:             cfg,
		file:            file,
		source:          source,
		resolver:        resolver,
		registry:        newRegistry(),
		logger:          logger,
		pragma:          cfg.Pragma,
		factoryRe:       anchorPattern(cfg.KindFactoryPattern),
		hocRe:           anchorPattern(cfg.HOCFactoryPattern),
		aliases:         make(map[string]*ts.Node),
		aliasInProgress: make(map[string]bool),
	}
	ru.rebuildPragmaPatterns()
	return ru
}

// Enter classifies nodes and collects declarations and usages in a
// single pre-order pass.
func (ru *run) Enter(n *ts.Node) {
	switch n.Kind() {
	case "comment":
		ru.handleComment(n)
	case "class_declaration", "class":
		ru.handleClass(n)
	case "object":
		ru.handleObject(n)
	case "function_declaration", "function_expression", "function",
		"arrow_function", "generator_function", "generator_function_declaration":
		ru.handleFunction(n)
	case "method_definition":
		ru.handleMethodDefinition(n)
	case "field_definition", "public_field_definition":
		ru.handleClassField(n)
	case "pair":
		ru.handlePair(n)
	case "this":
		ru.handleThis(n)
	case "return_statement":
		ru.handleReturn(n)
	case "member_expression", "subscript_expression":
		ru.handleMemberUsage(n)
	case "variable_declarator":
		ru.handleDeclarator(n)
	case "assignment_expression":
		ru.handleMemberAssignment(n)
	case "type_alias_declaration":
		name := n.ChildByFieldName("name")
		value := n.ChildByFieldName("value")
		if name != nil && value != nil {
			ru.aliases[astwalk.Text(name, ru.source)] = value
		}
	case "interface_declaration":
		name := n.ChildByFieldName("name")
		body := n.ChildByFieldName("body")
		if name != nil && body != nil {
			ru.aliases[astwalk.Text(name, ru.source)] = body
		}
	}
}

// Exit reconciles once the whole program has been walked.
func (ru *run) Exit(n *ts.Node) {
	if n.Kind() == "program" {
		ru.reconcile()
	}
}

// handleComment applies a pragma override for the rest of the file walk.
func (ru *run) handleComment(n *ts.Node) {
	p := jsdoc.Pragma(astwalk.Text(n, ru.source))
	if p != "" && p != ru.pragma {
		ru.pragma = p
		ru.rebuildPragmaPatterns()
	}
}

func (ru *run) handleClass(n *ts.Node) {
	if !ru.isModernClassComponent(n) {
		return
	}
	c := ru.registry.Add(n, Confirmed)

	// extends Component<Props>: the first heritage type argument declares
	// the props shape.
	heritage := astwalk.FindChild(n, "class_heritage")
	if heritage == nil {
		return
	}
	done := false
	astwalk.Scan(heritage, 4, func(x *ts.Node) bool {
		return x.Kind() == "type_arguments"
	}, func(args *ts.Node) {
		if done {
			return
		}
		for i := uint(0); i < uint(args.ChildCount()); i++ {
			child := args.Child(i)
			switch child.Kind() {
			case "<", ">", ",":
				continue
			}
			done = true
			ru.declareFromTypeAnnotation(c, child)
			return
		}
	})
}

func (ru *run) handleObject(n *ts.Node) {
	switch {
	case ru.isFactoryComponent(n):
		c := ru.registry.Add(n, Confirmed)
		ru.collectSubBlockKeys(n, c)
	case ru.isLegacyClassComponent(n):
		ru.registry.Add(n, Confirmed)
	}
}

// collectSubBlockKeys records the prop names declared by a factory
// component's computed and handlers blocks.
func (ru *run) collectSubBlockKeys(factory *ts.Node, c *Component) {
	for i := uint(0); i < uint(factory.ChildCount()); i++ {
		member := factory.Child(i)
		if member.Kind() != "pair" {
			continue
		}
		var set map[string]bool
		switch astwalk.Text(member.ChildByFieldName("key"), ru.source) {
		case "computed":
			set = c.ComputedProps
		case "handlers":
			set = c.HandlersProps
		default:
			continue
		}
		block := member.ChildByFieldName("value")
		if block == nil || block.Kind() != "object" {
			continue
		}
		for j := uint(0); j < uint(block.ChildCount()); j++ {
			entry := block.Child(j)
			var key *ts.Node
			switch entry.Kind() {
			case "pair":
				key = entry.ChildByFieldName("key")
			case "method_definition":
				key = entry.ChildByFieldName("name")
			}
			if key == nil || key.Kind() == "computed_property_name" {
				continue
			}
			set[propertyName(key, ru.source)] = true
		}
	}
}

func (ru *run) handleFunction(n *ts.Node) {
	if role := ru.subBlockRole(n); role != RoleNone {
		ru.markDestructuredParams(n, role)
		return
	}
	// Inline callback arguments are never components, wrapped ones
	// (higher-order factories) deliberately included.
	if ru.argumentCallee(n) != "" {
		if ru.isHigherOrderFactory(n) {
			ru.logger.Debug("skipping wrapped component", "file", ru.file)
		}
		ru.registry.Add(n, Banned)
		return
	}
	comp := ru.parentComponent(n)
	if comp == nil {
		ru.registry.Add(n, Banned)
		return
	}

	conf := Maybe
	if n.Kind() == "arrow_function" {
		if body := n.ChildByFieldName("body"); body != nil &&
			body.Kind() != "statement_block" && ru.returnsMarkup(body, false) {
			conf = Confirmed
		}
	}
	c := ru.registry.Add(comp, conf)

	switch {
	case astwalk.ID(comp) == astwalk.ID(n):
		// The function is its own candidate: a stateless component taking
		// props as its first parameter.
		ru.markDestructuredParams(n, RoleNone)
		ru.declareStatelessParamType(n, c)
	case comp.Kind() == "object" && ru.isDirectPropertyValue(comp, n):
		ru.markDestructuredParams(n, RoleNone)
	}
}

func (ru *run) handleMethodDefinition(n *ts.Node) {
	if role := ru.subBlockRole(n); role != RoleNone {
		ru.markDestructuredParams(n, role)
		return
	}
	owner := ru.parentComponent(n)
	if owner == nil {
		return
	}
	name := astwalk.Text(n.ChildByFieldName("name"), ru.source)
	switch {
	case name == "propTypes":
		c := ru.registry.Add(owner, Confirmed)
		ru.declareFromExpression(c, ru.lastReturnValue(n.ChildByFieldName("body")))
	case owner.Kind() == "object":
		// Factory and legacy object methods take the props object directly.
		ru.markDestructuredParams(n, RoleNone)
	}
}

func (ru *run) handleClassField(n *ts.Node) {
	comp := ru.parentComponent(n)
	if comp == nil || (comp.Kind() != "class_declaration" && comp.Kind() != "class") {
		return
	}
	c := ru.registry.Add(comp, Confirmed)
	if astwalk.Text(n.ChildByFieldName("property"), ru.source) == "propTypes" {
		ru.declareFromExpression(c, n.ChildByFieldName("value"))
	}
}

func (ru *run) handlePair(n *ts.Node) {
	key := n.ChildByFieldName("key")
	if key == nil || astwalk.Text(key, ru.source) != "propTypes" {
		return
	}
	obj := n.Parent()
	if obj == nil {
		return
	}
	// Only factory and legacy component objects carry a record here.
	c := ru.registry.Get(obj)
	if c == nil {
		return
	}
	ru.declareFromExpression(c, n.ChildByFieldName("value"))
}

// handleThis bans a plain function that touches `this`: it cannot be a
// stateless component.
func (ru *run) handleThis(n *ts.Node) {
	if astwalk.NearestAncestor(n, "class_body") != nil {
		return
	}
	p := n.Parent()
	if p == nil || (p.Kind() != "member_expression" && p.Kind() != "subscript_expression") {
		return
	}
	if comp := ru.parentComponent(n); comp != nil && comp.Kind() == "object" {
		// Legacy and factory object methods legitimately use `this`.
		return
	}
	fn := ru.enclosingFunctionLike(n)
	if fn == nil || fn.Kind() == "method_definition" {
		return
	}
	ru.registry.Add(fn, Banned)
}

func (ru *run) handleReturn(n *ts.Node) {
	if !ru.returnsMarkup(returnArgument(n), false) {
		return
	}
	comp := ru.parentComponent(n)
	if comp != nil {
		ru.registry.Add(comp, Confirmed)
		return
	}
	// No resolvable owner: remember the enclosing block as ambiguous so a
	// later owner can still claim its usages.
	if block := astwalk.NearestAncestor(n, "statement_block"); block != nil {
		ru.registry.Add(block, Maybe)
	}
}

func (ru *run) handleDeclarator(n *ts.Node) {
	name := n.ChildByFieldName("name")
	value := n.ChildByFieldName("value")
	if name == nil || name.Kind() != "object_pattern" || !ru.isPropsReceiver(value) {
		return
	}
	ru.markPatternKeys(name, n, ru.subBlockRole(n))
}

// markDestructuredParams extracts prop usage from a function's props
// parameter pattern: the 0th parameter normally, the 1st for handlers
// (which receive the event first).
func (ru *run) markDestructuredParams(fn *ts.Node, role Role) {
	params := positionalParams(fn)
	idx := 0
	if role == RoleHandlers {
		idx = 1
	}
	if idx >= len(params) {
		return
	}
	param := unwrapParameter(params[idx])
	if param != nil && param.Kind() == "object_pattern" {
		ru.markPropTypesAsUsed(param, role)
	}
}

// declareStatelessParamType applies a TS annotation on the props
// parameter as the declared shape.
func (ru *run) declareStatelessParamType(fn *ts.Node, c *Component) {
	params := positionalParams(fn)
	if len(params) == 0 {
		return
	}
	if t := annotatedType(params[0]); t != nil {
		ru.declareFromTypeAnnotation(c, t)
	}
}

// parentComponent resolves the component owning a node. Strategies in
// order: the nearest enclosing component class, the nearest factory or
// legacy component object, then the nearest stateless function candidate.
func (ru *run) parentComponent(node *ts.Node) *ts.Node {
	if cls := astwalk.NearestAncestor(node, "class_declaration", "class"); cls != nil {
		if ru.isModernClassComponent(cls) {
			return cls
		}
		if c := ru.registry.Get(cls); c != nil && c.Confidence == Confirmed {
			return cls
		}
	}
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "object" && (ru.isFactoryComponent(p) || ru.isLegacyClassComponent(p)) {
			return p
		}
	}
	return ru.nearestStatelessFunction(node)
}

// nearestStatelessFunction walks outward to the closest plain function,
// stopping at class and call-argument boundaries. A computed/handlers
// sub-block function redirects ownership to its factory object.
func (ru *run) nearestStatelessFunction(node *ts.Node) *ts.Node {
	first := true
	for n := node; n != nil; n = n.Parent() {
		k := n.Kind()
		if k == "class_declaration" || k == "class" || k == "class_body" {
			return nil
		}
		if !first && k == "arguments" {
			return nil
		}
		if astwalk.IsFunctionKind(k) && k != "method_definition" {
			if ru.subBlockRole(n) != RoleNone {
				return ru.enclosingFactoryObject(n)
			}
			return n
		}
		first = false
	}
	return nil
}

func (ru *run) enclosingFactoryObject(n *ts.Node) *ts.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "object" && ru.isFactoryComponent(p) {
			return p
		}
	}
	return nil
}

// isDirectPropertyValue reports whether fn is the value of a direct
// property of obj.
func (ru *run) isDirectPropertyValue(obj, fn *ts.Node) bool {
	p := fn.Parent()
	if p == nil || p.Kind() != "pair" {
		return false
	}
	gp := p.Parent()
	return gp != nil && astwalk.ID(gp) == astwalk.ID(obj)
}

// relatedComponent resolves a dotted path like "Foo.Bar" back to its
// component record: first by an assignment defining the full path, then
// by walking object literals from the declaration site.
func (ru *run) relatedComponent(at *ts.Node, path string) *Component {
	segs := strings.Split(path, ".")
	v := ru.resolver.Lookup(at, segs[0])
	if v == nil {
		return nil
	}

	for _, ref := range v.References {
		for p := ref; p != nil; p = parentMember(p) {
			if astwalk.Text(p, ru.source) != path {
				continue
			}
			asg := p.Parent()
			if asg != nil && asg.Kind() == "assignment_expression" && childIsField(asg, "left", p) {
				if rhs := asg.ChildByFieldName("right"); rhs != nil {
					return ru.registry.Add(ru.derefComponentExpr(rhs), Maybe)
				}
			}
		}
	}

	node := ru.definitionNode(v)
	if node == nil {
		return nil
	}
	for _, seg := range segs[1:] {
		node = objectPropertyValue(node, seg, ru.source)
		if node == nil {
			return nil
		}
	}
	return ru.registry.Add(ru.derefComponentExpr(node), Maybe)
}

// definitionNode picks the node a variable's component record should
// hang off: the declaration itself for classes and functions, the
// initializer for declarators.
func (ru *run) definitionNode(v *scope.Variable) *ts.Node {
	for _, d := range v.Definitions {
		switch d.Kind() {
		case "class_declaration", "function_declaration":
			return d
		case "variable_declarator":
			if value := d.ChildByFieldName("value"); value != nil {
				return value
			}
		}
	}
	return nil
}

// derefComponentExpr peels factory and create-class calls down to the
// component object that already carries the registry record.
func (ru *run) derefComponentExpr(n *ts.Node) *ts.Node {
	switch n.Kind() {
	case "parenthesized_expression":
		if inner := unwrapParens(n); inner != nil {
			return ru.derefComponentExpr(inner)
		}
	case "call_expression":
		if arg := firstCallArgument(n); arg != nil &&
			(ru.isFactoryComponent(arg) || ru.isLegacyClassComponent(arg)) {
			return arg
		}
	}
	return n
}

// positionalParams returns a function's positional parameter nodes with
// punctuation stripped. A parenthesis-free arrow parameter counts as the
// single 0th parameter.
func positionalParams(fn *ts.Node) []*ts.Node {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		if p := fn.ChildByFieldName("parameter"); p != nil {
			return []*ts.Node{p}
		}
		return nil
	}
	var out []*ts.Node
	for i := uint(0); i < uint(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Kind() {
		case "(", ")", ",", "comment":
			continue
		}
		out = append(out, child)
	}
	return out
}

// unwrapParameter strips TS parameter wrappers down to the pattern.
func unwrapParameter(p *ts.Node) *ts.Node {
	if p == nil {
		return nil
	}
	switch p.Kind() {
	case "required_parameter", "optional_parameter":
		if pattern := p.ChildByFieldName("pattern"); pattern != nil {
			return pattern
		}
	}
	return p
}

func parentMember(p *ts.Node) *ts.Node {
	q := p.Parent()
	if q != nil && q.Kind() == "member_expression" && childIsField(q, "object", p) {
		return q
	}
	return nil
}

// objectPropertyValue walks one named property of an object literal.
func objectPropertyValue(obj *ts.Node, name string, source []byte) *ts.Node {
	if obj == nil {
		return nil
	}
	if obj.Kind() == "parenthesized_expression" {
		return objectPropertyValue(unwrapParens(obj), name, source)
	}
	if obj.Kind() != "object" {
		return nil
	}
	for i := uint(0); i < uint(obj.ChildCount()); i++ {
		member := obj.Child(i)
		if member.Kind() != "pair" {
			continue
		}
		key := member.ChildByFieldName("key")
		if key == nil || key.Kind() == "computed_property_name" {
			continue
		}
		if propertyName(key, source) == name {
			return member.ChildByFieldName("value")
		}
	}
	return nil
}
