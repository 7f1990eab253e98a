package lint

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
)

// objectBuiltins are member names inherited from the base object
// prototype; accessing them never counts as prop usage.
var objectBuiltins = map[string]bool{
	"constructor":          true,
	"hasOwnProperty":       true,
	"isPrototypeOf":        true,
	"propertyIsEnumerable": true,
	"toLocaleString":       true,
	"toString":             true,
	"valueOf":              true,
	"__proto__":            true,
	"__defineGetter__":     true,
	"__defineSetter__":     true,
	"__lookupGetter__":     true,
	"__lookupSetter__":     true,
}

// isPropsReceiver reports whether expr evaluates to the props object:
// `this.props` in a class-style component, or a bare `props` identifier
// in function-style code.
func (ru *run) isPropsReceiver(n *ts.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "identifier":
		return astwalk.Text(n, ru.source) == "props"
	case "member_expression":
		obj := n.ChildByFieldName("object")
		return obj != nil && obj.Kind() == "this" &&
			astwalk.Text(n.ChildByFieldName("property"), ru.source) == "props"
	}
	return false
}

// markPropTypesAsUsed dispatches a usage site to its extractor. An
// unhandled node kind here is a programming error in the classifier, not
// bad input, so it fails loudly instead of degrading.
func (ru *run) markPropTypesAsUsed(n *ts.Node, role Role) {
	switch n.Kind() {
	case "member_expression", "subscript_expression":
		ru.markMemberChain(n, role)
	case "object_pattern":
		ru.markPatternKeys(n, n, role)
	default:
		panic(fmt.Sprintf("markPropTypesAsUsed: unhandled node kind %q", n.Kind()))
	}
}

// handleMemberUsage fires on every member/subscript node whose object is
// the props receiver, then extends the access chain upward as far as it
// stays statically resolvable.
func (ru *run) handleMemberUsage(n *ts.Node) {
	if !ru.isPropsReceiver(n.ChildByFieldName("object")) {
		return
	}
	ru.markPropTypesAsUsed(n, ru.subBlockRole(n))
}

// markMemberChain records one usage entry for the longest resolvable
// access chain starting at n, whose object is already known to be the
// props receiver.
func (ru *run) markMemberChain(n *ts.Node, role Role) {
	var segs []string
	site := n
	cur := n
	for cur != nil {
		seg := ru.accessSegment(cur, role)
		if seg == "" || objectBuiltins[seg] {
			break
		}
		segs = append(segs, seg)
		site = cur
		p := cur.Parent()
		if p == nil {
			break
		}
		k := p.Kind()
		if (k != "member_expression" && k != "subscript_expression") || !childIsField(p, "object", cur) {
			break
		}
		cur = p
	}
	if len(segs) == 0 {
		return
	}
	ru.recordUsage(site, segs, role)
}

// accessSegment returns the path segment contributed by one member or
// subscript node: the property name, the unquoted string index, or a
// role sentinel for dynamic indexes. "" means not an access node.
func (ru *run) accessSegment(n *ts.Node, role Role) string {
	switch n.Kind() {
	case "member_expression":
		prop := n.ChildByFieldName("property")
		if prop == nil {
			return ""
		}
		return astwalk.Text(prop, ru.source)
	case "subscript_expression":
		idx := n.ChildByFieldName("index")
		if idx == nil {
			return ""
		}
		if idx.Kind() == "string" {
			return propertyName(idx, ru.source)
		}
		if role == RoleHandlers {
			return handlersSentinel
		}
		return computedSentinel
	}
	return ""
}

// markPatternKeys records one usage entry per destructured key of a
// props object pattern. Rest elements trigger a bounded scan of the
// enclosing function body for accesses through the rest binding.
func (ru *run) markPatternKeys(pattern, attach *ts.Node, role Role) {
	for i := uint(0); i < uint(pattern.ChildCount()); i++ {
		el := pattern.Child(i)
		switch el.Kind() {
		case "shorthand_property_identifier_pattern":
			name := astwalk.Text(el, ru.source)
			if ru.exemptPatternKey(name, role) {
				continue
			}
			ru.recordUsageAt(attach, el, []string{name}, role)
		case "pair_pattern":
			key := el.ChildByFieldName("key")
			if key == nil || key.Kind() == "computed_property_name" {
				continue
			}
			name := propertyName(key, ru.source)
			if ru.exemptPatternKey(name, role) {
				continue
			}
			ru.recordUsageAt(attach, el, []string{name}, role)
		case "object_assignment_pattern":
			left := el.ChildByFieldName("left")
			if left == nil {
				continue
			}
			name := astwalk.Text(left, ru.source)
			if left.Kind() == "pair_pattern" {
				name = propertyName(left.ChildByFieldName("key"), ru.source)
			}
			if ru.exemptPatternKey(name, role) {
				continue
			}
			ru.recordUsageAt(attach, el, []string{name}, role)
		case "rest_pattern":
			ru.markRestUsage(el, attach, role)
		}
	}
}

// exemptPatternKey filters destructured keys that are injected by the
// runtime rather than passed by callers: computed functions receive a
// styler binding alongside the props.
func (ru *run) exemptPatternKey(name string, role Role) bool {
	return role == RoleComputed && name == "styler"
}

// markRestUsage resolves a rest element's binding and scans the
// enclosing function body for member accesses through it, recording each
// as a usage of the accessed prop.
func (ru *run) markRestUsage(rest, attach *ts.Node, role Role) {
	ident := astwalk.FindChild(rest, "identifier")
	if ident == nil {
		return
	}
	restName := astwalk.Text(ident, ru.source)

	fn := ru.enclosingFunctionLike(rest)
	if fn == nil {
		return
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return
	}
	astwalk.Scan(body, 32, func(n *ts.Node) bool {
		k := n.Kind()
		return k == "member_expression" || k == "subscript_expression"
	}, func(n *ts.Node) {
		obj := n.ChildByFieldName("object")
		if obj == nil || obj.Kind() != "identifier" || astwalk.Text(obj, ru.source) != restName {
			return
		}
		ru.markRestChain(n, attach, role)
	})
}

// markRestChain records the chain starting at a member access through a
// rest binding; the rest binding itself contributes no segment.
func (ru *run) markRestChain(n, attach *ts.Node, role Role) {
	var segs []string
	site := n
	cur := n
	for cur != nil {
		seg := ru.accessSegment(cur, role)
		if seg == "" || objectBuiltins[seg] {
			break
		}
		segs = append(segs, seg)
		site = cur
		p := cur.Parent()
		if p == nil {
			break
		}
		k := p.Kind()
		if (k != "member_expression" && k != "subscript_expression") || !childIsField(p, "object", cur) {
			break
		}
		cur = p
	}
	if len(segs) == 0 {
		return
	}
	ru.recordUsageAt(attach, site, segs, role)
}

// recordUsage attributes a usage entry to the nearest enclosing
// registered candidate of the site itself.
func (ru *run) recordUsage(site *ts.Node, segs []string, role Role) {
	ru.recordUsageAt(site, site, segs, role)
}

// recordUsageAt attributes a usage entry found at site to the nearest
// enclosing registered candidate of attach. Entries observed with no
// candidate anywhere up the chain are dropped.
func (ru *run) recordUsageAt(attach, site *ts.Node, segs []string, role Role) {
	entry := UsedProp{
		Name:            segs[0],
		Path:            segs,
		Site:            site,
		Role:            role,
		declarationSite: ru.insideDeclarationValue(site),
	}
	ru.registry.Set(attach, func(c *Component) {
		c.UsedProps = append(c.UsedProps, entry)
	})
}

// insideDeclarationValue reports whether a node sits inside a propTypes
// declaration value; such accesses are bookkeeping, not rendering usage.
func (ru *run) insideDeclarationValue(n *ts.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "pair":
			if astwalk.Text(p.ChildByFieldName("key"), ru.source) == "propTypes" {
				return true
			}
		case "field_definition", "public_field_definition":
			if astwalk.Text(p.ChildByFieldName("property"), ru.source) == "propTypes" {
				return true
			}
		case "statement_block", "program":
			return false
		}
	}
	return false
}

// childIsField reports whether child occupies the named field of parent,
// compared by span identity since the bindings return fresh node values.
func childIsField(parent *ts.Node, field string, child *ts.Node) bool {
	f := parent.ChildByFieldName(field)
	return f != nil && astwalk.ID(f) == astwalk.ID(child)
}
