package lint

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/proplint/pkg/astwalk"
)

// Confidence is the ordinal certainty that a node is a component.
type Confidence uint8

const (
	// Banned marks a node that can never be a component. Sticky: once
	// banned, later signals cannot revive it.
	Banned Confidence = 0
	// Maybe marks an ambiguous candidate.
	Maybe Confidence = 1
	// Confirmed marks a detected component.
	Confirmed Confidence = 2
)

// mergeConfidence takes the max of two signals, except that Banned
// absorbs everything.
func mergeConfidence(a, b Confidence) Confidence {
	if a == Banned || b == Banned {
		return Banned
	}
	if a > b {
		return a
	}
	return b
}

// Role tags which factory sub-block a usage site sits in.
type Role uint8

const (
	RoleNone Role = iota
	RoleComputed
	RoleHandlers
)

// UsedProp records one observed prop access. Duplicates are allowed;
// each produces its own diagnostic at its own site.
type UsedProp struct {
	// Name is the top-level prop name (first path segment).
	Name string
	// Path is the full dotted access path; sentinel segments stand in
	// for dynamically keyed accesses.
	Path []string
	// Site is the node the access was observed at.
	Site *ts.Node
	// Role is the sub-block the access sits in.
	Role Role
	// declarationSite marks entries observed inside a declaration value;
	// these are filtered when folding usage upward.
	declarationSite bool
}

// Component is the accumulated record for one candidate node.
type Component struct {
	Node       *ts.Node
	ID         astwalk.NodeID
	Confidence Confidence

	UsedProps []UsedProp
	// DeclaredTypes maps top-level prop names to shapes. nil means no
	// declaration was seen; an empty non-nil map means an empty one was.
	DeclaredTypes map[string]*Shape
	// IgnorePropsValidation suppresses all reporting for this component;
	// set when a declaration could not be statically resolved.
	IgnorePropsValidation bool
	// ComputedProps and HandlersProps hold the key names declared in the
	// factory component's computed / handlers sub-blocks.
	ComputedProps map[string]bool
	HandlersProps map[string]bool
}

// declare records a top-level prop shape, creating the map on first use
// so that "declared nothing" stays distinguishable from "no declaration".
func (c *Component) declare(name string, s *Shape) {
	if c.DeclaredTypes == nil {
		c.DeclaredTypes = make(map[string]*Shape)
	}
	c.DeclaredTypes[name] = s
}

// Registry is the catalogue of component candidates, keyed by node span.
type Registry struct {
	items map[astwalk.NodeID]*Component
}

func newRegistry() *Registry {
	return &Registry{items: make(map[astwalk.NodeID]*Component)}
}

// Add creates or merges a record for node. The first call creates it at
// the given confidence; later calls merge with the sticky-zero/max rule.
// Always returns the record.
func (r *Registry) Add(node *ts.Node, conf Confidence) *Component {
	id := astwalk.ID(node)
	if c, ok := r.items[id]; ok {
		c.Confidence = mergeConfidence(c.Confidence, conf)
		return c
	}
	c := &Component{
		Node:          node,
		ID:            id,
		Confidence:    conf,
		ComputedProps: make(map[string]bool),
		HandlersProps: make(map[string]bool),
	}
	r.items[id] = c
	return c
}

// Get returns the record for node, or nil.
func (r *Registry) Get(node *ts.Node) *Component {
	return r.items[astwalk.ID(node)]
}

// Set walks up the parent chain from node until it finds a node with an
// existing record and applies patch to it. Reaching the root without a
// record is a no-op. This lets callers attribute metadata discovered on
// a descendant to its owning component without knowing the owner.
func (r *Registry) Set(node *ts.Node, patch func(*Component)) {
	for n := node; n != nil; n = n.Parent() {
		if c := r.Get(n); c != nil {
			patch(c)
			return
		}
	}
}

// Len returns the number of confirmed components.
func (r *Registry) Len() int {
	n := 0
	for _, c := range r.items {
		if c.Confidence == Confirmed {
			n++
		}
	}
	return n
}

// List returns the finalized confirmed components. Used props
// accumulated on ambiguous or banned descendants are folded into their
// nearest confirmed ancestor, dropping entries whose site was itself a
// declaration key.
func (r *Registry) List() map[astwalk.NodeID]*Component {
	out := make(map[astwalk.NodeID]*Component)
	for id, c := range r.items {
		if c.Confidence == Confirmed {
			out[id] = c
		}
	}

	for _, c := range r.items {
		if c.Confidence == Confirmed || len(c.UsedProps) == 0 {
			continue
		}
		owner := r.nearestConfirmedAncestor(c.Node)
		if owner == nil {
			continue
		}
		for _, up := range c.UsedProps {
			if up.declarationSite {
				continue
			}
			owner.UsedProps = append(owner.UsedProps, up)
		}
	}
	return out
}

// nearestConfirmedAncestor finds the closest enclosing confirmed record.
func (r *Registry) nearestConfirmedAncestor(node *ts.Node) *Component {
	for n := node.Parent(); n != nil; n = n.Parent() {
		if c := r.Get(n); c != nil && c.Confidence == Confirmed {
			return c
		}
	}
	return nil
}

// EnclosingConfirmed returns the chain of confirmed components whose
// nodes enclose node (nearest first), used for nested-scope coverage.
func (r *Registry) EnclosingConfirmed(node *ts.Node) []*Component {
	var chain []*Component
	for n := node.Parent(); n != nil; n = n.Parent() {
		if c := r.Get(n); c != nil && c.Confidence == Confirmed {
			chain = append(chain, c)
		}
	}
	return chain
}
