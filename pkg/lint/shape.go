package lint

// Sentinel path segments for accesses whose key cannot be statically
// determined, and the wildcard key for object maps declared inside a
// shape. These never collide with real prop names.
const (
	computedSentinel = "__COMPUTED_PROP__"
	handlersSentinel = "__HANDLERS_PROP__"
	anyKey           = "__ANY_KEY__"
)

func isSentinel(seg string) bool {
	return seg == computedSentinel || seg == handlersSentinel
}

// ShapeKind tags the Shape variants.
type ShapeKind uint8

const (
	// ShapeLeaf is fully satisfied; no further structural checking.
	ShapeLeaf ShapeKind = iota
	// ShapeObject is a nested object with named children.
	ShapeObject
	// ShapeObjectOf satisfies every key via a single wildcard shape
	// (arrayOf/objectOf declarations, array type annotations).
	ShapeObjectOf
	// ShapeUnion is satisfied if any branch covers the remaining path.
	ShapeUnion
	// ShapeInstance is an opaque external type; always satisfied.
	ShapeInstance
)

// Shape is the recursive structural model of a declared prop's accepted
// value space.
type Shape struct {
	Kind     ShapeKind
	Children map[string]*Shape // ShapeObject; may contain the anyKey wildcard
	Elem     *Shape            // ShapeObjectOf
	Branches []*Shape          // ShapeUnion
}

func leaf() *Shape                       { return &Shape{Kind: ShapeLeaf} }
func instance() *Shape                   { return &Shape{Kind: ShapeInstance} }
func objectOf(elem *Shape) *Shape        { return &Shape{Kind: ShapeObjectOf, Elem: elem} }
func shapeOf(ch map[string]*Shape) *Shape {
	return &Shape{Kind: ShapeObject, Children: ch}
}

// acceptsAnyPath reports whether any child path through the shape is
// satisfied without inspection.
func (s *Shape) acceptsAnyPath() bool {
	if s == nil {
		return true
	}
	switch s.Kind {
	case ShapeLeaf, ShapeInstance:
		return true
	case ShapeObjectOf:
		return s.Elem.acceptsAnyPath()
	default:
		return false
	}
}

// unionOf applies the union collapse rule: a union with no complex
// branch, or with a complex branch that accepts everything, degenerates
// to a leaf.
func unionOf(branches []*Shape) *Shape {
	complexCount := 0
	for _, b := range branches {
		if b.Kind == ShapeLeaf {
			continue
		}
		complexCount++
		if b.acceptsAnyPath() {
			return leaf()
		}
	}
	if complexCount == 0 {
		return leaf()
	}
	return &Shape{Kind: ShapeUnion, Branches: branches}
}

// covers walks the remaining access path (the first segment has already
// been consumed by the top-level name lookup) against the shape.
//
// Rules: a terminated path is covered; leaves and instances cover any
// suffix; unions are permissive at their own boundary and otherwise
// satisfied by any branch; object maps consume a segment into the
// wildcard shape; nested shapes recurse by key, honoring the anyKey
// wildcard, and treat sentinel segments as always covered.
func (s *Shape) covers(path []string) bool {
	if s == nil {
		return false
	}
	if len(path) == 0 {
		return true
	}
	switch s.Kind {
	case ShapeLeaf, ShapeInstance:
		return true
	case ShapeObjectOf:
		return s.Elem.covers(path[1:])
	case ShapeUnion:
		for _, b := range s.Branches {
			if b.covers(path) {
				return true
			}
		}
		return false
	case ShapeObject:
		seg := path[0]
		if isSentinel(seg) {
			return true
		}
		if child, ok := s.Children[seg]; ok {
			return child.covers(path[1:])
		}
		if wildcard, ok := s.Children[anyKey]; ok {
			return wildcard.covers(path[1:])
		}
		return false
	}
	return false
}
