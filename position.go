package richdoc

import (
	"fmt"
	"strings"
)

// PositionRelation is the result of comparing two positions in document
// order.
type PositionRelation int

const (
	RelationSame PositionRelation = iota
	RelationBefore
	RelationAfter
	RelationDifferentRoots
)

// Position is an immutable coordinate in a tree: a root plus a path of
// offsets walked from it. Every path prefix must resolve to an element; the
// last offset may point between children, inside a text node, or at the end
// of the parent.
type Position struct {
	root Node
	path []int
}

// NewPosition creates a position in root at the given path. The root must be
// a document root or a document fragment.
func NewPosition(root Node, path []int) (Position, error) {
	switch root.(type) {
	case *RootElement, *DocumentFragment:
	default:
		return Position{}, &UsageError{Reason: "position root must be a root element or document fragment"}
	}
	if len(path) == 0 {
		return Position{}, &UsageError{Reason: "position path must not be empty"}
	}
	return Position{root: root, path: append([]int(nil), path...)}, nil
}

// PositionAt creates a position at the given offset inside parent.
func PositionAt(parent Container, offset int) Position {
	return Position{root: parent.Root(), path: append(parent.Path(), offset)}
}

// PositionBefore creates a position immediately before node.
func PositionBefore(n Node) Position {
	parent := n.Parent().(Container)
	return PositionAt(parent, n.StartOffset())
}

// PositionAfter creates a position immediately after node.
func PositionAfter(n Node) Position {
	parent := n.Parent().(Container)
	return PositionAt(parent, n.StartOffset()+n.OffsetSize())
}

func (p Position) Root() Node { return p.root }

// Path returns a copy of the offset path.
func (p Position) Path() []int { return append([]int(nil), p.path...) }

// Offset is the last step of the path.
func (p Position) Offset() int { return p.path[len(p.path)-1] }

// ParentPath is the path without its last step.
func (p Position) ParentPath() []int { return p.path[:len(p.path)-1] }

// ShiftedBy returns a position with the last offset moved by delta, clamped
// at zero.
func (p Position) ShiftedBy(delta int) Position {
	path := p.Path()
	last := path[len(path)-1] + delta
	if last < 0 {
		last = 0
	}
	path[len(path)-1] = last
	return Position{root: p.root, path: path}
}

func (p Position) String() string {
	parts := make([]string, len(p.path))
	for i, o := range p.path {
		parts[i] = fmt.Sprint(o)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// CompareWith yields the document-order relation of p to other. Roots are
// compared by name, so positions from two documents sharing a root name are
// comparable; that is what lets concurrent peers transform against each
// other's operations.
func (p Position) CompareWith(other Position) PositionRelation {
	if !sameRoot(p.root, other.root) {
		return RelationDifferentRoots
	}
	for i := 0; i < len(p.path) && i < len(other.path); i++ {
		switch {
		case p.path[i] < other.path[i]:
			return RelationBefore
		case p.path[i] > other.path[i]:
			return RelationAfter
		}
	}
	switch {
	case len(p.path) < len(other.path):
		return RelationBefore
	case len(p.path) > len(other.path):
		return RelationAfter
	}
	return RelationSame
}

func (p Position) IsEqual(other Position) bool  { return p.CompareWith(other) == RelationSame }
func (p Position) IsBefore(other Position) bool { return p.CompareWith(other) == RelationBefore }
func (p Position) IsAfter(other Position) bool  { return p.CompareWith(other) == RelationAfter }

// ParentElement resolves the container holding this position.
func (p Position) ParentElement() (Container, error) {
	return resolveContainer(p.root, p.ParentPath())
}

// resolveContainer walks a path of offsets from root; every step must land
// exactly on an element boundary.
func resolveContainer(root Node, path []int) (Container, error) {
	current, ok := root.(Container)
	if !ok {
		return nil, &UsageError{Reason: "position root is not a container"}
	}
	for depth, offset := range path {
		node, _, inner := current.childAtOffset(offset)
		if node == nil || inner != 0 {
			return nil, fmt.Errorf("path step %d (offset %d) does not resolve to a node boundary", depth, offset)
		}
		next, ok := node.(Container)
		if !ok {
			return nil, fmt.Errorf("path step %d (offset %d) resolves to a text node, not an element", depth, offset)
		}
		current = next
	}
	return current, nil
}

// NodeAfter returns the node starting exactly at this position, or nil when
// the position is inside a text node or at the end of its parent.
func (p Position) NodeAfter() Node {
	parent, err := p.ParentElement()
	if err != nil {
		return nil
	}
	node, _, inner := parent.childAtOffset(p.Offset())
	if inner != 0 {
		return nil
	}
	return node
}

// NodeBefore returns the node ending exactly at this position, or nil.
func (p Position) NodeBefore() Node {
	if p.Offset() == 0 {
		return nil
	}
	parent, err := p.ParentElement()
	if err != nil {
		return nil
	}
	node, _, inner := parent.childAtOffset(p.Offset() - 1)
	if node == nil {
		return nil
	}
	if inner != node.OffsetSize()-1 {
		return nil
	}
	return node
}

// TextNode returns the text node this position is strictly inside of, if any.
func (p Position) TextNode() *Text {
	parent, err := p.ParentElement()
	if err != nil {
		return nil
	}
	node, _, inner := parent.childAtOffset(p.Offset())
	if inner == 0 {
		return nil
	}
	t, _ := node.(*Text)
	return t
}

// sameParent reports whether both positions point into the same parent.
func (p Position) sameParent(other Position) bool {
	if !sameRoot(p.root, other.root) || len(p.path) != len(other.path) {
		return false
	}
	return pathsEqual(p.ParentPath(), other.ParentPath())
}

// sameRoot reports whether two position roots address the same tree. Document
// roots match by name so positions from different documents are comparable;
// fragments match only by identity.
func sameRoot(a, b Node) bool {
	if a == b {
		return true
	}
	ra, aOK := a.(*RootElement)
	rb, bOK := b.(*RootElement)
	return aOK && bOK && ra.rootName == rb.rootName
}

// rebindTo re-anchors the position at doc's root of the same name. ok is
// false when the position lives in a fragment or in a root doc does not have.
func (p Position) rebindTo(doc *Document) (Position, bool) {
	r, isRoot := p.root.(*RootElement)
	if !isRoot {
		return p, false
	}
	if r.doc == doc {
		return p, true
	}
	local := doc.Root(r.rootName)
	if local == nil {
		return p, false
	}
	return Position{root: local, path: p.Path()}, true
}

// isPrefixParentOf reports whether p's parent path is a strict prefix of
// other's parent path, i.e. the edit at p happened among other's ancestors.
func (p Position) isPrefixParentOf(other Position) bool {
	if !sameRoot(p.root, other.root) {
		return false
	}
	parent := p.ParentPath()
	otherParent := other.ParentPath()
	if len(parent) >= len(otherParent) {
		return false
	}
	return pathsEqual(parent, otherParent[:len(parent)])
}

func pathsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// commonPathLength is the number of equal leading steps of both paths.
func commonPathLength(a, b []int) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return i
}

// TransformedByInsertion returns this position as it looks after howMany
// offsets were inserted at insertPos. A position exactly at the insertion
// point shifts only when insertBefore is set; otherwise it stays anchored
// before the new content.
func (p Position) TransformedByInsertion(insertPos Position, howMany int, insertBefore bool) Position {
	if !sameRoot(p.root, insertPos.root) {
		return p
	}
	transformed := Position{root: p.root, path: p.Path()}
	if insertPos.sameParent(p) {
		if insertPos.Offset() < p.Offset() || (insertPos.Offset() == p.Offset() && insertBefore) {
			transformed.path[len(transformed.path)-1] += howMany
		}
	} else if insertPos.isPrefixParentOf(p) {
		i := len(insertPos.path) - 1
		if insertPos.Offset() <= p.path[i] {
			transformed.path[i] += howMany
		}
	}
	return transformed
}

// TransformedByDeletion returns this position as it looks after howMany
// offsets were removed at deletePos. ok is false when the position was inside
// the removed content and no longer exists in the tree.
func (p Position) TransformedByDeletion(deletePos Position, howMany int) (Position, bool) {
	if !sameRoot(p.root, deletePos.root) {
		return p, true
	}
	transformed := Position{root: p.root, path: p.Path()}
	if deletePos.sameParent(p) {
		if deletePos.Offset() < p.Offset() {
			if deletePos.Offset()+howMany > p.Offset() {
				return p, false
			}
			transformed.path[len(transformed.path)-1] -= howMany
		}
	} else if deletePos.isPrefixParentOf(p) {
		i := len(deletePos.path) - 1
		if deletePos.Offset() <= p.path[i] {
			if deletePos.Offset()+howMany > p.path[i] {
				return p, false
			}
			transformed.path[i] -= howMany
		}
	}
	return transformed, true
}

// TransformedByMove returns this position as it looks after howMany offsets
// were moved from source to target. Positions inside the moved content are
// rebased onto the target; everything else is transformed as a deletion
// followed by an insertion.
func (p Position) TransformedByMove(source, target Position, howMany int, insertBefore bool) Position {
	if howMany == 0 {
		return p
	}
	newTarget, _ := target.TransformedByDeletion(source, howMany)
	transformed, ok := p.TransformedByDeletion(source, howMany)
	if !ok {
		return p.combined(source, newTarget)
	}
	return transformed.TransformedByInsertion(newTarget, howMany, insertBefore)
}

// combined rebases a position from inside the content at source onto the
// same content relocated to target.
func (p Position) combined(source, target Position) Position {
	i := len(source.path) - 1
	path := target.Path()
	path[len(path)-1] += p.path[i] - source.Offset()
	path = append(path, p.path[i+1:]...)
	return Position{root: target.root, path: path}
}
