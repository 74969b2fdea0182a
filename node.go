package richdoc

import "unicode/utf8"

// Node is a member of the model tree. Offsets inside a parent are collapsed:
// an Element child occupies one offset, a Text child occupies one offset per
// character, so a position "inside" a text node is just an offset into its
// parent.
type Node interface {
	// Parent returns the node that owns this node, or nil when detached.
	Parent() Node
	// Root returns the topmost ancestor (the node itself when detached).
	Root() Node
	// OffsetSize is the number of offsets the node occupies in its parent.
	OffsetSize() int
	// StartOffset is the offset at which the node starts in its parent, or
	// -1 when detached.
	StartOffset() int
	// Path returns the offsets walked from the root to reach this node.
	Path() []int
	// Attr returns the attribute stored under key.
	Attr(key string) (any, bool)
	// Clone returns a detached copy; deep also copies children.
	Clone(deep bool) Node

	setParent(p Node)
}

// Container is a Node that owns an ordered child sequence: Element,
// RootElement and DocumentFragment.
type Container interface {
	Node
	ChildCount() int
	MaxOffset() int
	Child(index int) Node
	Children() []Node

	childAtOffset(offset int) (node Node, index int, inner int)
	insertAt(offset int, nodes []Node)
	removeRange(offset, howMany int) []Node
	splitTextAt(offset int)
}

// nodeAttrs is the attribute map shared by Text and Element.
type nodeAttrs struct {
	attrs map[string]any
}

func (a *nodeAttrs) Attr(key string) (any, bool) {
	v, ok := a.attrs[key]
	return v, ok
}

// AttributeKeys returns the attribute keys in unspecified order.
func (a *nodeAttrs) AttributeKeys() []string {
	keys := make([]string, 0, len(a.attrs))
	for k := range a.attrs {
		keys = append(keys, k)
	}
	return keys
}

func (a *nodeAttrs) setAttr(key string, value any) {
	if a.attrs == nil {
		a.attrs = make(map[string]any)
	}
	a.attrs[key] = value
}

func (a *nodeAttrs) removeAttr(key string) {
	delete(a.attrs, key)
}

func (a *nodeAttrs) cloneAttrs() map[string]any {
	if a.attrs == nil {
		return nil
	}
	out := make(map[string]any, len(a.attrs))
	for k, v := range a.attrs {
		out[k] = v
	}
	return out
}

func nodeRoot(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

func nodeStartOffset(n Node) int {
	parent, ok := n.Parent().(Container)
	if !ok || parent == nil {
		return -1
	}
	offset := 0
	for _, child := range parent.Children() {
		if child == n {
			return offset
		}
		offset += child.OffsetSize()
	}
	return -1
}

func nodePath(n Node) []int {
	var path []int
	for n.Parent() != nil {
		path = append([]int{n.StartOffset()}, path...)
		n = n.Parent()
	}
	return path
}

func nodesOffsetSize(nodes []Node) int {
	size := 0
	for _, n := range nodes {
		size += n.OffsetSize()
	}
	return size
}

// detach removes n from its parent, if any.
func detach(n Node) {
	parent, ok := n.Parent().(Container)
	if !ok || parent == nil {
		return
	}
	parent.removeRange(n.StartOffset(), n.OffsetSize())
}

// cloneNodes deep-clones a node list.
func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone(true)
	}
	return out
}

// Text is character data with attributes.
type Text struct {
	nodeAttrs
	data   string
	parent Node
}

// NewText creates a detached text node.
func NewText(data string, attrs map[string]any) *Text {
	t := &Text{data: data}
	for k, v := range attrs {
		t.setAttr(k, v)
	}
	return t
}

func (t *Text) Data() string     { return t.data }
func (t *Text) Parent() Node     { return t.parent }
func (t *Text) Root() Node       { return nodeRoot(t) }
func (t *Text) OffsetSize() int  { return utf8.RuneCountInString(t.data) }
func (t *Text) StartOffset() int { return nodeStartOffset(t) }
func (t *Text) Path() []int      { return nodePath(t) }
func (t *Text) setParent(p Node) { t.parent = p }

func (t *Text) Clone(_ bool) Node {
	return &Text{nodeAttrs: nodeAttrs{attrs: t.cloneAttrs()}, data: t.data}
}

// splitAt splits the text data at a character offset into two strings.
func splitTextData(s string, at int) (string, string) {
	runes := []rune(s)
	return string(runes[:at]), string(runes[at:])
}

// childNodes is the ordered child storage shared by Element and
// DocumentFragment. self points at the owning node so children's parent
// references carry the concrete owner type.
type childNodes struct {
	self Node
	list []Node
}

func (c *childNodes) ChildCount() int  { return len(c.list) }
func (c *childNodes) Children() []Node { return append([]Node(nil), c.list...) }

func (c *childNodes) Child(index int) Node {
	if index < 0 || index >= len(c.list) {
		return nil
	}
	return c.list[index]
}

func (c *childNodes) MaxOffset() int {
	return nodesOffsetSize(c.list)
}

// childAtOffset locates the child containing the given offset. inner is the
// offset inside that child; a non-zero inner can only land in a Text node.
// When offset equals MaxOffset the returned node is nil and index is the
// child count.
func (c *childNodes) childAtOffset(offset int) (Node, int, int) {
	at := 0
	for i, child := range c.list {
		size := child.OffsetSize()
		if offset < at+size {
			return child, i, offset - at
		}
		at += size
	}
	return nil, len(c.list), 0
}

// splitTextAt guarantees a node boundary at the given offset by splitting the
// text node covering it, if any. The split is offset-neutral: no position in
// the tree changes meaning.
func (c *childNodes) splitTextAt(offset int) {
	node, index, inner := c.childAtOffset(offset)
	if inner == 0 {
		return
	}
	text := node.(*Text)
	left, right := splitTextData(text.data, inner)
	first := &Text{nodeAttrs: nodeAttrs{attrs: text.cloneAttrs()}, data: left, parent: c.self}
	second := &Text{nodeAttrs: nodeAttrs{attrs: text.cloneAttrs()}, data: right, parent: c.self}
	text.parent = nil
	c.list = append(c.list[:index:index], append([]Node{first, second}, c.list[index+1:]...)...)
}

// insertAt splices nodes in at the given offset, re-parenting each. A node
// still owned elsewhere is detached first: ownership is exclusive.
func (c *childNodes) insertAt(offset int, nodes []Node) {
	c.splitTextAt(offset)
	_, index, _ := c.childAtOffset(offset)
	for _, n := range nodes {
		detach(n)
		n.setParent(c.self)
	}
	c.list = append(c.list[:index:index], append(append([]Node(nil), nodes...), c.list[index:]...)...)
}

// removeRange detaches howMany offsets of content starting at offset and
// returns the removed nodes in document order.
func (c *childNodes) removeRange(offset, howMany int) []Node {
	if howMany == 0 {
		return nil
	}
	c.splitTextAt(offset)
	c.splitTextAt(offset + howMany)
	_, start, _ := c.childAtOffset(offset)
	end := start
	taken := 0
	for end < len(c.list) && taken < howMany {
		taken += c.list[end].OffsetSize()
		end++
	}
	removed := append([]Node(nil), c.list[start:end]...)
	for _, n := range removed {
		n.setParent(nil)
	}
	c.list = append(c.list[:start:start], c.list[end:]...)
	return removed
}

// Element is a named node owning attributes and an ordered child sequence.
type Element struct {
	nodeAttrs
	childNodes
	name   string
	parent Node
}

// NewElement creates a detached element with the given children.
func NewElement(name string, attrs map[string]any, children ...Node) *Element {
	e := &Element{name: name}
	e.childNodes.self = e
	for k, v := range attrs {
		e.setAttr(k, v)
	}
	if len(children) > 0 {
		e.insertAt(0, children)
	}
	return e
}

func (e *Element) Name() string     { return e.name }
func (e *Element) Parent() Node     { return e.parent }
func (e *Element) Root() Node       { return nodeRoot(e.childNodes.self) }
func (e *Element) OffsetSize() int  { return 1 }
func (e *Element) StartOffset() int { return nodeStartOffset(e.childNodes.self) }
func (e *Element) Path() []int      { return nodePath(e.childNodes.self) }
func (e *Element) setParent(p Node) { e.parent = p }

func (e *Element) Clone(deep bool) Node {
	clone := NewElement(e.name, e.cloneAttrs())
	if deep {
		clone.insertAt(0, cloneNodes(e.list))
	}
	return clone
}

// IsEmpty reports whether the element has no children.
func (e *Element) IsEmpty() bool { return len(e.list) == 0 }

// RootElement is an Element owned directly by a Document.
type RootElement struct {
	Element
	doc      *Document
	rootName string
}

func newRootElement(doc *Document, name, rootName string) *RootElement {
	r := &RootElement{doc: doc, rootName: rootName}
	r.Element.name = name
	r.Element.childNodes.self = r
	return r
}

func (r *RootElement) Document() *Document { return r.doc }
func (r *RootElement) RootName() string    { return r.rootName }
func (r *RootElement) Root() Node          { return r }

// DocumentFragment is a detached, parentless node sequence used to carry
// content in and out of the tree.
type DocumentFragment struct {
	childNodes
}

// NewDocumentFragment creates a fragment owning the given children.
func NewDocumentFragment(children ...Node) *DocumentFragment {
	f := &DocumentFragment{}
	f.childNodes.self = f
	if len(children) > 0 {
		f.insertAt(0, children)
	}
	return f
}

func (f *DocumentFragment) Parent() Node          { return nil }
func (f *DocumentFragment) Root() Node            { return f }
func (f *DocumentFragment) OffsetSize() int       { return 0 }
func (f *DocumentFragment) StartOffset() int      { return -1 }
func (f *DocumentFragment) Path() []int           { return nil }
func (f *DocumentFragment) Attr(string) (any, bool) { return nil, false }
func (f *DocumentFragment) setParent(Node)        {}

func (f *DocumentFragment) Clone(deep bool) Node {
	clone := NewDocumentFragment()
	if deep {
		clone.insertAt(0, cloneNodes(f.list))
	}
	return clone
}

// docFor resolves the owning document of a root node, if it is a document
// root.
func docFor(root Node) *Document {
	if r, ok := root.(*RootElement); ok {
		return r.doc
	}
	return nil
}
