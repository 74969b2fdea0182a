package richdoc

import "fmt"

// getSelectedContent is the default EventGetSelectedContent behavior. It
// returns a fragment holding a deep copy of the selected content without
// touching the document: fully covered nodes are cloned whole, boundary text
// is clipped, and elements cut by a range boundary are cloned shallow with
// only their covered part inside.
func getSelectedContent(m *Model, sel *Selection) (*DocumentFragment, error) {
	if sel == nil {
		sel = m.doc.Selection()
	}
	r, ok := sel.FirstRange()
	if !ok || r.IsCollapsed() {
		return NewDocumentFragment(), nil
	}

	depth := commonPathLength(r.Start.Path(), r.End.Path())
	if depth >= len(r.Start.Path()) {
		depth = len(r.Start.Path()) - 1
	}
	if depth >= len(r.End.Path()) {
		depth = len(r.End.Path()) - 1
	}
	ancestor, err := resolveContainer(r.Start.Root(), r.Start.Path()[:depth])
	if err != nil {
		return nil, err
	}
	nodes, err := cloneTreeRange(ancestor, r.Start.Path()[depth:], r.End.Path()[depth:])
	if err != nil {
		return nil, err
	}
	return NewDocumentFragment(nodes...), nil
}

// cloneTreeRange copies the content of c between two boundary paths relative
// to c. An empty startPath means "from the beginning of c", an empty endPath
// "to the end of c".
func cloneTreeRange(c Container, startPath, endPath []int) ([]Node, error) {
	from := 0
	if len(startPath) > 0 {
		from = startPath[0]
	}
	to := c.MaxOffset()
	if len(endPath) > 0 {
		to = endPath[0]
	}

	var out []Node

	// Element cut by the start boundary: clone its covered tail.
	if len(startPath) > 1 {
		node, _, _ := c.childAtOffset(from)
		el, ok := node.(Container)
		if !ok {
			return nil, fmt.Errorf("boundary path descends into a non-element at offset %d", from)
		}
		var subEnd []int
		if len(endPath) > 1 && endPath[0] == from {
			subEnd = endPath[1:] // both boundaries inside the same child
		}
		inner, err := cloneTreeRange(el, startPath[1:], subEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, cloneContainerWith(node, inner))
		if subEnd != nil {
			return out, nil
		}
		from++
	}

	offset := from
	for offset < to {
		node, _, inner := c.childAtOffset(offset)
		if node == nil {
			break
		}
		if txt, isText := node.(*Text); isText {
			textStart := offset - inner
			clipFrom := offset - textStart
			clipTo := txt.OffsetSize()
			if to-textStart < clipTo {
				clipTo = to - textStart
			}
			runes := []rune(txt.Data())
			out = append(out, NewText(string(runes[clipFrom:clipTo]), txt.cloneAttrs()))
			offset = textStart + clipTo
			continue
		}
		out = append(out, node.Clone(true))
		offset += node.OffsetSize()
	}

	// Element cut by the end boundary: clone its covered head.
	if len(endPath) > 1 && !(len(startPath) > 1 && startPath[0] == endPath[0]) {
		node, _, _ := c.childAtOffset(to)
		el, ok := node.(Container)
		if !ok {
			return nil, fmt.Errorf("boundary path descends into a non-element at offset %d", to)
		}
		inner, err := cloneTreeRange(el, nil, endPath[1:])
		if err != nil {
			return nil, err
		}
		out = append(out, cloneContainerWith(node, inner))
	}
	return out, nil
}

// cloneContainerWith clones node without children and fills it with the
// given content.
func cloneContainerWith(node Node, content []Node) Node {
	clone := node.Clone(false)
	if c, ok := clone.(Container); ok {
		c.insertAt(0, content)
	}
	return clone
}
