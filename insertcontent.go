package richdoc

// insertContent is the default EventInsertContent behavior. A non-collapsed
// selection is deleted first, then the content (a single node or a document
// fragment's children) is inserted at the collapse point. The selection ends
// up collapsed after the inserted content, and the returned range spans it.
func insertContent(m *Model, w *Writer, content Node, sel *Selection) (Range, error) {
	if sel == nil {
		sel = m.doc.Selection()
	}
	if !sel.IsCollapsed() {
		if err := deleteContent(m, w, sel, DeleteContentOptions{}); err != nil {
			return Range{}, err
		}
	}
	target, ok := sel.FirstRange()
	if !ok {
		return Range{}, &UsageError{Reason: "insertion target selection is empty"}
	}
	pos := target.Start

	var nodes []Node
	if frag, isFrag := content.(*DocumentFragment); isFrag {
		nodes = frag.Children()
	} else {
		nodes = []Node{content}
	}
	if len(nodes) == 0 {
		return CollapsedRange(pos), nil
	}

	if err := w.InsertNodes(nodes, pos); err != nil {
		return Range{}, err
	}
	end := pos.ShiftedBy(nodesOffsetSize(nodes))
	sel.Collapse(end)
	return Range{Start: pos, End: end}, nil
}
