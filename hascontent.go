package richdoc

// hasContent is the default EventHasContent behavior. Any overlapping text
// counts as content. An element counts unless IgnoreEmptyElements is set, in
// which case only elements holding content somewhere in their subtree count.
func hasContent(r Range, opts HasContentOptions) bool {
	for _, node := range r.overlappingNodes() {
		if nodeHasContent(node, opts) {
			return true
		}
	}
	return false
}

func nodeHasContent(node Node, opts HasContentOptions) bool {
	if txt, ok := node.(*Text); ok {
		return txt.OffsetSize() > 0
	}
	el, ok := node.(Container)
	if !ok {
		return false
	}
	if !opts.IgnoreEmptyElements {
		return true
	}
	for _, child := range el.Children() {
		if nodeHasContent(child, opts) {
			return true
		}
	}
	return false
}
