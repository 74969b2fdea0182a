package richdoc

// deleteContent is the default EventDeleteContent behavior. It removes the
// selected content and collapses the selection to the removal point. With
// Merge set, a selection spanning two block elements additionally pulls the
// end block's remaining children into the start block and drops the emptied
// end block.
func deleteContent(m *Model, w *Writer, sel *Selection, opts DeleteContentOptions) error {
	if sel == nil || sel.IsCollapsed() {
		return nil
	}
	selRange, ok := sel.FirstRange()
	if !ok {
		return nil
	}

	startParent, err := selRange.Start.ParentElement()
	if err != nil {
		return err
	}
	endParent, err := selRange.End.ParentElement()
	if err != nil {
		return err
	}

	if err := w.Remove(selRange); err != nil {
		return err
	}
	// The start position stays valid: removal only covered content after it.
	sel.Collapse(selRange.Start)

	if !opts.Merge || startParent == endParent {
		return nil
	}
	startBlock, ok1 := startParent.(*Element)
	endBlock, ok2 := endParent.(*Element)
	if !ok1 || !ok2 {
		return nil // one boundary sits directly in a root, nothing to merge
	}

	if endBlock.MaxOffset() > 0 {
		content := RangeIn(endBlock, 0, endBlock.MaxOffset())
		target := PositionAt(startBlock, startBlock.MaxOffset())
		if err := w.Move(content, target); err != nil {
			return err
		}
	}
	return w.Remove(RangeOn(endBlock))
}
