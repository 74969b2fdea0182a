package richdoc

// modifySelection is the default EventModifySelection behavior: it moves the
// selection focus by one offset (one character, or one whole element) in the
// requested direction, leaving the anchor in place. At a parent boundary the
// selection is left unchanged.
func modifySelection(m *Model, sel *Selection, opts ModifySelectionOptions) error {
	if sel == nil {
		sel = m.doc.Selection()
	}
	anchor, ok := sel.Anchor()
	if !ok {
		return &UsageError{Reason: "cannot modify an empty selection"}
	}
	focus, _ := sel.Focus()

	dir := opts.Direction
	if dir == "" {
		dir = DirectionForward
	}

	var newFocus Position
	switch dir {
	case DirectionBackward:
		if focus.Offset() == 0 {
			return nil
		}
		newFocus = focus.ShiftedBy(-1)
	case DirectionForward:
		parent, err := focus.ParentElement()
		if err != nil {
			return err
		}
		if focus.Offset() >= parent.MaxOffset() {
			return nil
		}
		newFocus = focus.ShiftedBy(1)
	default:
		return &UsageError{Reason: "unknown selection direction " + string(dir)}
	}

	if newFocus.IsBefore(anchor) {
		sel.SetTo(Range{Start: newFocus, End: anchor}, true)
	} else {
		sel.SetTo(Range{Start: anchor, End: newFocus}, false)
	}
	return nil
}
