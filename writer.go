package richdoc

// Writer is the only mutation surface of the model. Every method produces
// version-stamped operations inside the current batch's deltas and applies
// them through the document, so live positions, markers and views observe
// each step. Writers are handed to Change and EnqueueChange callbacks and
// must not outlive them.
type Writer struct {
	model *Model
	batch *Batch
}

func (w *Writer) Model() *Model { return w.model }
func (w *Writer) Batch() *Batch { return w.batch }

func (w *Writer) doc() *Document { return w.model.doc }

// CreateElement creates a detached element. Insert it to make it part of the
// document.
func (w *Writer) CreateElement(name string, attrs map[string]any) *Element {
	return NewElement(name, attrs)
}

// CreateText creates a detached text node.
func (w *Writer) CreateText(data string, attrs map[string]any) *Text {
	return NewText(data, attrs)
}

func (w *Writer) newDelta(name string) *Delta {
	delta := NewDelta(name)
	w.batch.AddDelta(delta)
	return delta
}

// apply stamps op with the current document version, records it in delta and
// applies it.
func (w *Writer) apply(delta *Delta, op Operation) error {
	op.setBase(w.doc().Version())
	delta.AddOperation(op)
	if err := w.doc().ApplyOperation(op); err != nil {
		return err
	}
	w.doc().History().addDelta(delta)
	return nil
}

// Insert inserts a copy of node at pos.
func (w *Writer) Insert(node Node, pos Position) error {
	return w.InsertNodes([]Node{node}, pos)
}

// InsertNodes inserts copies of nodes at pos in one insert delta.
func (w *Writer) InsertNodes(nodes []Node, pos Position) error {
	delta := w.newDelta("insert")
	return w.apply(delta, NewInsertOperation(pos, nodes, 0))
}

// InsertText inserts text with the given attributes at pos.
func (w *Writer) InsertText(data string, attrs map[string]any, pos Position) error {
	return w.Insert(NewText(data, attrs), pos)
}

// Append inserts a copy of node at the end of parent.
func (w *Writer) Append(node Node, parent Container) error {
	return w.Insert(node, PositionAt(parent, parent.MaxOffset()))
}

// AppendText inserts text at the end of parent.
func (w *Writer) AppendText(data string, attrs map[string]any, parent Container) error {
	return w.InsertText(data, attrs, PositionAt(parent, parent.MaxOffset()))
}

// Remove moves the content of r to the graveyard. A non-flat range is
// removed as its minimal flat parts, processed back to front so earlier
// coordinates stay valid.
func (w *Writer) Remove(r Range) error {
	delta := w.newDelta("remove")
	flat := r.MinimalFlatRanges()
	for i := len(flat) - 1; i >= 0; i-- {
		fr := flat[i]
		howMany := fr.End.Offset() - fr.Start.Offset()
		if howMany == 0 {
			continue
		}
		if err := w.apply(delta, NewRemoveOperation(fr.Start, howMany, 0)); err != nil {
			return err
		}
	}
	return nil
}

// Move moves the content of the flat range r to target.
func (w *Writer) Move(r Range, target Position) error {
	if !r.IsFlat() {
		return &UsageError{Reason: "moved range must be flat"}
	}
	delta := w.newDelta("move")
	howMany := r.End.Offset() - r.Start.Offset()
	return w.apply(delta, NewMoveOperation(r.Start, howMany, target, 0))
}

// SetAttribute sets key to value on the content of r, emitting one operation
// per run of nodes currently sharing the same value of key. Runs already
// carrying value are skipped.
func (w *Writer) SetAttribute(key string, value any, r Range) error {
	delta := w.newDelta("attribute")
	for _, fr := range r.MinimalFlatRanges() {
		parent, err := fr.Start.ParentElement()
		if err != nil {
			return err
		}
		offset := fr.Start.Offset()
		for offset < fr.End.Offset() {
			node, _, inner := parent.childAtOffset(offset)
			current, _ := node.Attr(key)
			runStart := offset
			offset += node.OffsetSize() - inner
			// Extend the run across neighbours holding the same value.
			for offset < fr.End.Offset() {
				next, _, _ := parent.childAtOffset(offset)
				nextValue, _ := next.Attr(key)
				if !valuesEqual(nextValue, current) {
					break
				}
				offset += next.OffsetSize()
			}
			if offset > fr.End.Offset() {
				offset = fr.End.Offset()
			}
			if valuesEqual(current, value) {
				continue
			}
			op := NewAttributeOperation(RangeIn(parent, runStart, offset), key, current, value, 0)
			if err := w.apply(delta, op); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveAttribute removes key from the content of r.
func (w *Writer) RemoveAttribute(key string, r Range) error {
	return w.SetAttribute(key, nil, r)
}

// SetAttributeOn sets key to value on a single node.
func (w *Writer) SetAttributeOn(node Node, key string, value any) error {
	return w.SetAttribute(key, value, RangeOn(node))
}

// SetRootAttribute sets key directly on a document root, which no range can
// address.
func (w *Writer) SetRootAttribute(root *RootElement, key string, value any) error {
	old, _ := root.Attr(key)
	if valuesEqual(old, value) {
		return nil
	}
	delta := w.newDelta("rootAttribute")
	return w.apply(delta, NewRootAttributeOperation(root.RootName(), key, old, value, 0))
}

// Rename changes the name of element.
func (w *Writer) Rename(element *Element, newName string) error {
	delta := w.newDelta("rename")
	pos := PositionBefore(element)
	return w.apply(delta, NewRenameOperation(pos, element.Name(), newName, 0))
}

// SetMarker adds or moves a marker. A marker managed using operations is
// updated through a MarkerOperation so the change takes part in undo and
// transformation; otherwise the collection is updated directly.
func (w *Writer) SetMarker(name string, r Range, managedUsingOperations bool) error {
	markers := w.doc().Markers()
	if !managedUsingOperations {
		if markers.set(name, r, false) == nil {
			return &UsageError{Reason: "marker range must be anchored in a document root"}
		}
		return nil
	}
	var oldRange *Range
	if existing := markers.Get(name); existing != nil {
		if current, err := existing.Range(); err == nil {
			old := current
			oldRange = &old
		}
	}
	delta := w.newDelta("marker")
	return w.apply(delta, NewMarkerOperation(name, oldRange, &r, 0))
}

// RemoveMarker removes the named marker, via a MarkerOperation when the
// marker is operation-managed.
func (w *Writer) RemoveMarker(name string) error {
	markers := w.doc().Markers()
	marker := markers.Get(name)
	if marker == nil {
		return &UsageError{Reason: "no marker named " + name}
	}
	managed, err := marker.ManagedUsingOperations()
	if err != nil {
		return err
	}
	if !managed {
		markers.remove(name)
		return nil
	}
	current, err := marker.Range()
	if err != nil {
		return err
	}
	delta := w.newDelta("marker")
	return w.apply(delta, NewMarkerOperation(name, &current, nil, 0))
}
