package richdoc

// LivePosition is a position that re-anchors itself as operations are applied
// to the owning document. It must be detached once no longer needed, or its
// change listener leaks.
type LivePosition struct {
	pos Position
	doc *Document

	// insertBefore controls the edge policy: when content is inserted
	// exactly at the position, a true value moves the position after the new
	// content, a false value keeps it anchored before it.
	insertBefore bool

	listener int
}

// NewLivePosition anchors a live position at pos, which must live in a
// document root.
func NewLivePosition(pos Position, insertBefore bool) (*LivePosition, error) {
	doc := docFor(pos.Root())
	if doc == nil {
		return nil, &UsageError{Reason: "live position must be anchored in a document root"}
	}
	lp := &LivePosition{pos: pos, doc: doc, insertBefore: insertBefore}
	lp.listener = doc.On(EventChange, lp.onChange)
	return lp, nil
}

// Position returns the current coordinates.
func (lp *LivePosition) Position() Position { return lp.pos }

// Detach releases the document subscription. The last coordinates stay
// readable but no longer update.
func (lp *LivePosition) Detach() {
	lp.doc.Off(EventChange, lp.listener)
}

func (lp *LivePosition) onChange(_ *EventInfo, data any) {
	ce, ok := data.(ChangeEvent)
	if !ok {
		return
	}
	switch op := ce.Operation.(type) {
	case *InsertOperation:
		lp.pos = lp.pos.TransformedByInsertion(op.Position, op.howMany(), lp.insertBefore)
	case *MoveOperation:
		lp.pos = lp.pos.TransformedByMove(op.Source, op.Target, op.HowMany, lp.insertBefore)
	}
}
