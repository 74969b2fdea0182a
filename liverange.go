package richdoc

// LiveRange is a range that re-anchors itself as operations are applied to
// the owning document. It must be detached once no longer needed, or its
// change listener leaks.
type LiveRange struct {
	rng      Range
	doc      *Document
	listener int
}

// NewLiveRange anchors a live range at r, which must live in a document root.
func NewLiveRange(r Range) (*LiveRange, error) {
	doc := docFor(r.Start.Root())
	if doc == nil {
		return nil, &UsageError{Reason: "live range must be anchored in a document root"}
	}
	lr := &LiveRange{rng: r, doc: doc}
	lr.listener = doc.On(EventChange, lr.onChange)
	return lr, nil
}

// Range returns the current extent.
func (lr *LiveRange) Range() Range { return lr.rng }

// Detach releases the document subscription.
func (lr *LiveRange) Detach() {
	lr.doc.Off(EventChange, lr.listener)
}

func (lr *LiveRange) onChange(_ *EventInfo, data any) {
	ce, ok := data.(ChangeEvent)
	if !ok {
		return
	}
	switch op := ce.Operation.(type) {
	case *InsertOperation:
		lr.rng = lr.rng.TransformedByInsertion(op.Position, op.howMany(), false)[0]
	case *MoveOperation:
		lr.applyMove(op)
	}
}

// applyMove re-anchors across a move. When the move tears the range into a
// moved fragment and a remainder that are no longer touching, the range keeps
// covering the content that stayed in place rather than silently collapsing
// or spanning unrelated content.
func (lr *LiveRange) applyMove(op *MoveOperation) {
	results := lr.rng.TransformedByMove(op.Source, op.Target, op.HowMany)
	if len(results) == 1 {
		lr.rng = results[0]
		return
	}
	moveRange := RangeFromPositionAndShift(op.Source, op.HowMany)
	insertPos, _ := op.Target.TransformedByDeletion(op.Source, op.HowMany)
	var surviving []Range
	for _, d := range lr.rng.Difference(moveRange) {
		start, _ := d.Start.TransformedByDeletion(op.Source, op.HowMany)
		end, _ := d.End.TransformedByDeletion(op.Source, op.HowMany)
		piece := Range{Start: start, End: end}
		surviving = append(surviving, piece.TransformedByInsertion(insertPos, op.HowMany, false)...)
	}
	if len(surviving) == 0 {
		lr.rng = results[0]
		return
	}
	lr.rng = RangeFromRanges(surviving)
}
