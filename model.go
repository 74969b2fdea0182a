package richdoc

import "log/slog"

// Names of the observable compound operations. Each fires on the Model with
// a mutable payload before the default behavior runs; a listener registered
// above PriorityLowest may adjust the payload or call Stop to replace the
// default entirely.
const (
	EventInsertContent      = "insertContent"
	EventDeleteContent      = "deleteContent"
	EventModifySelection    = "modifySelection"
	EventGetSelectedContent = "getSelectedContent"
	EventHasContent         = "hasContent"
)

// InsertContentEvent is the payload of EventInsertContent.
type InsertContentEvent struct {
	Writer    *Writer
	Content   Node
	Selection *Selection
	// Result is the range spanning the inserted content, filled in by
	// whichever listener handles the event.
	Result Range
	Err    error
}

// DeleteContentOptions tunes DeleteContent.
type DeleteContentOptions struct {
	// Merge joins the block holding the selection end into the block
	// holding the start once the selected content is gone.
	Merge bool
}

// DeleteContentEvent is the payload of EventDeleteContent.
type DeleteContentEvent struct {
	Writer    *Writer
	Selection *Selection
	Options   DeleteContentOptions
	Err       error
}

// SelectionDirection selects which way ModifySelection grows the selection.
type SelectionDirection string

const (
	DirectionForward  SelectionDirection = "forward"
	DirectionBackward SelectionDirection = "backward"
)

// ModifySelectionOptions tunes ModifySelection.
type ModifySelectionOptions struct {
	Direction SelectionDirection
}

// ModifySelectionEvent is the payload of EventModifySelection.
type ModifySelectionEvent struct {
	Selection *Selection
	Options   ModifySelectionOptions
	Err       error
}

// GetSelectedContentEvent is the payload of EventGetSelectedContent.
type GetSelectedContentEvent struct {
	Writer    *Writer
	Selection *Selection
	Result    *DocumentFragment
	Err       error
}

// HasContentOptions tunes HasContent.
type HasContentOptions struct {
	// IgnoreEmptyElements treats childless elements as not being content.
	IgnoreEmptyElements bool
}

// HasContentEvent is the payload of EventHasContent.
type HasContentEvent struct {
	Range   Range
	Options HasContentOptions
	Result  bool
}

// MainRootName is the name of the root every model starts with.
const MainRootName = "main"

type pendingChange struct {
	batch *Batch
	fn    func(*Writer) error
}

// Model owns a Document and is the entry point for all edits. Mutation goes
// through Change or EnqueueChange, which hand out a Writer scoped to one
// batch; the compound operations layer selection-aware editing on top of the
// Writer primitives.
type Model struct {
	Emitter
	doc           *Document
	pending       []pendingChange
	currentWriter *Writer
	running       bool
	log           *slog.Logger
}

// NewModel creates a model with an empty "main" root. A nil logger falls
// back to slog.Default.
func NewModel(logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{doc: NewDocument(logger), log: logger}
	if _, err := m.doc.CreateRoot("$root", MainRootName); err != nil {
		panic(err) // fresh document cannot hold a duplicate root
	}
	m.registerDefaults()
	return m
}

func (m *Model) Document() *Document { return m.doc }

// Change runs fn with a writer on a fresh default batch. Called while
// another change is in progress it runs fn immediately with the writer
// already open, so nested calls share one batch and one completion event.
func (m *Model) Change(fn func(*Writer) error) error {
	if m.currentWriter != nil {
		return fn(m.currentWriter)
	}
	m.pending = append(m.pending, pendingChange{batch: NewBatch(BatchDefault), fn: fn})
	if m.running {
		return nil
	}
	return m.runPending()
}

// EnqueueChange schedules fn on the given batch (nil means a fresh default
// batch). With no change block open it runs immediately; otherwise it runs
// after the current outermost block and every previously queued callback,
// in FIFO order.
func (m *Model) EnqueueChange(batch *Batch, fn func(*Writer) error) error {
	if batch == nil {
		batch = NewBatch(BatchDefault)
	}
	m.pending = append(m.pending, pendingChange{batch: batch, fn: fn})
	if m.running {
		return nil
	}
	return m.runPending()
}

// runPending drains the queue. EventChangesDone fires on the document
// exactly once, when the queue first empties; callbacks enqueued by its
// listeners still run before runPending returns but fire no second event.
// A callback error aborts the queue and propagates to the caller.
func (m *Model) runPending() error {
	m.running = true
	defer func() { m.running = false }()

	fired := false
	for len(m.pending) > 0 {
		next := m.pending[0]
		m.pending = m.pending[1:]

		w := &Writer{model: m, batch: next.batch}
		m.currentWriter = w
		err := next.fn(w)
		m.currentWriter = nil
		if err != nil {
			dropped := len(m.pending)
			m.pending = nil
			m.log.Error("change callback failed", "err", err, "dropped", dropped)
			return err
		}

		if len(m.pending) == 0 && !fired {
			fired = true
			m.doc.Fire(EventChangesDone, nil)
		}
	}
	return nil
}

// InsertContent inserts content at the selection, replacing any selected
// content first, and returns the range the insertion covers. The selection
// is left collapsed after the inserted content.
func (m *Model) InsertContent(content Node, sel *Selection) (Range, error) {
	var result Range
	err := m.Change(func(w *Writer) error {
		data := &InsertContentEvent{Writer: w, Content: content, Selection: sel}
		m.Fire(EventInsertContent, data)
		result = data.Result
		return data.Err
	})
	return result, err
}

// DeleteContent removes the selected content and collapses the selection to
// where the content was.
func (m *Model) DeleteContent(sel *Selection, opts DeleteContentOptions) error {
	return m.Change(func(w *Writer) error {
		data := &DeleteContentEvent{Writer: w, Selection: sel, Options: opts}
		m.Fire(EventDeleteContent, data)
		return data.Err
	})
}

// ModifySelection extends the selection focus by one character in the given
// direction.
func (m *Model) ModifySelection(sel *Selection, opts ModifySelectionOptions) error {
	data := &ModifySelectionEvent{Selection: sel, Options: opts}
	m.Fire(EventModifySelection, data)
	return data.Err
}

// GetSelectedContent returns a fragment holding a copy of the selected
// content. The document is not modified.
func (m *Model) GetSelectedContent(sel *Selection) (*DocumentFragment, error) {
	var result *DocumentFragment
	err := m.Change(func(w *Writer) error {
		data := &GetSelectedContentEvent{Writer: w, Selection: sel}
		m.Fire(EventGetSelectedContent, data)
		result = data.Result
		return data.Err
	})
	return result, err
}

// HasContent reports whether the range holds anything a user would perceive
// as content: non-empty text, or any element unless IgnoreEmptyElements
// discounts childless ones.
func (m *Model) HasContent(r Range, opts HasContentOptions) bool {
	data := &HasContentEvent{Range: r, Options: opts}
	m.Fire(EventHasContent, data)
	return data.Result
}

// registerDefaults installs the default compound-operation behaviors at
// PriorityLowest, so any listener at a higher priority can observe, adjust
// or stop them.
func (m *Model) registerDefaults() {
	m.OnPriority(EventInsertContent, PriorityLowest, func(ev *EventInfo, data any) {
		p := data.(*InsertContentEvent)
		p.Result, p.Err = insertContent(m, p.Writer, p.Content, p.Selection)
	})
	m.OnPriority(EventDeleteContent, PriorityLowest, func(ev *EventInfo, data any) {
		p := data.(*DeleteContentEvent)
		p.Err = deleteContent(m, p.Writer, p.Selection, p.Options)
	})
	m.OnPriority(EventModifySelection, PriorityLowest, func(ev *EventInfo, data any) {
		p := data.(*ModifySelectionEvent)
		p.Err = modifySelection(m, p.Selection, p.Options)
	})
	m.OnPriority(EventGetSelectedContent, PriorityLowest, func(ev *EventInfo, data any) {
		p := data.(*GetSelectedContentEvent)
		p.Result, p.Err = getSelectedContent(m, p.Selection)
	})
	m.OnPriority(EventHasContent, PriorityLowest, func(ev *EventInfo, data any) {
		p := data.(*HasContentEvent)
		p.Result = hasContent(p.Range, p.Options)
	})
}
