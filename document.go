package richdoc

import "log/slog"

// GraveyardRootName names the hidden root holding removed nodes, so removal
// and reinsertion are plain moves.
const GraveyardRootName = "$graveyard"

// Document event names.
const (
	// EventChange fires synchronously once per applied operation with a
	// ChangeEvent payload.
	EventChange = "change"
	// EventChangesDone fires exactly once per outermost change block, after
	// every queued change has drained.
	EventChangesDone = "changesDone"
)

// ChangeEvent is the payload of EventChange. Live positions, live ranges,
// markers and external view bindings all consume it.
type ChangeEvent struct {
	Type      OperationKind
	Range     Range
	Operation Operation
}

// History records every applied operation and the deltas they came from.
type History struct {
	ops      []Operation
	deltas   []*Delta
	deltaIDs map[string]bool
}

func newHistory() *History {
	return &History{deltaIDs: make(map[string]bool)}
}

func (h *History) addOperation(op Operation) {
	h.ops = append(h.ops, op)
}

func (h *History) addDelta(d *Delta) {
	if h.deltaIDs[d.ID] {
		return
	}
	h.deltaIDs[d.ID] = true
	h.deltas = append(h.deltas, d)
}

// Contains reports whether a delta with the given ID has been applied.
func (h *History) Contains(deltaID string) bool { return h.deltaIDs[deltaID] }

// Operations returns every applied operation in application order.
func (h *History) Operations() []Operation { return append([]Operation(nil), h.ops...) }

// Deltas returns applied deltas, skipping those from transparent batches.
func (h *History) Deltas() []*Delta {
	var out []*Delta
	for _, d := range h.deltas {
		if d.batch != nil && d.batch.Type == BatchTransparent {
			continue
		}
		out = append(out, d)
	}
	return out
}

// AllDeltas returns every applied delta, transparent batches included.
func (h *History) AllDeltas() []*Delta { return append([]*Delta(nil), h.deltas...) }

// DeltasSince returns every applied delta whose base version is at or past
// the given document version. Peers use it to find what a remote change set
// must be transformed against.
func (h *History) DeltasSince(version int) []*Delta {
	var out []*Delta
	for _, d := range h.deltas {
		if d.BaseVersion() >= version {
			out = append(out, d)
		}
	}
	return out
}

// Document owns the model roots, the version counter, the history of applied
// deltas, the marker collection and the selection. All tree mutation goes
// through ApplyOperation; nothing else bypasses it.
type Document struct {
	Emitter

	roots     map[string]*RootElement
	version   int
	history   *History
	markers   *MarkerCollection
	selection *Selection
	log       *slog.Logger
}

// NewDocument creates an empty document holding only the graveyard root.
// A nil logger falls back to slog.Default().
func NewDocument(logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Document{
		roots:     make(map[string]*RootElement),
		history:   newHistory(),
		selection: NewSelection(),
		log:       logger,
	}
	d.markers = newMarkerCollection(d)
	d.roots[GraveyardRootName] = newRootElement(d, "$root", GraveyardRootName)
	return d
}

// CreateRoot adds a root with the given element name under rootName.
func (d *Document) CreateRoot(elementName, rootName string) (*RootElement, error) {
	if _, exists := d.roots[rootName]; exists {
		return nil, &UsageError{Reason: "document already has a root named " + rootName}
	}
	root := newRootElement(d, elementName, rootName)
	d.roots[rootName] = root
	return root, nil
}

// Root returns the root registered under name, or nil.
func (d *Document) Root(name string) *RootElement { return d.roots[name] }

// Graveyard returns the hidden root holding removed content.
func (d *Document) Graveyard() *RootElement { return d.roots[GraveyardRootName] }

// RootNames lists registered roots, graveyard included.
func (d *Document) RootNames() []string {
	names := make([]string, 0, len(d.roots))
	for name := range d.roots {
		names = append(names, name)
	}
	return names
}

func (d *Document) Version() int               { return d.version }
func (d *Document) History() *History          { return d.history }
func (d *Document) Markers() *MarkerCollection { return d.markers }
func (d *Document) Selection() *Selection      { return d.selection }

// rebindOperation re-anchors op's positions at doc's own roots, matched by
// root name. Operations arriving from another document (a peer's transformed
// deltas) otherwise still point at the peer's tree and would mutate it.
// Operations anchored in a root doc does not own are rejected.
func rebindOperation(op Operation, doc *Document) (Operation, error) {
	notOwned := func(kind OperationKind) error {
		return &ValidationError{Kind: kind, Reason: "operation is not anchored in this document's roots"}
	}
	switch o := op.(type) {
	case *InsertOperation:
		pos, ok := o.Position.rebindTo(doc)
		if !ok {
			return nil, notOwned(o.Kind())
		}
		return &InsertOperation{Position: pos, Nodes: o.Nodes, base: o.base}, nil
	case *MoveOperation:
		source, sourceOK := o.Source.rebindTo(doc)
		target, targetOK := o.Target.rebindTo(doc)
		if !sourceOK || !targetOK {
			return nil, notOwned(o.Kind())
		}
		return &MoveOperation{Source: source, HowMany: o.HowMany, Target: target, base: o.base}, nil
	case *AttributeOperation:
		r, ok := o.Range.rebindTo(doc)
		if !ok {
			return nil, notOwned(o.Kind())
		}
		return &AttributeOperation{Range: r, Key: o.Key, Old: o.Old, New: o.New, base: o.base}, nil
	case *RenameOperation:
		pos, ok := o.Position.rebindTo(doc)
		if !ok {
			return nil, notOwned(o.Kind())
		}
		return &RenameOperation{Position: pos, OldName: o.OldName, NewName: o.NewName, base: o.base}, nil
	case *MarkerOperation:
		clone := *o
		if o.OldRange != nil {
			r, ok := o.OldRange.rebindTo(doc)
			if !ok {
				return nil, notOwned(o.Kind())
			}
			clone.OldRange = &r
		}
		if o.NewRange != nil {
			r, ok := o.NewRange.rebindTo(doc)
			if !ok {
				return nil, notOwned(o.Kind())
			}
			clone.NewRange = &r
		}
		return &clone, nil
	default:
		// Root attribute operations address roots by name already, and
		// no-operations carry no positions.
		return op, nil
	}
}

// ApplyOperation validates and executes op, bumps the version by one and
// fires EventChange synchronously before returning. The operation is first
// re-anchored at this document's roots, so a delta transformed against a
// peer's history applies here and nowhere else. A stale base version or a
// failed precondition leaves the tree untouched and returns the error; both
// are fatal for the caller.
func (d *Document) ApplyOperation(op Operation) error {
	op, rebindErr := rebindOperation(op, d)
	if rebindErr != nil {
		d.log.Error("operation rejected", "error", rebindErr)
		return rebindErr
	}
	if op.BaseVersion() != d.version {
		err := &VersionMismatchError{Kind: op.Kind(), BaseVersion: op.BaseVersion(), DocVersion: d.version}
		d.log.Error("operation rejected", "type", op.Kind(), "error", err)
		return err
	}
	if err := op.validate(d); err != nil {
		d.log.Error("operation rejected", "type", op.Kind(), "error", err)
		return err
	}
	affected := op.execute(d)
	d.history.addOperation(op)
	d.version++
	d.log.Debug("operation applied", "type", op.Kind(), "version", d.version)
	d.Fire(EventChange, ChangeEvent{Type: op.Kind(), Range: affected, Operation: op})
	return nil
}
