package richdoc

import "fmt"

// OperationKind identifies an operation variant. Kinds double as the change
// types carried by document change events.
type OperationKind string

const (
	OpInsert        OperationKind = "insert"
	OpMove          OperationKind = "move"
	OpRemove        OperationKind = "remove"
	OpReinsert      OperationKind = "reinsert"
	OpAttribute     OperationKind = "attribute"
	OpRootAttribute OperationKind = "rootAttribute"
	OpRename        OperationKind = "rename"
	OpMarker        OperationKind = "marker"
	OpNoop          OperationKind = "noop"
)

// Operation is an atomic, reversible, version-stamped tree edit. Operations
// are applied exclusively through Document.ApplyOperation, which checks the
// base version and structural preconditions before mutating anything.
type Operation interface {
	Kind() OperationKind
	BaseVersion() int
	// Clone returns an independent copy.
	Clone() Operation
	// Reversed returns the inverse operation, stamped one version past this
	// one.
	Reversed() Operation

	setBase(v int)
	validate(doc *Document) error
	// execute mutates the tree and returns the affected range. Preconditions
	// are assumed to hold: the caller has already validated.
	execute(doc *Document) Range
}

func isGraveyard(root Node) bool {
	r, ok := root.(*RootElement)
	return ok && r.rootName == GraveyardRootName
}

// valuesEqual compares attribute values. Attribute values must be comparable
// (strings, booleans, numbers).
func valuesEqual(a, b any) bool { return a == b }

// InsertOperation inserts a cloned copy of Nodes at Position.
type InsertOperation struct {
	Position Position
	Nodes    []Node
	base     int
}

// NewInsertOperation creates an insertion of nodes at pos. The nodes are
// treated as a template: execution inserts deep clones, so the operation can
// be kept (and reversed) independently of the tree.
func NewInsertOperation(pos Position, nodes []Node, baseVersion int) *InsertOperation {
	return &InsertOperation{Position: pos, Nodes: nodes, base: baseVersion}
}

func (o *InsertOperation) Kind() OperationKind { return OpInsert }
func (o *InsertOperation) BaseVersion() int    { return o.base }
func (o *InsertOperation) setBase(v int)       { o.base = v }

// howMany is the number of offsets the inserted nodes occupy.
func (o *InsertOperation) howMany() int { return nodesOffsetSize(o.Nodes) }

func (o *InsertOperation) Clone() Operation {
	return &InsertOperation{Position: o.Position, Nodes: cloneNodes(o.Nodes), base: o.base}
}

func (o *InsertOperation) Reversed() Operation {
	return NewRemoveOperation(o.Position, o.howMany(), o.base+1)
}

func (o *InsertOperation) validate(*Document) error {
	parent, err := o.Position.ParentElement()
	if err != nil {
		return &ValidationError{Kind: OpInsert, Reason: err.Error()}
	}
	if o.Position.Offset() > parent.MaxOffset() {
		return &ValidationError{Kind: OpInsert, Reason: fmt.Sprintf(
			"insertion offset %d exceeds parent size %d", o.Position.Offset(), parent.MaxOffset())}
	}
	return nil
}

func (o *InsertOperation) execute(*Document) Range {
	parent, _ := o.Position.ParentElement()
	parent.insertAt(o.Position.Offset(), cloneNodes(o.Nodes))
	return RangeFromPositionAndShift(o.Position, o.howMany())
}

// MoveOperation detaches HowMany sibling offsets starting at Source and
// re-inserts them, in order, at Target. Removal and reinsertion are move
// specializations whose target or source lives in the document graveyard.
type MoveOperation struct {
	Source  Position
	HowMany int
	Target  Position
	base    int
}

func NewMoveOperation(source Position, howMany int, target Position, baseVersion int) *MoveOperation {
	return &MoveOperation{Source: source, HowMany: howMany, Target: target, base: baseVersion}
}

// NewRemoveOperation creates a move of howMany offsets at source into the
// graveyard of the document owning source's root. New removals are prepended
// at graveyard offset zero. A source outside any document yields an operation
// every document rejects at apply time, rather than an error here: Reversed
// has no error to return.
func NewRemoveOperation(source Position, howMany int, baseVersion int) *MoveOperation {
	target := Position{root: source.Root(), path: []int{0}}
	if doc := docFor(source.Root()); doc != nil {
		target = Position{root: doc.Graveyard(), path: []int{0}}
	}
	return &MoveOperation{Source: source, HowMany: howMany, Target: target, base: baseVersion}
}

// NewReinsertOperation creates a move of howMany offsets out of the
// graveyard back to target.
func NewReinsertOperation(graveyardSource Position, howMany int, target Position, baseVersion int) *MoveOperation {
	return &MoveOperation{Source: graveyardSource, HowMany: howMany, Target: target, base: baseVersion}
}

func (o *MoveOperation) Kind() OperationKind {
	toGraveyard := isGraveyard(o.Target.Root())
	fromGraveyard := isGraveyard(o.Source.Root())
	switch {
	case toGraveyard && !fromGraveyard:
		return OpRemove
	case fromGraveyard && !toGraveyard:
		return OpReinsert
	default:
		return OpMove
	}
}

func (o *MoveOperation) BaseVersion() int { return o.base }
func (o *MoveOperation) setBase(v int)    { o.base = v }

func (o *MoveOperation) Clone() Operation {
	clone := *o
	return &clone
}

// movedRangeStart is where the moved content starts once the operation has
// been applied.
func (o *MoveOperation) movedRangeStart() Position {
	pos, _ := o.Target.TransformedByDeletion(o.Source, o.HowMany)
	return pos
}

func (o *MoveOperation) Reversed() Operation {
	newTarget := o.Source.TransformedByInsertion(o.Target, o.HowMany, false)
	return &MoveOperation{Source: o.movedRangeStart(), HowMany: o.HowMany, Target: newTarget, base: o.base + 1}
}

func (o *MoveOperation) validate(*Document) error {
	kind := o.Kind()
	sourceParent, err := o.Source.ParentElement()
	if err != nil {
		return &ValidationError{Kind: kind, Reason: "source: " + err.Error()}
	}
	if o.Source.Offset()+o.HowMany > sourceParent.MaxOffset() {
		return &ValidationError{Kind: kind, Reason: fmt.Sprintf(
			"%d node offsets requested at %s but parent holds %d", o.HowMany, o.Source, sourceParent.MaxOffset())}
	}
	targetParent, err := o.Target.ParentElement()
	if err != nil {
		return &ValidationError{Kind: kind, Reason: "target: " + err.Error()}
	}
	if o.Target.Offset() > targetParent.MaxOffset() {
		return &ValidationError{Kind: kind, Reason: fmt.Sprintf(
			"target offset %d exceeds parent size %d", o.Target.Offset(), targetParent.MaxOffset())}
	}
	if sameRoot(o.Source.Root(), o.Target.Root()) && o.targetInsideMovedContent() {
		return &ValidationError{Kind: kind, Reason: "target position is inside the moved content"}
	}
	return nil
}

// targetInsideMovedContent checks whether the target path passes through the
// moved range, which would make the move swallow its own destination.
func (o *MoveOperation) targetInsideMovedContent() bool {
	depth := len(o.Source.path) - 1
	if len(o.Target.path) <= depth {
		return false
	}
	if !pathsEqual(o.Source.ParentPath(), o.Target.path[:depth]) {
		return false
	}
	at := o.Target.path[depth]
	if len(o.Target.path) == depth+1 {
		// Same parent: only a strictly interior offset is invalid.
		return at > o.Source.Offset() && at < o.Source.Offset()+o.HowMany
	}
	// Deeper path: the target descends into one of the moved nodes.
	return at >= o.Source.Offset() && at < o.Source.Offset()+o.HowMany
}

func (o *MoveOperation) execute(*Document) Range {
	// Resolve the landing position against the post-detachment tree; when
	// source and target share a parent this recalculates the offset so the
	// content is not double-shifted.
	newTarget, _ := o.Target.TransformedByDeletion(o.Source, o.HowMany)
	sourceParent, _ := o.Source.ParentElement()
	nodes := sourceParent.removeRange(o.Source.Offset(), o.HowMany)
	targetParent, _ := resolveContainer(newTarget.Root(), newTarget.ParentPath())
	targetParent.insertAt(newTarget.Offset(), nodes)
	return RangeFromPositionAndShift(newTarget, o.HowMany)
}

// AttributeOperation sets Key to New (or removes it when New is nil) on every
// node fully contained in Range. Every affected node must currently carry
// exactly Old (nil for absent) or the operation refuses to apply.
type AttributeOperation struct {
	Range Range
	Key   string
	Old   any
	New   any
	base  int
}

func NewAttributeOperation(r Range, key string, oldValue, newValue any, baseVersion int) *AttributeOperation {
	return &AttributeOperation{Range: r, Key: key, Old: oldValue, New: newValue, base: baseVersion}
}

func (o *AttributeOperation) Kind() OperationKind { return OpAttribute }
func (o *AttributeOperation) BaseVersion() int    { return o.base }
func (o *AttributeOperation) setBase(v int)       { o.base = v }

func (o *AttributeOperation) Clone() Operation {
	clone := *o
	return &clone
}

func (o *AttributeOperation) Reversed() Operation {
	return &AttributeOperation{Range: o.Range, Key: o.Key, Old: o.New, New: o.Old, base: o.base + 1}
}

func (o *AttributeOperation) validate(*Document) error {
	for _, node := range o.Range.overlappingNodes() {
		current, _ := node.Attr(o.Key)
		if !valuesEqual(current, o.Old) {
			return &ValidationError{Kind: OpAttribute, Reason: fmt.Sprintf(
				"node has attribute %s=%v, expected %v", o.Key, current, o.Old)}
		}
	}
	return nil
}

func (o *AttributeOperation) execute(*Document) Range {
	for _, node := range o.Range.items() {
		switch n := node.(type) {
		case *Text:
			if o.New == nil {
				n.removeAttr(o.Key)
			} else {
				n.setAttr(o.Key, o.New)
			}
		case *Element:
			if o.New == nil {
				n.removeAttr(o.Key)
			} else {
				n.setAttr(o.Key, o.New)
			}
		}
	}
	return o.Range
}

// RootAttributeOperation sets an attribute directly on a document root,
// which no Range can span.
type RootAttributeOperation struct {
	RootName string
	Key      string
	Old      any
	New      any
	base     int
}

func NewRootAttributeOperation(rootName, key string, oldValue, newValue any, baseVersion int) *RootAttributeOperation {
	return &RootAttributeOperation{RootName: rootName, Key: key, Old: oldValue, New: newValue, base: baseVersion}
}

func (o *RootAttributeOperation) Kind() OperationKind { return OpRootAttribute }
func (o *RootAttributeOperation) BaseVersion() int    { return o.base }
func (o *RootAttributeOperation) setBase(v int)       { o.base = v }

func (o *RootAttributeOperation) Clone() Operation {
	clone := *o
	return &clone
}

func (o *RootAttributeOperation) Reversed() Operation {
	return &RootAttributeOperation{RootName: o.RootName, Key: o.Key, Old: o.New, New: o.Old, base: o.base + 1}
}

func (o *RootAttributeOperation) validate(doc *Document) error {
	root := doc.Root(o.RootName)
	if root == nil {
		return &ValidationError{Kind: OpRootAttribute, Reason: fmt.Sprintf("no root named %q", o.RootName)}
	}
	current, _ := root.Attr(o.Key)
	if !valuesEqual(current, o.Old) {
		return &ValidationError{Kind: OpRootAttribute, Reason: fmt.Sprintf(
			"root %q has attribute %s=%v, expected %v", o.RootName, o.Key, current, o.Old)}
	}
	return nil
}

func (o *RootAttributeOperation) execute(doc *Document) Range {
	root := doc.Root(o.RootName)
	if o.New == nil {
		root.removeAttr(o.Key)
	} else {
		root.setAttr(o.Key, o.New)
	}
	return CollapsedRange(PositionAt(root, 0))
}

// RenameOperation changes the name of the element right after Position.
type RenameOperation struct {
	Position Position
	OldName  string
	NewName  string
	base     int
}

func NewRenameOperation(pos Position, oldName, newName string, baseVersion int) *RenameOperation {
	return &RenameOperation{Position: pos, OldName: oldName, NewName: newName, base: baseVersion}
}

func (o *RenameOperation) Kind() OperationKind { return OpRename }
func (o *RenameOperation) BaseVersion() int    { return o.base }
func (o *RenameOperation) setBase(v int)       { o.base = v }

func (o *RenameOperation) Clone() Operation {
	clone := *o
	return &clone
}

func (o *RenameOperation) Reversed() Operation {
	return &RenameOperation{Position: o.Position, OldName: o.NewName, NewName: o.OldName, base: o.base + 1}
}

func (o *RenameOperation) validate(*Document) error {
	el, ok := o.Position.NodeAfter().(*Element)
	if !ok {
		return &ValidationError{Kind: OpRename, Reason: fmt.Sprintf("no element at %s", o.Position)}
	}
	if el.Name() != o.OldName {
		return &ValidationError{Kind: OpRename, Reason: fmt.Sprintf(
			"element at %s is named %q, expected %q", o.Position, el.Name(), o.OldName)}
	}
	return nil
}

func (o *RenameOperation) execute(*Document) Range {
	el := o.Position.NodeAfter().(*Element)
	el.name = o.NewName
	return RangeFromPositionAndShift(o.Position, 1)
}

// MarkerOperation records a marker range change so operation-managed markers
// participate in undo and transformation. A nil NewRange removes the marker;
// a nil OldRange creates it.
type MarkerOperation struct {
	Name     string
	OldRange *Range
	NewRange *Range
	base     int
}

func NewMarkerOperation(name string, oldRange, newRange *Range, baseVersion int) *MarkerOperation {
	return &MarkerOperation{Name: name, OldRange: oldRange, NewRange: newRange, base: baseVersion}
}

func (o *MarkerOperation) Kind() OperationKind { return OpMarker }
func (o *MarkerOperation) BaseVersion() int    { return o.base }
func (o *MarkerOperation) setBase(v int)       { o.base = v }

func (o *MarkerOperation) Clone() Operation {
	clone := *o
	return &clone
}

func (o *MarkerOperation) Reversed() Operation {
	return &MarkerOperation{Name: o.Name, OldRange: o.NewRange, NewRange: o.OldRange, base: o.base + 1}
}

func (o *MarkerOperation) validate(*Document) error {
	if o.Name == "" {
		return &ValidationError{Kind: OpMarker, Reason: "marker name must not be empty"}
	}
	return nil
}

func (o *MarkerOperation) execute(doc *Document) Range {
	if o.NewRange != nil {
		doc.Markers().set(o.Name, *o.NewRange, true)
		return *o.NewRange
	}
	doc.Markers().remove(o.Name)
	if o.OldRange != nil {
		return *o.OldRange
	}
	return Range{}
}

// NoOperation does nothing. It bumps the document version like any other
// operation and is the identity result of transformations that cancel out.
type NoOperation struct {
	base int
}

func NewNoOperation(baseVersion int) *NoOperation { return &NoOperation{base: baseVersion} }

func (o *NoOperation) Kind() OperationKind { return OpNoop }
func (o *NoOperation) BaseVersion() int    { return o.base }
func (o *NoOperation) setBase(v int)       { o.base = v }
func (o *NoOperation) Clone() Operation    { return &NoOperation{base: o.base} }
func (o *NoOperation) Reversed() Operation { return &NoOperation{base: o.base + 1} }

func (o *NoOperation) validate(*Document) error { return nil }
func (o *NoOperation) execute(*Document) Range  { return Range{} }
