package richdoc

import "github.com/google/uuid"

// Delta is an ordered group of operations forming one semantic edit, such as
// "split a paragraph". Deltas are the unit the transformation algorithm works
// on; their IDs provide the deterministic tie-break when no document context
// is available.
type Delta struct {
	ID    string
	Name  string
	ops   []Operation
	batch *Batch
}

// NewDelta creates an empty delta with a fresh unique ID.
func NewDelta(name string) *Delta {
	return &Delta{ID: uuid.NewString(), Name: name}
}

// AddOperation appends op to the delta.
func (d *Delta) AddOperation(op Operation) {
	d.ops = append(d.ops, op)
}

// Operations returns the operations in application order.
func (d *Delta) Operations() []Operation {
	return append([]Operation(nil), d.ops...)
}

// Batch returns the batch this delta belongs to, if any.
func (d *Delta) Batch() *Batch { return d.batch }

// BaseVersion is the base version of the first operation, or -1 for an empty
// delta.
func (d *Delta) BaseVersion() int {
	if len(d.ops) == 0 {
		return -1
	}
	return d.ops[0].BaseVersion()
}

// Reversed returns a delta undoing this one: the reversed operations in
// reverse order, stamped with consecutive base versions continuing right
// after this delta's last operation.
func (d *Delta) Reversed() *Delta {
	reversed := NewDelta(d.Name)
	next := d.BaseVersion() + len(d.ops)
	for i := len(d.ops) - 1; i >= 0; i-- {
		op := d.ops[i].Reversed()
		op.setBase(next)
		next++
		reversed.AddOperation(op)
	}
	return reversed
}

// Clone returns a deep copy sharing the original's ID, so a transformed
// delta still identifies its origin.
func (d *Delta) Clone() *Delta {
	clone := &Delta{ID: d.ID, Name: d.Name, batch: d.batch}
	for _, op := range d.ops {
		clone.ops = append(clone.ops, op.Clone())
	}
	return clone
}

// BatchType tags how a batch relates to undo and history enumeration.
type BatchType string

const (
	// BatchDefault batches are regular user edits.
	BatchDefault BatchType = "default"
	// BatchTransparent batches are excluded from standard undo and history
	// enumeration.
	BatchTransparent BatchType = "transparent"
	// BatchHistory batches replay or revert past changes.
	BatchHistory BatchType = "history"
)

// Batch is an ordered group of deltas forming one logical change-set; it is
// the unit undo operates on.
type Batch struct {
	ID     string
	Type   BatchType
	deltas []*Delta
}

// NewBatch creates an empty batch of the given type.
func NewBatch(t BatchType) *Batch {
	if t == "" {
		t = BatchDefault
	}
	return &Batch{ID: uuid.NewString(), Type: t}
}

// AddDelta appends delta to the batch and claims ownership of it.
func (b *Batch) AddDelta(delta *Delta) {
	delta.batch = b
	b.deltas = append(b.deltas, delta)
}

// Deltas returns the deltas in application order.
func (b *Batch) Deltas() []*Delta {
	return append([]*Delta(nil), b.deltas...)
}

// BaseVersion is the base version of the first delta, or -1 for an empty
// batch.
func (b *Batch) BaseVersion() int {
	if len(b.deltas) == 0 {
		return -1
	}
	return b.deltas[0].BaseVersion()
}

// Operations returns all operations of all deltas in application order.
func (b *Batch) Operations() []Operation {
	var ops []Operation
	for _, d := range b.deltas {
		ops = append(ops, d.ops...)
	}
	return ops
}
