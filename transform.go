package richdoc

// Operation transformation. transformOp(a, b, strong) answers: given that b
// was applied to the tree a expected, what must a become to keep its intent?
// The result is a list because a move or insertion can tear a's range apart.
// Conflicts with no positional answer (two inserts at one spot, two writers
// of one attribute) are settled by the strong flag; TransformDeltaSets
// derives that flag from document history, falling back to delta IDs, so
// both peers settle every conflict the same way and never raise an
// ambiguity error.

// TransformOperation transforms a against an already-applied b. With strong
// set, a wins conflicts that have no positional answer.
func TransformOperation(a, b Operation, strong bool) []Operation {
	return transformOp(a, b, strong)
}

func transformOp(a, b Operation, strong bool) []Operation {
	if _, isNoop := a.(*NoOperation); isNoop {
		return []Operation{a.Clone()}
	}
	switch bo := b.(type) {
	case *InsertOperation:
		return transformByInsert(a, bo, strong)
	case *MoveOperation:
		return transformByMove(a, bo, strong)
	case *AttributeOperation:
		return transformByAttribute(a, bo, strong)
	case *RootAttributeOperation:
		return transformByRootAttribute(a, bo, strong)
	case *RenameOperation:
		return transformByRename(a, bo, strong)
	case *MarkerOperation:
		return transformByMarker(a, bo, strong)
	default:
		return []Operation{a.Clone()}
	}
}

// transformByInsert shifts a past an insertion of size offsets at ins.Position.
func transformByInsert(a Operation, ins *InsertOperation, strong bool) []Operation {
	size := nodesOffsetSize(ins.Nodes)
	switch ao := a.(type) {
	case *InsertOperation:
		// Two inserts at one position: the strong side keeps its spot, the
		// weak side is pushed behind the inserted content.
		pos := ao.Position.TransformedByInsertion(ins.Position, size, !strong)
		return []Operation{NewInsertOperation(pos, cloneNodes(ao.Nodes), ao.base)}
	case *MoveOperation:
		// An insertion inside the moved block travels with it.
		src := RangeFromPositionAndShift(ao.Source, ao.HowMany)
		moved := src.TransformedByInsertion(ins.Position, size, false)[0]
		target := ao.Target.TransformedByInsertion(ins.Position, size, false)
		howMany := moved.End.Offset() - moved.Start.Offset()
		return []Operation{NewMoveOperation(moved.Start, howMany, target, ao.base)}
	case *AttributeOperation:
		var out []Operation
		for _, r := range ao.Range.TransformedByInsertion(ins.Position, size, true) {
			if r.IsCollapsed() {
				continue
			}
			out = append(out, NewAttributeOperation(r, ao.Key, ao.Old, ao.New, ao.base))
		}
		if len(out) == 0 {
			return []Operation{NewNoOperation(ao.base)}
		}
		return out
	case *RenameOperation:
		pos := ao.Position.TransformedByInsertion(ins.Position, size, false)
		return []Operation{NewRenameOperation(pos, ao.OldName, ao.NewName, ao.base)}
	case *MarkerOperation:
		oldR := markerRangeByInsertion(ao.OldRange, ins.Position, size)
		newR := markerRangeByInsertion(ao.NewRange, ins.Position, size)
		return []Operation{NewMarkerOperation(ao.Name, oldR, newR, ao.base)}
	default:
		return []Operation{a.Clone()}
	}
}

// transformByMove shifts a past a move of mv.HowMany offsets from mv.Source
// to mv.Target.
func transformByMove(a Operation, mv *MoveOperation, strong bool) []Operation {
	switch ao := a.(type) {
	case *InsertOperation:
		pos := ao.Position.TransformedByMove(mv.Source, mv.Target, mv.HowMany, false)
		return []Operation{NewInsertOperation(pos, cloneNodes(ao.Nodes), ao.base)}
	case *MoveOperation:
		return transformMoveByMove(ao, mv, strong)
	case *AttributeOperation:
		var out []Operation
		for _, r := range ao.Range.TransformedByMove(mv.Source, mv.Target, mv.HowMany) {
			if r.IsCollapsed() {
				continue
			}
			out = append(out, NewAttributeOperation(r, ao.Key, ao.Old, ao.New, ao.base))
		}
		if len(out) == 0 {
			return []Operation{NewNoOperation(ao.base)}
		}
		return out
	case *RenameOperation:
		pos := ao.Position.TransformedByMove(mv.Source, mv.Target, mv.HowMany, false)
		return []Operation{NewRenameOperation(pos, ao.OldName, ao.NewName, ao.base)}
	case *MarkerOperation:
		oldR := markerRangeByMove(ao.OldRange, mv)
		newR := markerRangeByMove(ao.NewRange, mv)
		return []Operation{NewMarkerOperation(ao.Name, oldR, newR, ao.base)}
	default:
		return []Operation{a.Clone()}
	}
}

// transformMoveByMove resolves two concurrent moves. Content both sides
// claim goes to the strong side; the weak side moves only what b left
// behind, or degrades to a no-op when nothing remains.
func transformMoveByMove(a, b *MoveOperation, strong bool) []Operation {
	rangeA := RangeFromPositionAndShift(a.Source, a.HowMany)
	rangeB := RangeFromPositionAndShift(b.Source, b.HowMany)
	newTarget := a.Target.TransformedByMove(b.Source, b.Target, b.HowMany, false)
	insertPos, _ := b.Target.TransformedByDeletion(b.Source, b.HowMany)

	var ranges []Range
	for _, piece := range rangeA.Difference(rangeB) {
		start, okS := piece.Start.TransformedByDeletion(b.Source, b.HowMany)
		end, okE := piece.End.TransformedByDeletion(b.Source, b.HowMany)
		if !okS || !okE {
			continue
		}
		moved := Range{Start: start, End: end}
		ranges = append(ranges, moved.TransformedByInsertion(insertPos, b.HowMany, false)...)
	}
	if common, ok := rangeA.Intersection(rangeB); ok && strong {
		// Follow the contested nodes into b's target.
		ranges = append(ranges, Range{
			Start: common.Start.combined(b.Source, insertPos),
			End:   common.End.combined(b.Source, insertPos),
		})
	}

	ranges = joinNonEmpty(ranges)
	if len(ranges) == 0 {
		return []Operation{NewNoOperation(a.base)}
	}
	out := make([]Operation, 0, len(ranges))
	// Back to front, so earlier source offsets stay valid while the later
	// pieces are carved out.
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		out = append(out, NewMoveOperation(r.Start, r.End.Offset()-r.Start.Offset(), newTarget, a.base))
	}
	return out
}

func joinNonEmpty(ranges []Range) []Range {
	var filtered []Range
	for _, r := range ranges {
		if !r.IsCollapsed() {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return joinTouchingRanges(filtered)
}

// transformByAttribute only conflicts with another attribute write of the
// same key on overlapping content. The weak writer keeps the parts the
// strong one did not touch; the strong writer rewrites the contested part on
// top of the other's value.
func transformByAttribute(a Operation, attr *AttributeOperation, strong bool) []Operation {
	ao, ok := a.(*AttributeOperation)
	if !ok || ao.Key != attr.Key {
		return []Operation{a.Clone()}
	}
	common, overlaps := ao.Range.Intersection(attr.Range)
	if !overlaps {
		return []Operation{a.Clone()}
	}

	var out []Operation
	for _, piece := range ao.Range.Difference(attr.Range) {
		if piece.IsCollapsed() {
			continue
		}
		out = append(out, NewAttributeOperation(piece, ao.Key, ao.Old, ao.New, ao.base))
	}
	if strong && !common.IsCollapsed() && !valuesEqual(ao.New, attr.New) {
		out = append(out, NewAttributeOperation(common, ao.Key, attr.New, ao.New, ao.base))
	}
	if len(out) == 0 {
		return []Operation{NewNoOperation(ao.base)}
	}
	return out
}

func transformByRootAttribute(a Operation, attr *RootAttributeOperation, strong bool) []Operation {
	ao, ok := a.(*RootAttributeOperation)
	if !ok || ao.RootName != attr.RootName || ao.Key != attr.Key {
		return []Operation{a.Clone()}
	}
	if !strong || valuesEqual(ao.New, attr.New) {
		return []Operation{NewNoOperation(ao.base)}
	}
	return []Operation{NewRootAttributeOperation(ao.RootName, ao.Key, attr.New, ao.New, ao.base)}
}

func transformByRename(a Operation, ren *RenameOperation, strong bool) []Operation {
	ao, ok := a.(*RenameOperation)
	if !ok || !ao.Position.IsEqual(ren.Position) {
		return []Operation{a.Clone()}
	}
	if !strong || ao.NewName == ren.NewName {
		return []Operation{NewNoOperation(ao.base)}
	}
	return []Operation{NewRenameOperation(ao.Position, ren.NewName, ao.NewName, ao.base)}
}

func transformByMarker(a Operation, mk *MarkerOperation, strong bool) []Operation {
	ao, ok := a.(*MarkerOperation)
	if !ok || ao.Name != mk.Name {
		return []Operation{a.Clone()}
	}
	if !strong {
		return []Operation{NewNoOperation(ao.base)}
	}
	return []Operation{NewMarkerOperation(ao.Name, mk.NewRange, ao.NewRange, ao.base)}
}

func markerRangeByInsertion(r *Range, pos Position, howMany int) *Range {
	if r == nil {
		return nil
	}
	spanned := RangeFromRanges(r.TransformedByInsertion(pos, howMany, false))
	return &spanned
}

func markerRangeByMove(r *Range, mv *MoveOperation) *Range {
	if r == nil {
		return nil
	}
	spanned := RangeFromRanges(r.TransformedByMove(mv.Source, mv.Target, mv.HowMany))
	return &spanned
}

// transformOpLists runs the transformation diamond over two operation lists
// based on the same document state, returning (xs', ys') such that xs
// followed by ys' reaches the same tree as ys followed by xs'.
func transformOpLists(xs, ys []Operation, xStrong bool) ([]Operation, []Operation) {
	if len(xs) == 0 || len(ys) == 0 {
		return xs, ys
	}
	if len(xs) == 1 && len(ys) == 1 {
		xPrime := transformOp(xs[0], ys[0], xStrong)
		yPrime := transformOp(ys[0], xs[0], !xStrong)
		return xPrime, yPrime
	}
	if len(xs) > 1 {
		headX, ys1 := transformOpLists(xs[:1], ys, xStrong)
		tailX, ys2 := transformOpLists(xs[1:], ys1, xStrong)
		return append(headX, tailX...), ys2
	}
	xs1, headY := transformOpLists(xs, ys[:1], xStrong)
	xs2, tailY := transformOpLists(xs1, ys[1:], xStrong)
	return xs2, append(headY, tailY...)
}

// TransformDeltaSets transforms two concurrent delta sets based on the same
// document version against each other, returning (a', b'): a' applies on top
// of b's outcome and b' on top of a's, and both application orders converge
// to the same tree. When doc is given, the set already present in its
// history wins conflicts; otherwise (and when both or neither are present)
// the set whose first delta has the lexicographically smaller ID wins.
func TransformDeltaSets(deltasA, deltasB []*Delta, doc *Document) ([]*Delta, []*Delta) {
	if len(deltasA) == 0 || len(deltasB) == 0 {
		return cloneDeltas(deltasA), cloneDeltas(deltasB)
	}
	base := deltasA[0].BaseVersion()
	strongA := strongSide(deltasA, deltasB, doc)

	opsB := flattenOps(deltasB)
	var outA [][]Operation
	for _, d := range deltasA {
		ops := cloneOps(d.Operations())
		var transformed []Operation
		transformed, opsB = transformOpLists(ops, opsB, strongA)
		outA = append(outA, transformed)
	}

	resultA := rebuildDeltas(deltasA, outA, base+countOps(deltasB))
	resultB := rebuildDeltas(deltasB, splitByShare(opsB, deltasB), base+countOps(deltasA))
	return resultA, resultB
}

func strongSide(a, b []*Delta, doc *Document) bool {
	if doc != nil {
		aApplied := doc.History().Contains(a[0].ID)
		bApplied := doc.History().Contains(b[0].ID)
		if aApplied != bApplied {
			return aApplied
		}
	}
	return a[0].ID < b[0].ID
}

func flattenOps(deltas []*Delta) []Operation {
	var out []Operation
	for _, d := range deltas {
		out = append(out, cloneOps(d.Operations())...)
	}
	return out
}

func countOps(deltas []*Delta) int {
	n := 0
	for _, d := range deltas {
		n += len(d.Operations())
	}
	return n
}

func cloneOps(ops []Operation) []Operation {
	out := make([]Operation, len(ops))
	for i, op := range ops {
		out[i] = op.Clone()
	}
	return out
}

func cloneDeltas(deltas []*Delta) []*Delta {
	out := make([]*Delta, len(deltas))
	for i, d := range deltas {
		out[i] = d.Clone()
	}
	return out
}

// splitByShare redistributes transformed operations over the source deltas.
// Transformation can change how many operations a delta holds, so the split
// is proportional only in origin: the ops that came from delta i stay with
// delta i. Since transformOpLists reshapes the flat list in order, we give
// each delta its original share and spill any surplus into the last one.
func splitByShare(ops []Operation, src []*Delta) [][]Operation {
	out := make([][]Operation, len(src))
	idx := 0
	for i, d := range src {
		want := len(d.Operations())
		if i == len(src)-1 {
			want = len(ops) - idx
		}
		if idx+want > len(ops) {
			want = len(ops) - idx
		}
		out[i] = ops[idx : idx+want]
		idx += want
	}
	return out
}

// rebuildDeltas clones the source deltas with their transformed operations
// and restamps base versions sequentially from start.
func rebuildDeltas(src []*Delta, ops [][]Operation, start int) []*Delta {
	version := start
	out := make([]*Delta, 0, len(src))
	for i, d := range src {
		clone := &Delta{ID: d.ID, Name: d.Name}
		for _, op := range ops[i] {
			op.setBase(version)
			version++
			clone.AddOperation(op)
		}
		out = append(out, clone)
	}
	return out
}
