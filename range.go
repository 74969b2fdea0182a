package richdoc

import "sort"

// Range is an ordered pair of positions describing the half-open interval
// [Start, End) over tree content. Start never comes after End.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range, validating order and shared root.
func NewRange(start, end Position) (Range, error) {
	switch start.CompareWith(end) {
	case RelationAfter:
		return Range{}, &UsageError{Reason: "range start must not be after its end"}
	case RelationDifferentRoots:
		return Range{}, &UsageError{Reason: "range start and end must share a root"}
	}
	return Range{Start: start, End: end}, nil
}

// RangeIn creates a flat range inside parent covering offsets [from, to).
func RangeIn(parent Container, from, to int) Range {
	return Range{Start: PositionAt(parent, from), End: PositionAt(parent, to)}
}

// CollapsedRange creates an empty range at pos.
func CollapsedRange(pos Position) Range {
	return Range{Start: pos, End: pos}
}

// RangeOn creates a range spanning exactly the given node.
func RangeOn(n Node) Range {
	return Range{Start: PositionBefore(n), End: PositionAfter(n)}
}

// RangeFromPositionAndShift creates a flat range starting at pos and covering
// howMany offsets.
func RangeFromPositionAndShift(pos Position, howMany int) Range {
	return Range{Start: pos, End: pos.ShiftedBy(howMany)}
}

// RangeFromRanges returns one range spanning from the earliest start to the
// latest end of the given ranges.
func RangeFromRanges(ranges []Range) Range {
	start := ranges[0].Start
	end := ranges[0].End
	for _, r := range ranges[1:] {
		if r.Start.IsBefore(start) {
			start = r.Start
		}
		if r.End.IsAfter(end) {
			end = r.End
		}
	}
	return Range{Start: start, End: end}
}

// rebindTo re-anchors both boundaries at doc's root of the same name.
func (r Range) rebindTo(doc *Document) (Range, bool) {
	start, ok := r.Start.rebindTo(doc)
	if !ok {
		return Range{}, false
	}
	end, ok := r.End.rebindTo(doc)
	if !ok {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

func (r Range) IsCollapsed() bool { return r.Start.IsEqual(r.End) }

// IsFlat reports whether both boundaries share a parent.
func (r Range) IsFlat() bool { return r.Start.sameParent(r.End) }

func (r Range) IsEqual(other Range) bool {
	return r.Start.IsEqual(other.Start) && r.End.IsEqual(other.End)
}

// ContainsPosition reports whether pos lies strictly inside the range.
func (r Range) ContainsPosition(pos Position) bool {
	return r.Start.IsBefore(pos) && pos.IsBefore(r.End)
}

// ContainsRange reports whether other lies entirely within this range.
// Boundaries may coincide unless other is collapsed.
func (r Range) ContainsRange(other Range) bool {
	if other.IsCollapsed() {
		return r.ContainsPosition(other.Start)
	}
	startOK := r.ContainsPosition(other.Start) || r.Start.IsEqual(other.Start)
	endOK := r.ContainsPosition(other.End) || r.End.IsEqual(other.End)
	return startOK && endOK
}

// IsIntersecting reports whether both ranges share at least one offset.
func (r Range) IsIntersecting(other Range) bool {
	if !sameRoot(r.Start.root, other.Start.root) {
		return false
	}
	return r.Start.IsBefore(other.End) && other.Start.IsBefore(r.End)
}

// Intersection returns the common part of both ranges.
func (r Range) Intersection(other Range) (Range, bool) {
	if !r.IsIntersecting(other) {
		return Range{}, false
	}
	start := r.Start
	if other.Start.IsAfter(start) {
		start = other.Start
	}
	end := r.End
	if other.End.IsBefore(end) {
		end = other.End
	}
	return Range{Start: start, End: end}, true
}

// Difference returns the parts of this range not covered by other: zero, one
// or two ranges.
func (r Range) Difference(other Range) []Range {
	if !r.IsIntersecting(other) {
		return []Range{r}
	}
	var out []Range
	if r.ContainsPosition(other.Start) {
		out = append(out, Range{Start: r.Start, End: other.Start})
	}
	if r.ContainsPosition(other.End) {
		out = append(out, Range{Start: other.End, End: r.End})
	}
	return out
}

// TransformedByInsertion returns this range as it looks after howMany offsets
// were inserted at insertPos. With spread set, an insertion inside the range
// splits it in two around the new content; otherwise the range expands over
// it. Content inserted exactly at a boundary stays outside the range when the
// boundary is the end, and inside when it is the start.
func (r Range) TransformedByInsertion(insertPos Position, howMany int, spread bool) []Range {
	if spread && r.ContainsPosition(insertPos) {
		return []Range{
			{Start: r.Start, End: insertPos},
			{
				Start: insertPos.ShiftedBy(howMany),
				End:   r.End.TransformedByInsertion(insertPos, howMany, false),
			},
		}
	}
	return []Range{{
		Start: r.Start.TransformedByInsertion(insertPos, howMany, false),
		End:   r.End.TransformedByInsertion(insertPos, howMany, false),
	}}
}

// TransformedByMove returns this range as it looks after howMany offsets were
// moved from source to target: one range, or two when the move tore the range
// apart. Touching results are joined back into one range.
func (r Range) TransformedByMove(source, target Position, howMany int) []Range {
	if howMany == 0 {
		return []Range{r}
	}
	if r.IsCollapsed() {
		pos := r.Start.TransformedByMove(source, target, howMany, true)
		return []Range{CollapsedRange(pos)}
	}

	moveRange := RangeFromPositionAndShift(source, howMany)
	insertPos, _ := target.TransformedByDeletion(source, howMany)

	diffs := r.Difference(moveRange)
	var difference *Range
	switch len(diffs) {
	case 1:
		s, _ := diffs[0].Start.TransformedByDeletion(source, howMany)
		e, _ := diffs[0].End.TransformedByDeletion(source, howMany)
		difference = &Range{Start: s, End: e}
	case 2:
		// Moved content was strictly inside: the remainder collapses around
		// the hole.
		e, _ := r.End.TransformedByDeletion(source, howMany)
		difference = &Range{Start: r.Start, End: e}
	}

	common, hasCommon := r.Intersection(moveRange)

	var out []Range
	if difference != nil {
		out = append(out, difference.TransformedByInsertion(insertPos, howMany, hasCommon)...)
	}
	if hasCommon {
		out = append(out, Range{
			Start: common.Start.combined(source, insertPos),
			End:   common.End.combined(source, insertPos),
		})
	}
	if len(out) == 0 {
		pos := r.Start.TransformedByMove(source, target, howMany, true)
		return []Range{CollapsedRange(pos)}
	}
	return joinTouchingRanges(out)
}

// joinTouchingRanges sorts ranges in document order and merges adjacent or
// overlapping neighbours.
func joinTouchingRanges(ranges []Range) []Range {
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start.IsBefore(ranges[j].Start)
	})
	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if sameRoot(last.End.Root(), r.Start.Root()) && !last.End.IsBefore(r.Start) {
			if r.End.IsAfter(last.End) {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// MinimalFlatRanges decomposes the range into the smallest set of flat
// ranges that together cover exactly the same content.
func (r Range) MinimalFlatRanges() []Range {
	var ranges []Range
	diffAt := commonPathLength(r.Start.path, r.End.path)
	pos := Position{root: r.Start.root, path: r.Start.Path()}

	// Walk up from the start boundary, covering each parent's tail.
	for len(pos.path) > diffAt+1 {
		parent, err := pos.ParentElement()
		if err != nil {
			return ranges
		}
		if howMany := parent.MaxOffset() - pos.Offset(); howMany != 0 {
			ranges = append(ranges, RangeFromPositionAndShift(pos, howMany))
		}
		up := append([]int(nil), pos.path[:len(pos.path)-1]...)
		up[len(up)-1]++
		pos = Position{root: pos.root, path: up}
	}
	// Walk down towards the end boundary, covering each level's head.
	for len(pos.path) <= len(r.End.path) {
		offset := r.End.path[len(pos.path)-1]
		if howMany := offset - pos.Offset(); howMany != 0 {
			ranges = append(ranges, RangeFromPositionAndShift(pos, howMany))
		}
		if len(pos.path) == len(r.End.path) {
			break
		}
		down := pos.Path()
		down[len(down)-1] = offset
		down = append(down, 0)
		pos = Position{root: pos.root, path: down}
	}
	return ranges
}

// items returns the nodes fully contained in the range at the range's own
// level, splitting text nodes at the range boundaries first so partially
// covered text contributes exactly its covered segment. Splits are
// offset-neutral.
func (r Range) items() []Node {
	var out []Node
	for _, fr := range r.MinimalFlatRanges() {
		parent, err := fr.Start.ParentElement()
		if err != nil {
			continue
		}
		parent.splitTextAt(fr.Start.Offset())
		parent.splitTextAt(fr.End.Offset())
		_, idx, _ := parent.childAtOffset(fr.Start.Offset())
		offset := fr.Start.Offset()
		for idx < parent.ChildCount() && offset < fr.End.Offset() {
			child := parent.Child(idx)
			out = append(out, child)
			offset += child.OffsetSize()
			idx++
		}
	}
	return out
}

// overlappingNodes returns every node at least partially covered by the
// range, without mutating the tree. Used by precondition checks.
func (r Range) overlappingNodes() []Node {
	var out []Node
	for _, fr := range r.MinimalFlatRanges() {
		parent, err := fr.Start.ParentElement()
		if err != nil {
			continue
		}
		offset := 0
		for _, child := range parent.Children() {
			size := child.OffsetSize()
			if offset < fr.End.Offset() && offset+size > fr.Start.Offset() {
				out = append(out, child)
			}
			offset += size
		}
	}
	return out
}
