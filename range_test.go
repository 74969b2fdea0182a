package richdoc

import "testing"

func rangeBetween(t *testing.T, root Node, startPath, endPath []int) Range {
	t.Helper()
	r, err := NewRange(mustPos(t, root, startPath...), mustPos(t, root, endPath...))
	if err != nil {
		t.Fatalf("NewRange(%v, %v) error = %v", startPath, endPath, err)
	}
	return r
}

func TestRangePredicates(t *testing.T) {
	frag := fixtureFragment(t, "<p>foobar</p><p>xyz</p>")
	r := rangeBetween(t, frag, []int{0, 1}, []int{0, 5})

	if !r.ContainsPosition(mustPos(t, frag, 0, 3)) {
		t.Errorf("ContainsPosition(interior) = false")
	}
	if r.ContainsPosition(r.Start) || r.ContainsPosition(r.End) {
		t.Errorf("ContainsPosition must exclude both boundaries")
	}
	inner := rangeBetween(t, frag, []int{0, 2}, []int{0, 4})
	if !r.ContainsRange(inner) {
		t.Errorf("ContainsRange(inner) = false")
	}
	disjoint := rangeBetween(t, frag, []int{1, 0}, []int{1, 2})
	if r.IsIntersecting(disjoint) {
		t.Errorf("IsIntersecting(disjoint) = true")
	}
	if !r.IsFlat() {
		t.Errorf("IsFlat() = false for a single-parent range")
	}
	deep := rangeBetween(t, frag, []int{0, 1}, []int{1, 1})
	if deep.IsFlat() {
		t.Errorf("IsFlat() = true for a range crossing parents")
	}
}

func TestRangeIntersectionAndDifference(t *testing.T) {
	frag := fixtureFragment(t, "<p>foobar</p>")
	r := rangeBetween(t, frag, []int{0, 1}, []int{0, 5})
	other := rangeBetween(t, frag, []int{0, 3}, []int{0, 6})

	common, ok := r.Intersection(other)
	if !ok {
		t.Fatalf("Intersection() ok = false")
	}
	if common.Start.Offset() != 3 || common.End.Offset() != 5 {
		t.Errorf("Intersection() = [%d,%d), want [3,5)", common.Start.Offset(), common.End.Offset())
	}

	diff := r.Difference(other)
	if len(diff) != 1 || diff[0].Start.Offset() != 1 || diff[0].End.Offset() != 3 {
		t.Errorf("Difference() = %v, want single [1,3)", diff)
	}

	hole := rangeBetween(t, frag, []int{0, 2}, []int{0, 4})
	split := r.Difference(hole)
	if len(split) != 2 {
		t.Fatalf("Difference() with interior hole yields %d ranges, want 2", len(split))
	}
}

func TestRangeTransformedByInsertion(t *testing.T) {
	frag := fixtureFragment(t, "<p>foobar</p>")
	r := rangeBetween(t, frag, []int{0, 1}, []int{0, 4})

	spread := r.TransformedByInsertion(mustPos(t, frag, 0, 2), 2, true)
	if len(spread) != 2 {
		t.Fatalf("spread insertion yields %d ranges, want 2", len(spread))
	}
	if spread[0].End.Offset() != 2 || spread[1].Start.Offset() != 4 || spread[1].End.Offset() != 6 {
		t.Errorf("spread ranges = %v, want [1,2) and [4,6)", spread)
	}

	expand := r.TransformedByInsertion(mustPos(t, frag, 0, 2), 2, false)
	if len(expand) != 1 || expand[0].End.Offset() != 6 {
		t.Errorf("expanding insertion = %v, want single [1,6)", expand)
	}

	atEnd := r.TransformedByInsertion(mustPos(t, frag, 0, 4), 2, true)
	if len(atEnd) != 1 || atEnd[0].End.Offset() != 4 {
		t.Errorf("insertion at end boundary = %v, want untouched [1,4)", atEnd)
	}
}

func TestRangeMinimalFlatRanges(t *testing.T) {
	frag := fixtureFragment(t, "<p>foo</p><p>bar</p>")
	r := rangeBetween(t, frag, []int{0, 1}, []int{1, 2})

	flat := r.MinimalFlatRanges()
	if len(flat) != 2 {
		t.Fatalf("MinimalFlatRanges() yields %d ranges, want 2", len(flat))
	}
	if !pathsEqual(flat[0].Start.Path(), []int{0, 1}) || !pathsEqual(flat[0].End.Path(), []int{0, 3}) {
		t.Errorf("first flat range = %v..%v, want [0 1]..[0 3]", flat[0].Start.Path(), flat[0].End.Path())
	}
	if !pathsEqual(flat[1].Start.Path(), []int{1, 0}) || !pathsEqual(flat[1].End.Path(), []int{1, 2}) {
		t.Errorf("second flat range = %v..%v, want [1 0]..[1 2]", flat[1].Start.Path(), flat[1].End.Path())
	}

	already := rangeBetween(t, frag, []int{0, 0}, []int{0, 2})
	flat = already.MinimalFlatRanges()
	if len(flat) != 1 || !flat[0].IsEqual(already) {
		t.Errorf("flat range should decompose to itself, got %v", flat)
	}
}

func TestRangeTransformedByMoveSplitsAndFollows(t *testing.T) {
	frag := fixtureFragment(t, "<p>abcdef</p><p>z</p>")
	p0 := mustPos(t, frag, 0, 0)

	// Moving [0,3) out of the parent leaves [2,5) holding only its tail.
	r := rangeBetween(t, frag, []int{0, 2}, []int{0, 5})
	got := r.TransformedByMove(p0, mustPos(t, frag, 1, 0), 3)
	if len(got) != 2 {
		t.Fatalf("TransformedByMove() yields %d ranges, want remainder and moved part", len(got))
	}

	// A range fully inside the moved block follows it.
	inside := rangeBetween(t, frag, []int{0, 1}, []int{0, 3})
	got = inside.TransformedByMove(p0, mustPos(t, frag, 1, 0), 3)
	if len(got) != 1 {
		t.Fatalf("TransformedByMove() of contained range yields %d ranges, want 1", len(got))
	}
	if !pathsEqual(got[0].Start.Path(), []int{1, 1}) || !pathsEqual(got[0].End.Path(), []int{1, 3}) {
		t.Errorf("contained range moved to %v..%v, want [1 1]..[1 3]", got[0].Start.Path(), got[0].End.Path())
	}
}
