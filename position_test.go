package richdoc

import (
	"testing"
)

func mustPos(t *testing.T, root Node, path ...int) Position {
	t.Helper()
	p, err := NewPosition(root, path)
	if err != nil {
		t.Fatalf("NewPosition(%v) error = %v", path, err)
	}
	return p
}

func fixtureFragment(t *testing.T, data string) *DocumentFragment {
	t.Helper()
	frag, _, err := ParseFixture(data)
	if err != nil {
		t.Fatalf("ParseFixture(%q) error = %v", data, err)
	}
	return frag
}

func TestPositionCompareWith(t *testing.T) {
	frag := fixtureFragment(t, "<p>foobar</p><p>xyz</p>")
	other := fixtureFragment(t, "<p>foobar</p>")

	tests := []struct {
		name string
		a, b Position
		want PositionRelation
	}{
		{"same", mustPos(t, frag, 0, 2), mustPos(t, frag, 0, 2), RelationSame},
		{"before in parent", mustPos(t, frag, 0, 1), mustPos(t, frag, 0, 4), RelationBefore},
		{"after across parents", mustPos(t, frag, 1, 0), mustPos(t, frag, 0, 5), RelationAfter},
		{"prefix is before", mustPos(t, frag, 0), mustPos(t, frag, 0, 0), RelationBefore},
		{"different roots", mustPos(t, frag, 0, 1), mustPos(t, other, 0, 1), RelationDifferentRoots},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.CompareWith(tt.b); got != tt.want {
				t.Errorf("CompareWith() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionBeforeAndAfterNode(t *testing.T) {
	frag := fixtureFragment(t, "<p>foo</p><p>bar</p>")
	second := frag.Child(1)

	before := PositionBefore(second)
	if !pathsEqual(before.Path(), []int{1}) {
		t.Errorf("PositionBefore() path = %v, want [1]", before.Path())
	}
	after := PositionAfter(second)
	if !pathsEqual(after.Path(), []int{2}) {
		t.Errorf("PositionAfter() path = %v, want [2]", after.Path())
	}
	if got := before.CompareWith(after); got != RelationBefore {
		t.Errorf("CompareWith() = %v, want RelationBefore", got)
	}
}

func TestPositionNeighbours(t *testing.T) {
	frag := fixtureFragment(t, "<p>foo</p><p>bar</p>")

	p := mustPos(t, frag, 1)
	after := p.NodeAfter()
	el, ok := after.(*Element)
	if !ok || el.Name() != "p" {
		t.Fatalf("NodeAfter() = %v, want second paragraph", after)
	}

	inText := mustPos(t, frag, 0, 1)
	txt := inText.TextNode()
	if txt == nil || txt.Data() != "foo" {
		t.Fatalf("TextNode() = %v, want text 'foo'", txt)
	}
	if inText.NodeAfter() != nil {
		t.Errorf("NodeAfter() inside text should be nil")
	}
}

func TestPositionTransformedByInsertion(t *testing.T) {
	frag := fixtureFragment(t, "<p>foobar</p><p>xyz</p>")

	tests := []struct {
		name         string
		pos          Position
		insert       Position
		howMany      int
		insertBefore bool
		want         []int
	}{
		{"before shifts", mustPos(t, frag, 0, 2), mustPos(t, frag, 0, 0), 2, false, []int{0, 4}},
		{"after stays", mustPos(t, frag, 0, 2), mustPos(t, frag, 0, 4), 2, false, []int{0, 2}},
		{"at boundary sticks", mustPos(t, frag, 0, 2), mustPos(t, frag, 0, 2), 2, false, []int{0, 2}},
		{"at boundary pushed", mustPos(t, frag, 0, 2), mustPos(t, frag, 0, 2), 2, true, []int{0, 4}},
		{"ancestor shifted", mustPos(t, frag, 1, 2), mustPos(t, frag, 0), 1, false, []int{2, 2}},
		{"ancestor at offset shifted", mustPos(t, frag, 1, 2), mustPos(t, frag, 1), 1, false, []int{2, 2}},
		{"ancestor after stays", mustPos(t, frag, 0, 2), mustPos(t, frag, 1), 3, false, []int{0, 2}},
		{"other parent stays", mustPos(t, frag, 1, 1), mustPos(t, frag, 0, 0), 2, false, []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pos.TransformedByInsertion(tt.insert, tt.howMany, tt.insertBefore)
			if !pathsEqual(got.Path(), tt.want) {
				t.Errorf("TransformedByInsertion() path = %v, want %v", got.Path(), tt.want)
			}
		})
	}
}

func TestPositionTransformedByDeletion(t *testing.T) {
	frag := fixtureFragment(t, "<p>foobar</p><p>xyz</p>")

	tests := []struct {
		name    string
		pos     Position
		del     Position
		howMany int
		want    []int
		wantOK  bool
	}{
		{"before shifts back", mustPos(t, frag, 0, 4), mustPos(t, frag, 0, 0), 2, []int{0, 2}, true},
		{"after stays", mustPos(t, frag, 0, 1), mustPos(t, frag, 0, 3), 2, []int{0, 1}, true},
		{"inside removed", mustPos(t, frag, 0, 2), mustPos(t, frag, 0, 1), 3, nil, false},
		{"ancestor removed", mustPos(t, frag, 1, 2), mustPos(t, frag, 1), 1, nil, false},
		{"ancestor shifted", mustPos(t, frag, 1, 2), mustPos(t, frag, 0), 1, []int{0, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.pos.TransformedByDeletion(tt.del, tt.howMany)
			if ok != tt.wantOK {
				t.Fatalf("TransformedByDeletion() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !pathsEqual(got.Path(), tt.want) {
				t.Errorf("TransformedByDeletion() path = %v, want %v", got.Path(), tt.want)
			}
		})
	}
}

func TestPositionTransformedByMove(t *testing.T) {
	frag := fixtureFragment(t, "<p>foobar</p><p>xyz</p>")

	tests := []struct {
		name    string
		pos     Position
		source  Position
		target  Position
		howMany int
		want    []int
	}{
		{
			"after removed content shifts back",
			mustPos(t, frag, 0, 2), mustPos(t, frag, 0, 0), mustPos(t, frag, 1, 0), 1,
			[]int{0, 1},
		},
		{
			"inside moved content follows it",
			mustPos(t, frag, 0, 1), mustPos(t, frag, 0, 0), mustPos(t, frag, 1, 0), 2,
			[]int{1, 1},
		},
		{
			"untouched position stays",
			mustPos(t, frag, 1, 2), mustPos(t, frag, 0, 0), mustPos(t, frag, 0, 4), 2,
			[]int{1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pos.TransformedByMove(tt.source, tt.target, tt.howMany, false)
			if !pathsEqual(got.Path(), tt.want) {
				t.Errorf("TransformedByMove() path = %v, want %v", got.Path(), tt.want)
			}
		})
	}
}

func TestPositionUntouchedByUnrelatedOperation(t *testing.T) {
	frag := fixtureFragment(t, "<p>foo</p><p>bar</p><p>baz</p>")
	p := mustPos(t, frag, 1, 2)

	ins := p.TransformedByInsertion(mustPos(t, frag, 2, 0), 5, false)
	if !pathsEqual(ins.Path(), p.Path()) {
		t.Errorf("insertion elsewhere moved position to %v", ins.Path())
	}
	mv := p.TransformedByMove(mustPos(t, frag, 2, 0), mustPos(t, frag, 0, 0), 2, false)
	if !pathsEqual(mv.Path(), p.Path()) {
		t.Errorf("move elsewhere moved position to %v", mv.Path())
	}
}
