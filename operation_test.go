package richdoc

import (
	"errors"
	"testing"
)

// seedDoc creates a document whose "main" root holds the fixture content,
// inserted through a single operation.
func seedDoc(t *testing.T, data string) (*Document, *RootElement) {
	t.Helper()
	doc := NewDocument(nil)
	root, err := doc.CreateRoot("$root", MainRootName)
	if err != nil {
		t.Fatalf("CreateRoot() error = %v", err)
	}
	if data != "" {
		frag := fixtureFragment(t, data)
		op := NewInsertOperation(PositionAt(root, 0), frag.Children(), doc.Version())
		if err := doc.ApplyOperation(op); err != nil {
			t.Fatalf("seeding ApplyOperation() error = %v", err)
		}
	}
	return doc, root
}

func TestFragmentAnchoredReversalRejected(t *testing.T) {
	frag := fixtureFragment(t, "<p>foo</p>")
	ins := NewInsertOperation(mustPos(t, frag, 0, 1), []Node{NewText("x", nil)}, 0)

	// No document owns the fragment, so the reversal has no graveyard to
	// target; it must still construct and then fail to apply anywhere.
	rev := ins.Reversed()

	doc, _ := seedDoc(t, "<p>foo</p>")
	var verr *ValidationError
	if err := doc.ApplyOperation(rev); !errors.As(err, &verr) {
		t.Fatalf("ApplyOperation(fragment-anchored op) error = %v, want ValidationError", err)
	}
	if doc.Version() != 1 {
		t.Errorf("Version() = %d, want untouched 1", doc.Version())
	}
}

func TestInsertOperationApplyAndReverse(t *testing.T) {
	doc, root := seedDoc(t, "<p>foo</p>")
	before := Stringify(root, nil)

	op := NewInsertOperation(mustPos(t, root, 0, 3), []Node{NewText("bar", nil)}, doc.Version())
	if err := doc.ApplyOperation(op); err != nil {
		t.Fatalf("ApplyOperation() error = %v", err)
	}
	if got := Stringify(root, nil); got != "<p>foobar</p>" {
		t.Errorf("after insert = %q, want %q", got, "<p>foobar</p>")
	}

	if err := doc.ApplyOperation(op.Reversed()); err != nil {
		t.Fatalf("ApplyOperation(reversed) error = %v", err)
	}
	if got := Stringify(root, nil); got != before {
		t.Errorf("after reverse = %q, want %q", got, before)
	}
	if doc.Version() != 3 {
		t.Errorf("version = %d, want 3", doc.Version())
	}
}

func TestRemoveOperationUsesGraveyard(t *testing.T) {
	doc, root := seedDoc(t, "<p>foobar</p>")
	p := root.Children()[0].(*Element)

	op := NewRemoveOperation(PositionAt(p, 3), 3, doc.Version())
	if err := doc.ApplyOperation(op); err != nil {
		t.Fatalf("ApplyOperation() error = %v", err)
	}
	if got := Stringify(root, nil); got != "<p>foo</p>" {
		t.Errorf("after remove = %q, want %q", got, "<p>foo</p>")
	}
	if got := Stringify(doc.Graveyard(), nil); got != "bar" {
		t.Errorf("graveyard = %q, want %q", got, "bar")
	}

	// Reversal is a reinsert: content comes back from the graveyard.
	if err := doc.ApplyOperation(op.Reversed()); err != nil {
		t.Fatalf("ApplyOperation(reversed) error = %v", err)
	}
	if got := Stringify(root, nil); got != "<p>foobar</p>" {
		t.Errorf("after reinsert = %q, want %q", got, "<p>foobar</p>")
	}
	if got := Stringify(doc.Graveyard(), nil); got != "" {
		t.Errorf("graveyard after reinsert = %q, want empty", got)
	}
}

func TestMoveOperationSameParent(t *testing.T) {
	doc, root := seedDoc(t, "<p>abc</p><p>z</p>")
	op := NewMoveOperation(mustPos(t, root, 0, 0), 2, mustPos(t, root, 0, 3), doc.Version())
	if err := doc.ApplyOperation(op); err != nil {
		t.Fatalf("ApplyOperation() error = %v", err)
	}
	if got := Stringify(root, nil); got != "<p>cab</p><p>z</p>" {
		t.Errorf("after move = %q, want %q", got, "<p>cab</p><p>z</p>")
	}
}

func TestMoveOperationValidate(t *testing.T) {
	doc, root := seedDoc(t, "<p>abc</p>")
	p := root.Children()[0].(*Element)

	tooMany := NewMoveOperation(PositionAt(p, 1), 5, PositionAt(root, 1), doc.Version())
	var verr *ValidationError
	if err := doc.ApplyOperation(tooMany); !errors.As(err, &verr) {
		t.Fatalf("ApplyOperation(short source) error = %v, want ValidationError", err)
	}

	intoItself := NewMoveOperation(PositionAt(root, 0), 1, PositionAt(p, 1), doc.Version())
	if err := doc.ApplyOperation(intoItself); !errors.As(err, &verr) {
		t.Fatalf("ApplyOperation(target inside moved content) error = %v, want ValidationError", err)
	}
}

func TestAttributeOperation(t *testing.T) {
	doc, root := seedDoc(t, "<p>foobar</p>")
	p := root.Children()[0].(*Element)

	set := NewAttributeOperation(RangeIn(p, 0, 3), "bold", nil, true, doc.Version())
	if err := doc.ApplyOperation(set); err != nil {
		t.Fatalf("ApplyOperation(set) error = %v", err)
	}
	bolded := p.Children()[0]
	if v, ok := bolded.Attr("bold"); !ok || v != true {
		t.Fatalf("bold = %v (%v), want true", v, ok)
	}
	// Setting split the text at the attribute boundary.
	if p.ChildCount() != 2 {
		t.Fatalf("ChildCount() = %d, want split into 2 text nodes", p.ChildCount())
	}

	stale := NewAttributeOperation(RangeIn(p, 0, 3), "bold", nil, false, doc.Version())
	var verr *ValidationError
	if err := doc.ApplyOperation(stale); !errors.As(err, &verr) {
		t.Fatalf("ApplyOperation(stale old value) error = %v, want ValidationError", err)
	}

	unset := set.Reversed()
	if err := doc.ApplyOperation(unset); err != nil {
		t.Fatalf("ApplyOperation(reversed) error = %v", err)
	}
	if _, ok := p.Children()[0].Attr("bold"); ok {
		t.Errorf("bold still present after reversal")
	}
}

func TestRenameOperation(t *testing.T) {
	doc, root := seedDoc(t, "<p>foo</p>")

	op := NewRenameOperation(mustPos(t, root, 0), "p", "h1", doc.Version())
	if err := doc.ApplyOperation(op); err != nil {
		t.Fatalf("ApplyOperation() error = %v", err)
	}
	if got := Stringify(root, nil); got != "<h1>foo</h1>" {
		t.Errorf("after rename = %q, want %q", got, "<h1>foo</h1>")
	}

	wrongOld := NewRenameOperation(mustPos(t, root, 0), "p", "h2", doc.Version())
	var verr *ValidationError
	if err := doc.ApplyOperation(wrongOld); !errors.As(err, &verr) {
		t.Fatalf("ApplyOperation(wrong old name) error = %v, want ValidationError", err)
	}
}

func TestRootAttributeOperation(t *testing.T) {
	doc, root := seedDoc(t, "")

	op := NewRootAttributeOperation(MainRootName, "lang", nil, "en", doc.Version())
	if err := doc.ApplyOperation(op); err != nil {
		t.Fatalf("ApplyOperation() error = %v", err)
	}
	if v, ok := root.Attr("lang"); !ok || v != "en" {
		t.Errorf("lang = %v (%v), want en", v, ok)
	}
	if err := doc.ApplyOperation(op.Reversed()); err != nil {
		t.Fatalf("ApplyOperation(reversed) error = %v", err)
	}
	if _, ok := root.Attr("lang"); ok {
		t.Errorf("lang still present after reversal")
	}
}

func TestDeltaReversedRestoresTree(t *testing.T) {
	doc, root := seedDoc(t, "<p>foo</p>")
	before := Stringify(root, nil)
	versionBefore := doc.Version()

	delta := NewDelta("insert")
	first := NewInsertOperation(mustPos(t, root, 0, 3), []Node{NewText("ba", nil)}, doc.Version())
	delta.AddOperation(first)
	if err := doc.ApplyOperation(first); err != nil {
		t.Fatalf("ApplyOperation() error = %v", err)
	}
	second := NewInsertOperation(mustPos(t, root, 0, 5), []Node{NewText("r", nil)}, doc.Version())
	delta.AddOperation(second)
	if err := doc.ApplyOperation(second); err != nil {
		t.Fatalf("ApplyOperation() error = %v", err)
	}
	if got := Stringify(root, nil); got != "<p>foobar</p>" {
		t.Fatalf("after delta = %q, want %q", got, "<p>foobar</p>")
	}

	for _, op := range delta.Reversed().Operations() {
		if err := doc.ApplyOperation(op); err != nil {
			t.Fatalf("ApplyOperation(reversed op) error = %v", err)
		}
	}
	if got := Stringify(root, nil); got != before {
		t.Errorf("after reversed delta = %q, want %q", got, before)
	}
	if want := versionBefore + 2*len(delta.Operations()); doc.Version() != want {
		t.Errorf("version = %d, want %d", doc.Version(), want)
	}
}
