package richdoc

import "testing"

func TestDeleteContentAcrossBlocks(t *testing.T) {
	tests := []struct {
		name  string
		opts  DeleteContentOptions
		want  string
		input string
	}{
		{
			name:  "unmerged leaves both blocks",
			input: "<p>f[oo</p><p>ba]r</p>",
			opts:  DeleteContentOptions{},
			want:  "<p>f[]</p><p>r</p>",
		},
		{
			name:  "merge joins the blocks",
			input: "<p>f[oo</p><p>ba]r</p>",
			opts:  DeleteContentOptions{Merge: true},
			want:  "<p>f[]r</p>",
		},
		{
			name:  "inside one block",
			input: "<p>f[oob]ar</p>",
			opts:  DeleteContentOptions{},
			want:  "<p>f[]ar</p>",
		},
		{
			name:  "collapsed selection is a no-op",
			input: "<p>fo[]obar</p>",
			opts:  DeleteContentOptions{},
			want:  "<p>fo[]obar</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(nil)
			if err := SetModelData(m, tt.input); err != nil {
				t.Fatalf("SetModelData() error = %v", err)
			}
			if err := m.DeleteContent(m.Document().Selection(), tt.opts); err != nil {
				t.Fatalf("DeleteContent() error = %v", err)
			}
			if got := GetModelData(m); got != tt.want {
				t.Errorf("GetModelData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModifySelectionBackward(t *testing.T) {
	m := NewModel(nil)
	if err := SetModelData(m, "<p>foo[]bar</p>"); err != nil {
		t.Fatalf("SetModelData() error = %v", err)
	}

	sel := m.Document().Selection()
	err := m.ModifySelection(sel, ModifySelectionOptions{Direction: DirectionBackward})
	if err != nil {
		t.Fatalf("ModifySelection() error = %v", err)
	}

	if !sel.IsBackward() {
		t.Errorf("IsBackward() = false after backward extension")
	}
	r, _ := sel.FirstRange()
	if !pathsEqual(r.Start.Path(), []int{0, 2}) || !pathsEqual(r.End.Path(), []int{0, 3}) {
		t.Errorf("selection = %v..%v, want [0 2]..[0 3]", r.Start.Path(), r.End.Path())
	}
	if got := GetModelData(m); got != "<p>fo{o}bar</p>" {
		t.Errorf("GetModelData() = %q, want %q", got, "<p>fo{o}bar</p>")
	}
}

func TestModifySelectionForward(t *testing.T) {
	m := NewModel(nil)
	if err := SetModelData(m, "<p>foo[]bar</p>"); err != nil {
		t.Fatalf("SetModelData() error = %v", err)
	}

	sel := m.Document().Selection()
	if err := m.ModifySelection(sel, ModifySelectionOptions{}); err != nil {
		t.Fatalf("ModifySelection() error = %v", err)
	}
	if got := GetModelData(m); got != "<p>foo[b]ar</p>" {
		t.Errorf("GetModelData() = %q, want %q", got, "<p>foo[b]ar</p>")
	}
	if sel.IsBackward() {
		t.Errorf("IsBackward() = true after forward extension")
	}
}

func TestInsertContentReplacesSelection(t *testing.T) {
	m := NewModel(nil)
	if err := SetModelData(m, "<p>f[oob]ar</p>"); err != nil {
		t.Fatalf("SetModelData() error = %v", err)
	}

	r, err := m.InsertContent(NewText("X", nil), m.Document().Selection())
	if err != nil {
		t.Fatalf("InsertContent() error = %v", err)
	}
	if got := GetModelData(m); got != "<p>fX[]ar</p>" {
		t.Errorf("GetModelData() = %q, want %q", got, "<p>fX[]ar</p>")
	}
	if !pathsEqual(r.Start.Path(), []int{0, 1}) || !pathsEqual(r.End.Path(), []int{0, 2}) {
		t.Errorf("inserted range = %v..%v, want [0 1]..[0 2]", r.Start.Path(), r.End.Path())
	}
}

func TestInsertContentFragment(t *testing.T) {
	m := NewModel(nil)
	if err := SetModelData(m, "<p>ab</p>"); err != nil {
		t.Fatalf("SetModelData() error = %v", err)
	}
	sel := NewSelection()
	sel.Collapse(mustPos(t, m.Document().Root(MainRootName), 1))

	frag := fixtureFragment(t, "<p>x</p><p>y</p>")
	if _, err := m.InsertContent(frag, sel); err != nil {
		t.Fatalf("InsertContent() error = %v", err)
	}
	if got := Stringify(m.Document().Root(MainRootName), nil); got != "<p>ab</p><p>x</p><p>y</p>" {
		t.Errorf("tree = %q, want %q", got, "<p>ab</p><p>x</p><p>y</p>")
	}
}

func TestGetSelectedContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"inside one text", "<p>f[oob]ar</p>", "oob"},
		{"across blocks", "<p>f[oo</p><p>ba]r</p>", "<p>oo</p><p>ba</p>"},
		{"whole element", "<p>ab</p>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(nil)
			if err := SetModelData(m, tt.input); err != nil {
				t.Fatalf("SetModelData() error = %v", err)
			}
			frag, err := m.GetSelectedContent(m.Document().Selection())
			if err != nil {
				t.Fatalf("GetSelectedContent() error = %v", err)
			}
			if got := Stringify(frag, nil); got != tt.want {
				t.Errorf("Stringify(selected) = %q, want %q", got, tt.want)
			}
			// The document itself must stay untouched.
			if got := GetModelData(m); got != tt.input {
				t.Errorf("document after GetSelectedContent = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestHasContent(t *testing.T) {
	m := NewModel(nil)
	if err := SetModelData(m, "<p>foo</p><p></p>"); err != nil {
		t.Fatalf("SetModelData() error = %v", err)
	}
	root := m.Document().Root(MainRootName)

	full := RangeIn(root, 0, root.MaxOffset())
	if !m.HasContent(full, HasContentOptions{}) {
		t.Errorf("HasContent(whole root) = false")
	}

	emptyBlock := rangeBetween(t, root, []int{1}, []int{2})
	if !m.HasContent(emptyBlock, HasContentOptions{}) {
		t.Errorf("HasContent(empty element) = false, want elements to count by default")
	}
	if m.HasContent(emptyBlock, HasContentOptions{IgnoreEmptyElements: true}) {
		t.Errorf("HasContent(empty element, ignore empties) = true")
	}

	p0 := rangeBetween(t, root, []int{0}, []int{1})
	if !m.HasContent(p0, HasContentOptions{IgnoreEmptyElements: true}) {
		t.Errorf("HasContent(block with text, ignore empties) = false")
	}
}
