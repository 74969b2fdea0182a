package richdoc

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fixture codec: a human-readable description of tree content plus a
// selection, used heavily in tests and dev tooling. Elements use HTML-like
// tags, text is literal, and the selection is marked with [ and ] (forward)
// or { and } (backward), e.g. "<p>f[oo</p><p>ba]r</p>".

const (
	forwardStart  = '['
	forwardEnd    = ']'
	backwardStart = '{'
	backwardEnd   = '}'
)

type fixtureMark struct {
	parent Container
	offset int
}

type fixtureState struct {
	start    *fixtureMark
	end      *fixtureMark
	backward bool
}

// ParseFixture builds a fragment and optional selection from a fixture
// string.
func ParseFixture(data string) (*DocumentFragment, *Selection, error) {
	frag := NewDocumentFragment()
	sel, err := parseFixtureInto(frag, data)
	return frag, sel, err
}

// SetModelData replaces the content of the model's main root with the
// fixture content and applies its selection, if any, to the document
// selection. Goes through a regular change block, so the usual operations
// and events are produced.
func SetModelData(m *Model, data string) error {
	root := m.Document().Root(MainRootName)
	return m.Change(func(w *Writer) error {
		if root.MaxOffset() > 0 {
			if err := w.Remove(RangeIn(root, 0, root.MaxOffset())); err != nil {
				return err
			}
		}
		frag, sel, err := ParseFixture(data)
		if err != nil {
			return err
		}
		// Remember selection boundaries as plain paths; they stay valid in
		// the root because the fragment's children are inserted in order.
		var startPath, endPath []int
		backward := false
		if sel != nil {
			if r, ok := sel.FirstRange(); ok {
				startPath, endPath = r.Start.Path(), r.End.Path()
				backward = sel.IsBackward()
			}
		}
		if frag.ChildCount() > 0 {
			if err := w.InsertNodes(frag.Children(), PositionAt(root, 0)); err != nil {
				return err
			}
		}
		if startPath != nil {
			start, err := NewPosition(root, startPath)
			if err != nil {
				return err
			}
			end, err := NewPosition(root, endPath)
			if err != nil {
				return err
			}
			m.Document().Selection().SetTo(Range{Start: start, End: end}, backward)
		}
		return nil
	})
}

// GetModelData renders the model's main root and document selection back to
// a fixture string.
func GetModelData(m *Model) string {
	return Stringify(m.Document().Root(MainRootName), m.Document().Selection())
}

func parseFixtureInto(dst Container, data string) (*Selection, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(data), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	state := &fixtureState{}
	for _, n := range parsed {
		if err := buildFixtureNode(dst, n, state); err != nil {
			return nil, err
		}
	}
	if state.start == nil && state.end == nil {
		return nil, nil
	}
	if state.start == nil || state.end == nil {
		return nil, fmt.Errorf("fixture has an unpaired selection delimiter")
	}
	r, err := NewRange(
		PositionAt(state.start.parent, state.start.offset),
		PositionAt(state.end.parent, state.end.offset),
	)
	if err != nil {
		return nil, fmt.Errorf("fixture selection: %w", err)
	}
	sel := NewSelection()
	sel.SetTo(r, state.backward)
	return sel, nil
}

func buildFixtureNode(dst Container, n *html.Node, state *fixtureState) error {
	switch n.Type {
	case html.ElementNode:
		attrs := make(map[string]any, len(n.Attr))
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		el := NewElement(n.Data, attrs)
		dst.insertAt(dst.MaxOffset(), []Node{el})
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := buildFixtureNode(el, c, state); err != nil {
				return err
			}
		}
		return nil
	case html.TextNode:
		return buildFixtureText(dst, n.Data, state)
	default:
		// Comments and the like have no model equivalent.
		return nil
	}
}

func buildFixtureText(dst Container, data string, state *fixtureState) error {
	var plain strings.Builder
	for _, r := range data {
		switch r {
		case forwardStart, backwardStart:
			if state.start != nil {
				return fmt.Errorf("fixture has more than one selection start")
			}
			flushFixtureText(dst, &plain)
			state.start = &fixtureMark{parent: dst, offset: dst.MaxOffset()}
			state.backward = r == backwardStart
		case forwardEnd, backwardEnd:
			if state.end != nil {
				return fmt.Errorf("fixture has more than one selection end")
			}
			flushFixtureText(dst, &plain)
			state.end = &fixtureMark{parent: dst, offset: dst.MaxOffset()}
		default:
			plain.WriteRune(r)
		}
	}
	flushFixtureText(dst, &plain)
	return nil
}

func flushFixtureText(dst Container, plain *strings.Builder) {
	if plain.Len() == 0 {
		return
	}
	dst.insertAt(dst.MaxOffset(), []Node{NewText(plain.String(), nil)})
	plain.Reset()
}

// Stringify renders the content of root as a fixture string, weaving in the
// selection delimiters when sel has a range anchored under root.
func Stringify(root Container, sel *Selection) string {
	var startPath, endPath []int
	openMark, closeMark := forwardStart, forwardEnd
	if sel != nil {
		if r, ok := sel.FirstRange(); ok {
			startPath, endPath = r.Start.Path(), r.End.Path()
			if sel.IsBackward() {
				openMark, closeMark = backwardStart, backwardEnd
			}
		}
	}
	var b strings.Builder
	writeFixtureChildren(&b, root, nil, startPath, endPath, openMark, closeMark)
	return b.String()
}

func writeFixtureChildren(b *strings.Builder, c Container, path, startPath, endPath []int, openMark, closeMark rune) {
	offset := 0
	writeFixtureMark(b, append(path, offset), startPath, endPath, openMark, closeMark)
	for _, child := range c.Children() {
		switch n := child.(type) {
		case *Text:
			for i, r := range []rune(n.Data()) {
				if i > 0 {
					writeFixtureMark(b, append(path, offset), startPath, endPath, openMark, closeMark)
				}
				b.WriteString(html.EscapeString(string(r)))
				offset++
			}
		default:
			el := child.(*Element)
			b.WriteByte('<')
			b.WriteString(el.Name())
			for _, key := range sortedAttrKeys(el) {
				val, _ := el.Attr(key)
				fmt.Fprintf(b, " %s=%q", key, fmt.Sprint(val))
			}
			b.WriteByte('>')
			writeFixtureChildren(b, el, append(path, offset), startPath, endPath, openMark, closeMark)
			b.WriteString("</")
			b.WriteString(el.Name())
			b.WriteByte('>')
			offset++
		}
		writeFixtureMark(b, append(path, offset), startPath, endPath, openMark, closeMark)
	}
}

func writeFixtureMark(b *strings.Builder, at, startPath, endPath []int, openMark, closeMark rune) {
	// Start before end when both boundaries share a spot (collapsed range).
	if startPath != nil && pathsEqual(at, startPath) {
		b.WriteRune(openMark)
	}
	if endPath != nil && pathsEqual(at, endPath) {
		b.WriteRune(closeMark)
	}
}

func sortedAttrKeys(el *Element) []string {
	keys := el.AttributeKeys()
	sort.Strings(keys)
	return keys
}
