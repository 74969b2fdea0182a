package richdoc

// Selection is an ordered set of ranges over document content plus a
// direction flag. The anchor is where the selection started and the focus is
// the boundary that moves when the selection is extended; in a backward
// selection the focus precedes the anchor.
type Selection struct {
	ranges   []Range
	backward bool
}

// NewSelection creates an empty selection.
func NewSelection() *Selection { return &Selection{} }

// SetTo replaces the selection with a single range.
func (s *Selection) SetTo(r Range, backward bool) {
	s.ranges = []Range{r}
	s.backward = backward
}

// SetRanges replaces the selection with the given ranges.
func (s *Selection) SetRanges(ranges []Range, backward bool) {
	s.ranges = append([]Range(nil), ranges...)
	s.backward = backward
}

// Collapse replaces the selection with a collapsed range at pos.
func (s *Selection) Collapse(pos Position) {
	s.SetTo(CollapsedRange(pos), false)
}

// Ranges returns the selection ranges in the order they were added.
func (s *Selection) Ranges() []Range { return append([]Range(nil), s.ranges...) }

// FirstRange returns the range whose start is earliest in the document.
func (s *Selection) FirstRange() (Range, bool) {
	if len(s.ranges) == 0 {
		return Range{}, false
	}
	first := s.ranges[0]
	for _, r := range s.ranges[1:] {
		if r.Start.IsBefore(first.Start) {
			first = r
		}
	}
	return first, true
}

// LastRange returns the range whose end is latest in the document.
func (s *Selection) LastRange() (Range, bool) {
	if len(s.ranges) == 0 {
		return Range{}, false
	}
	last := s.ranges[0]
	for _, r := range s.ranges[1:] {
		if r.End.IsAfter(last.End) {
			last = r
		}
	}
	return last, true
}

// IsCollapsed reports whether the selection is exactly one empty range.
func (s *Selection) IsCollapsed() bool {
	return len(s.ranges) == 1 && s.ranges[0].IsCollapsed()
}

// IsBackward reports whether the selection's focus precedes its anchor.
func (s *Selection) IsBackward() bool {
	return s.backward && !s.IsCollapsed()
}

// Anchor returns the stationary boundary of the most recently added range.
func (s *Selection) Anchor() (Position, bool) {
	if len(s.ranges) == 0 {
		return Position{}, false
	}
	r := s.ranges[len(s.ranges)-1]
	if s.backward {
		return r.End, true
	}
	return r.Start, true
}

// Focus returns the movable boundary of the most recently added range.
func (s *Selection) Focus() (Position, bool) {
	if len(s.ranges) == 0 {
		return Position{}, false
	}
	r := s.ranges[len(s.ranges)-1]
	if s.backward {
		return r.Start, true
	}
	return r.End, true
}
