package richdoc

import (
	"iter"
	"sort"
	"strings"
)

// MarkerCollection event names.
const (
	// EventMarkerSet fires with a MarkerEvent when a marker is added or
	// re-added with a new range.
	EventMarkerSet = "set"
	// EventMarkerRemove fires with a MarkerEvent when a marker is removed,
	// before the marker is destroyed.
	EventMarkerRemove = "remove"
)

// MarkerEvent is the payload of marker collection events.
type MarkerEvent struct {
	Name   string
	Marker *Marker
}

// Marker is a named annotation over document content, backed by a live range
// so it survives arbitrary edits. Markers are created and destroyed only by
// their MarkerCollection; once destroyed, every accessor fails.
type Marker struct {
	name      string
	liveRange *LiveRange
	managed   bool
	destroyed bool
}

// Name returns the marker name, namespaced by ':'.
func (m *Marker) Name() (string, error) {
	if m.destroyed {
		return "", &MarkerDestroyedError{Name: m.name}
	}
	return m.name, nil
}

// Range returns the current extent of the marker.
func (m *Marker) Range() (Range, error) {
	if m.destroyed {
		return Range{}, &MarkerDestroyedError{Name: m.name}
	}
	return m.liveRange.Range(), nil
}

// ManagedUsingOperations reports whether range changes of this marker are
// recorded as MarkerOperations, making the marker part of undo and
// transformation.
func (m *Marker) ManagedUsingOperations() (bool, error) {
	if m.destroyed {
		return false, &MarkerDestroyedError{Name: m.name}
	}
	return m.managed, nil
}

func (m *Marker) destroy() {
	m.liveRange.Detach()
	m.destroyed = true
}

// MarkerCollection owns every marker of a document. Names are unique; the
// "prefix:rest" naming convention groups related markers.
type MarkerCollection struct {
	Emitter

	doc     *Document
	markers map[string]*Marker
}

func newMarkerCollection(doc *Document) *MarkerCollection {
	return &MarkerCollection{doc: doc, markers: make(map[string]*Marker)}
}

// Get returns the marker stored under name, or nil.
func (c *MarkerCollection) Get(name string) *Marker { return c.markers[name] }

// Has reports whether a marker exists under name.
func (c *MarkerCollection) Has(name string) bool { return c.markers[name] != nil }

// set adds a marker or moves an existing one. Setting the same range and
// managed flag again is idempotent: no event fires and the existing marker is
// returned. Otherwise the old marker is removed (firing EventMarkerRemove)
// and a fresh one created (firing EventMarkerSet).
func (c *MarkerCollection) set(name string, r Range, managed bool) *Marker {
	if existing := c.markers[name]; existing != nil {
		current, _ := existing.Range()
		if current.IsEqual(r) && existing.managed == managed {
			return existing
		}
		c.remove(name)
	}
	liveRange, err := NewLiveRange(r)
	if err != nil {
		return nil
	}
	marker := &Marker{name: name, liveRange: liveRange, managed: managed}
	c.markers[name] = marker
	c.Fire(EventMarkerSet, MarkerEvent{Name: name, Marker: marker})
	return marker
}

// remove destroys the marker stored under name and reports whether one
// existed. EventMarkerRemove fires while the marker is still readable.
func (c *MarkerCollection) remove(name string) bool {
	marker := c.markers[name]
	if marker == nil {
		return false
	}
	delete(c.markers, name)
	c.Fire(EventMarkerRemove, MarkerEvent{Name: name, Marker: marker})
	marker.destroy()
	return true
}

// names returns marker names in deterministic order.
func (c *MarkerCollection) names() []string {
	names := make([]string, 0, len(c.markers))
	for name := range c.markers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Markers returns a lazy, restartable sequence of all markers in name order.
func (c *MarkerCollection) Markers() iter.Seq[*Marker] {
	return func(yield func(*Marker) bool) {
		for _, name := range c.names() {
			if m := c.markers[name]; m != nil {
				if !yield(m) {
					return
				}
			}
		}
	}
}

// MarkersAtPosition returns the markers whose range contains pos.
func (c *MarkerCollection) MarkersAtPosition(pos Position) iter.Seq[*Marker] {
	return func(yield func(*Marker) bool) {
		for _, name := range c.names() {
			m := c.markers[name]
			if m == nil {
				continue
			}
			r, err := m.Range()
			if err != nil || !r.ContainsPosition(pos) {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// MarkersGroup returns the markers named "prefix:*".
func (c *MarkerCollection) MarkersGroup(prefix string) iter.Seq[*Marker] {
	return func(yield func(*Marker) bool) {
		for _, name := range c.names() {
			if !strings.HasPrefix(name, prefix+":") {
				continue
			}
			if m := c.markers[name]; m != nil {
				if !yield(m) {
					return
				}
			}
		}
	}
}
