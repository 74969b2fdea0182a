package richdoc

import "sort"

// Priority orders listeners of a single event. Higher priorities run first;
// listeners of equal priority run in registration order.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
)

// EventInfo accompanies every fired event. A listener may call Stop to keep
// the event from reaching lower-priority listeners (and default handlers
// registered at PriorityLowest).
type EventInfo struct {
	Name    string
	Source  *Emitter
	stopped bool
}

// Stop prevents the event from being delivered to any remaining listener.
func (ev *EventInfo) Stop() {
	ev.stopped = true
}

// Listener receives an event and its payload. The payload type is event
// specific and documented on the event name constant.
type Listener func(ev *EventInfo, data any)

type listenerEntry struct {
	id       int
	priority Priority
	fn       Listener
}

type delegation struct {
	name   string // event name, or "*" for all events
	target *Emitter
}

// Emitter is the shared observable capability composed into Document, Model
// and MarkerCollection. The zero value is ready to use.
type Emitter struct {
	listeners   map[string][]listenerEntry
	delegations []delegation
	nextID      int
}

// On registers fn for the named event at PriorityNormal and returns a handle
// for Off.
func (e *Emitter) On(name string, fn Listener) int {
	return e.OnPriority(name, PriorityNormal, fn)
}

// OnPriority registers fn for the named event at the given priority.
func (e *Emitter) OnPriority(name string, priority Priority, fn Listener) int {
	if e.listeners == nil {
		e.listeners = make(map[string][]listenerEntry)
	}
	e.nextID++
	entries := append(e.listeners[name], listenerEntry{id: e.nextID, priority: priority, fn: fn})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})
	e.listeners[name] = entries
	return e.nextID
}

// Off removes the listener registered under the given handle.
func (e *Emitter) Off(name string, id int) {
	entries := e.listeners[name]
	for i, entry := range entries {
		if entry.id == id {
			e.listeners[name] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Fire delivers the named event to listeners in priority order, then re-fires
// it on every delegation target. It returns the EventInfo so callers can see
// whether a listener stopped propagation.
func (e *Emitter) Fire(name string, data any) *EventInfo {
	ev := &EventInfo{Name: name, Source: e}
	// Copy: a listener may register or remove listeners while we iterate.
	entries := append([]listenerEntry(nil), e.listeners[name]...)
	for _, entry := range entries {
		entry.fn(ev, data)
		if ev.stopped {
			break
		}
	}
	for _, d := range e.delegations {
		if d.name == name || d.name == "*" {
			d.target.Fire(name, data)
		}
	}
	return ev
}

// Delegate re-fires the named events (or all events for "*") on target after
// local listeners have run.
func (e *Emitter) Delegate(target *Emitter, names ...string) {
	for _, name := range names {
		e.delegations = append(e.delegations, delegation{name: name, target: target})
	}
}
