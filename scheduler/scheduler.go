// Package scheduler implements a simple event scheduler keyed to the
// emulated machine clock. Components register a handler per event type at
// setup time and then schedule that event some number of clock cycles into
// the future. Only one instance of each event type can be pending at a
// time which keeps the pending list small and allocation free, and also
// gives the re-arm semantics debounce style consumers want: scheduling an
// already pending event moves it rather than queueing a second firing.
package scheduler

// EventType identifies a registered event. Types are allocated by the
// machine wiring the scheduler up, normally as a base value per component
// plus a per-instance offset.
type EventType uint8

// kNumTypes is the full EventType space. Sized to the uint8 max so the
// lookup arrays below never need bounds checks.
const kNumTypes = 256

type event struct {
	at   uint64 // Absolute cycle the event fires on.
	typ  EventType
	next *event
}

// Scheduler holds the emulated clock and the sorted list of pending
// events. All methods must be called from the single emulation goroutine.
type Scheduler struct {
	cycles   uint64 // Total clock cycles since power on.
	root     *event // Head of the pending list, sorted by firing cycle.
	handlers [kNumTypes]func()
	events   [kNumTypes]*event // Preallocated, one per type.
	pending  [kNumTypes]bool
}

// New returns an initialized Scheduler with the clock at zero.
func New() *Scheduler {
	s := &Scheduler{}
	for i := range s.events {
		s.events[i] = &event{typ: EventType(i)}
	}
	return s
}

// Cycles returns the total number of clock cycles ticked since power on.
func (s *Scheduler) Cycles() uint64 {
	return s.cycles
}

// RegisterEvent installs the handler to run when events of the given type
// fire. Registering again replaces the previous handler.
func (s *Scheduler) RegisterEvent(t EventType, fn func()) {
	s.handlers[t] = fn
}

// ScheduleEvent arms the given event type to fire delta cycles from now.
// If the type is already pending it is re-armed to the new deadline, the
// old one is dropped.
func (s *Scheduler) ScheduleEvent(t EventType, delta uint64) {
	if s.pending[t] {
		s.DescheduleEvent(t)
	}
	e := s.events[t]
	e.at = s.cycles + delta
	e.next = nil
	s.pending[t] = true

	if s.root == nil || e.at < s.root.at {
		e.next = s.root
		s.root = e
		return
	}
	cur := s.root
	for cur.next != nil && cur.next.at <= e.at {
		cur = cur.next
	}
	e.next = cur.next
	cur.next = e
}

// DescheduleEvent drops any pending event of the given type. Dropping a
// type that isn't pending is a no-op.
func (s *Scheduler) DescheduleEvent(t EventType) {
	if !s.pending[t] {
		return
	}
	s.pending[t] = false
	var prev *event
	for cur := s.root; cur != nil; cur = cur.next {
		if cur.typ == t {
			if prev == nil {
				s.root = cur.next
			} else {
				prev.next = cur.next
			}
			return
		}
		prev = cur
	}
}

// Tick advances the clock by the given number of cycles and fires every
// pending event whose deadline has been reached, in deadline order.
func (s *Scheduler) Tick(c uint64) {
	s.cycles += c
	for s.root != nil && s.root.at <= s.cycles {
		e := s.root
		s.root = e.next
		s.pending[e.typ] = false
		if fn := s.handlers[e.typ]; fn != nil {
			fn()
		}
	}
}

// Pending reports whether an event of the given type is currently armed.
func (s *Scheduler) Pending(t EventType) bool {
	return s.pending[t]
}
