// Package timing implements the emulated system's virtual clock and the
// event scheduler driven by it.
package timing

import (
	"container/heap"
	"sync"

	"pica/emu/log"
)

// BaseClockRate is the frequency of the virtual clock, in Hz.
const BaseClockRate = 268111856

// UsToCycles converts a duration in microseconds to virtual clock cycles.
func UsToCycles(us uint64) int64 {
	return int64(us * BaseClockRate / 1_000_000)
}

// Callback is invoked when an event fires. cyclesLate is the number of cycles
// elapsed between the scheduled time and the time it was processed.
type Callback func(userdata uint64, cyclesLate int64)

type EventType struct {
	Name string
	cb   Callback
}

type event struct {
	when     int64
	seq      uint64 // FIFO among events scheduled at the same time
	typ      *EventType
	userdata uint64
}

type eventQueue []event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when < q[j].when
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(event)) }
func (q *eventQueue) Pop() any {
	old := *q
	e := old[len(old)-1]
	*q = old[:len(old)-1]
	return e
}

// Timing is the virtual clock. Time only moves forward through Advance. All
// methods are safe for concurrent use; callbacks run on the goroutine calling
// Advance, without any internal lock held, so they may schedule new events.
type Timing struct {
	mu     sync.Mutex
	ticks  int64
	seq    uint64
	queue  eventQueue
	types  map[string]*EventType
	firing bool
}

func New() *Timing {
	return &Timing{types: make(map[string]*EventType)}
}

// RegisterEvent registers a named event type. Registering the same name twice
// returns the existing type with its original callback.
func (t *Timing) RegisterEvent(name string, cb Callback) *EventType {
	t.mu.Lock()
	defer t.mu.Unlock()

	if et, ok := t.types[name]; ok {
		log.ModTiming.WarnZ("event type registered twice").String("name", name).End()
		return et
	}
	et := &EventType{Name: name, cb: cb}
	t.types[name] = et
	return et
}

// ScheduleEvent schedules et to fire cyclesIntoFuture cycles from now.
func (t *Timing) ScheduleEvent(cyclesIntoFuture int64, et *EventType, userdata uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	heap.Push(&t.queue, event{
		when:     t.ticks + cyclesIntoFuture,
		seq:      t.seq,
		typ:      et,
		userdata: userdata,
	})
}

// UnscheduleEvent removes all pending occurrences of et with the given
// userdata.
func (t *Timing) UnscheduleEvent(et *EventType, userdata uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, e := range t.queue {
		if e.typ != et || e.userdata != userdata {
			t.queue[n] = e
			n++
		}
	}
	if n != len(t.queue) {
		clear(t.queue[n:])
		t.queue = t.queue[:n]
		heap.Init(&t.queue)
	}
}

// Ticks returns the current virtual time, in cycles.
func (t *Timing) Ticks() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

// Pending returns the number of scheduled events.
func (t *Timing) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Advance moves the clock forward by cycles and fires every event that
// became due, in scheduling order.
func (t *Timing) Advance(cycles int64) {
	t.mu.Lock()
	if t.firing {
		t.mu.Unlock()
		panic("timing: Advance called from an event callback")
	}
	t.ticks += cycles
	t.firing = true
	for len(t.queue) > 0 && t.queue[0].when <= t.ticks {
		e := heap.Pop(&t.queue).(event)
		late := t.ticks - e.when
		t.mu.Unlock()

		log.ModTiming.DebugZ("event").
			String("name", e.typ.Name).
			Int("late", int(late)).
			End()
		e.typ.cb(e.userdata, late)

		t.mu.Lock()
	}
	t.firing = false
	t.mu.Unlock()
}
