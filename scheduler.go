// scheduler.go - Cycle-keyed event scheduler driving CPU, RSP, RDP and MI

/*
scheduler.go - Priority-queue scheduler

Implements the contract of spec.md 4.2: add_event/change_event_time/
remove_event/run_until. Time is measured in global CPU cycles. Events
are kept in a binary min-heap keyed by fire cycle, with insertion order
as the tie-break so that same-cycle events fire FIFO.

run_until only dispatches events whose fire time is <= the clock value
recorded at entry, so a handler that reschedules itself (or something
already elapsed) cannot loop forever within a single tick - it is
picked up on the next call.
*/

package main

import (
	"container/heap"
)

// EventTag identifies a scheduled event so it can be rescheduled or
// cancelled by name.
type EventTag int

const (
	EventAudioSample EventTag = iota
	EventSpDmaFinish
	EventPiDmaFinish
	EventSiDmaFinish
	EventCountCompareMatch
	EventVBlank
)

// EventHandler is invoked when its event's fire time has been reached.
type EventHandler func()

type schedEvent struct {
	tag      EventTag
	fireAt   uint64
	seq      uint64
	handler  EventHandler
	index    int // heap index, maintained by container/heap
	canceled bool
}

type eventHeap []*schedEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].fireAt != h[j].fireAt {
		return h[i].fireAt < h[j].fireAt
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x any) {
	e := x.(*schedEvent)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler is a priority queue of timed events keyed by the cycle of
// firing, as described in spec.md 3 and 4.2.
type Scheduler struct {
	clock   uint64
	heap    eventHeap
	byTag   map[EventTag]*schedEvent
	nextSeq uint64
}

// NewScheduler constructs an empty scheduler at clock 0.
func NewScheduler() *Scheduler {
	return &Scheduler{
		byTag: make(map[EventTag]*schedEvent),
	}
}

// Now returns the current virtual clock in cycles.
func (s *Scheduler) Now() uint64 { return s.clock }

// AddEvent schedules handler to fire delayCycles from the current
// clock. If an event with the same tag already exists it is replaced.
func (s *Scheduler) AddEvent(tag EventTag, delayCycles uint64, handler EventHandler) {
	if old, ok := s.byTag[tag]; ok {
		old.canceled = true
		delete(s.byTag, tag)
	}
	e := &schedEvent{
		tag:     tag,
		fireAt:  s.clock + delayCycles,
		seq:     s.nextSeq,
		handler: handler,
	}
	s.nextSeq++
	heap.Push(&s.heap, e)
	s.byTag[tag] = e
}

// ChangeEventTime reschedules an existing event to fire delayCycles
// from now, preserving its handler. No-op if the tag has no pending
// event.
func (s *Scheduler) ChangeEventTime(tag EventTag, delayCycles uint64) {
	old, ok := s.byTag[tag]
	if !ok {
		return
	}
	s.AddEvent(tag, delayCycles, old.handler)
}

// RemoveEvent cancels a pending event by tag. No-op if missing.
func (s *Scheduler) RemoveEvent(tag EventTag) {
	e, ok := s.byTag[tag]
	if !ok {
		return
	}
	e.canceled = true
	delete(s.byTag, tag)
}

// HasEvent reports whether a tag currently has a pending event.
func (s *Scheduler) HasEvent(tag EventTag) bool {
	_, ok := s.byTag[tag]
	return ok
}

// TimeUntil returns the remaining cycles until tag fires, and whether
// the tag is currently scheduled.
func (s *Scheduler) TimeUntil(tag EventTag) (uint64, bool) {
	e, ok := s.byTag[tag]
	if !ok || e.fireAt <= s.clock {
		return 0, ok
	}
	return e.fireAt - s.clock, true
}

// RunUntil advances the clock up to cycles, firing every event whose
// fire time is <= the clock value as of entry, in non-decreasing
// fire-time order with FIFO tie-break. Handlers may schedule further
// events, including already-elapsed ones; those run on the next call.
func (s *Scheduler) RunUntil(cycles uint64) {
	if cycles > s.clock {
		s.clock = cycles
	}
	deadline := s.clock
	entrySeq := s.nextSeq // events added by handlers below wait for the next call
	for s.heap.Len() > 0 {
		top := s.heap[0]
		if top.canceled {
			heap.Pop(&s.heap)
			continue
		}
		if top.fireAt > deadline || top.seq >= entrySeq {
			break
		}
		heap.Pop(&s.heap)
		if cur, ok := s.byTag[top.tag]; ok && cur == top {
			delete(s.byTag, top.tag)
		}
		if top.handler != nil {
			top.handler()
		}
	}
}
