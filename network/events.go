package network

import (
	"sort"

	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
)

// EventQueue holds broadcasts until the mirror has caught up with the tick
// that issued them. Events are released in Seq order and each Seq at most once.
type EventQueue struct {
	applied uint64
	pending []messages.Event
}

// Push queues ev and reports whether it was new.
func (q *EventQueue) Push(ev messages.Event) bool {
	seq := ev.Header().Seq
	if seq <= q.applied {
		return false
	}
	i := sort.Search(len(q.pending), func(i int) bool { return q.pending[i].Header().Seq >= seq })
	if i < len(q.pending) && q.pending[i].Header().Seq == seq {
		return false
	}
	q.pending = append(q.pending, nil)
	copy(q.pending[i+1:], q.pending[i:])
	q.pending[i] = ev
	return true
}

// Ready removes and returns the events whose tick is at or before tick. An
// event that is not ready yet holds back every later one.
func (q *EventQueue) Ready(tick ticktimer.Tick) []messages.Event {
	n := 0
	for n < len(q.pending) && ticktimer.Tick(q.pending[n].Header().Tick) <= tick {
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]messages.Event, n)
	copy(out, q.pending[:n])
	q.applied = out[n-1].Header().Seq
	q.pending = append(q.pending[:0], q.pending[n:]...)
	return out
}

func (q *EventQueue) Len() int { return len(q.pending) }

// Reset forgets every queued and applied event, for a new session.
func (q *EventQueue) Reset() {
	q.applied = 0
	q.pending = nil
}
