package core

import (
	"fmt"

	"github.com/SpeedyZooba/blocky-climb/shared/messages"
	"github.com/SpeedyZooba/blocky-climb/shared/ticktimer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EventSink receives every broadcast in issue order.
type EventSink interface {
	HandleEvent(ev messages.Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev messages.Event)

func (f SinkFunc) HandleEvent(ev messages.Event) { f(ev) }

// Broadcaster stamps authority events with a session sequence number and the
// issuing tick, then fans them out to its sinks.
type Broadcaster struct {
	seq   uint64
	clock ticktimer.Clock
	sinks []EventSink
}

func NewBroadcaster(clock ticktimer.Clock, sinks ...EventSink) *Broadcaster {
	return &Broadcaster{clock: clock, sinks: sinks}
}

func (b *Broadcaster) AddSink(s EventSink) {
	b.sinks = append(b.sinks, s)
}

// Seq is the sequence number of the last published event.
func (b *Broadcaster) Seq() uint64 { return b.seq }

// Publish stamps ev and delivers it to every sink. It returns the stamped copy.
func Publish[T messages.Event, P interface {
	*T
	messages.Stamper
}](b *Broadcaster, ev T) T {
	b.seq++
	P(&ev).Stamp(b.seq, int64(b.clock.Tick()))
	for _, s := range b.sinks {
		s.HandleEvent(ev)
	}
	return ev
}

// LogSink records events on the authority, which has no presenter.
type LogSink struct {
	Log zerolog.Logger
}

func NewLogSink() LogSink {
	return LogSink{Log: log.With().Str("component", "events").Logger()}
}

func (l LogSink) HandleEvent(ev messages.Event) {
	h := ev.Header()
	l.Log.Debug().
		Uint64("seq", h.Seq).
		Int64("tick", h.Tick).
		Str("event", fmt.Sprintf("%T", ev)).
		Msg("broadcast")
}
