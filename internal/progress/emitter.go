package progress

import "context"

// Sink receives events in emission order.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Emitter publishes events into a channel drained by a single consumer.
// Every event is stamped with the emitter's run ID. Sends block until the
// consumer receives or ctx is done; after that events are dropped.
type Emitter struct {
	ctx   context.Context
	runID string
	ch    chan Event
}

// NewEmitter creates an emitter with the given channel buffer.
func NewEmitter(ctx context.Context, runID string, buffer int) *Emitter {
	if buffer < 0 {
		buffer = 0
	}
	return &Emitter{ctx: ctx, runID: runID, ch: make(chan Event, buffer)}
}

// Emit implements Sink.
func (e *Emitter) Emit(ev Event) {
	ev.RunID = e.runID
	select {
	case e.ch <- ev:
	case <-e.ctx.Done():
	}
}

// Events returns the receive side of the stream.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Close ends the stream. It must be called once, by the producer, after
// the last Emit.
func (e *Emitter) Close() {
	close(e.ch)
}
