package platform

import (
	"context"
	"sync"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

// Loopback is an in-memory Source and Sink. Synthesized events are fed back
// through the source tagged with SentinelTag, the way a real input queue
// echoes injected events.
type Loopback struct {
	mu       sync.Mutex
	handler  Handler
	events   chan Event
	Posted   []Event
	Observed []Event

	// physical events the handler let through
	Forwarded []Event
}

// NewLoopback creates a Loopback ready to Run.
func NewLoopback() *Loopback {
	return &Loopback{events: make(chan Event, 64)}
}

// Run dispatches fed events until ctx is cancelled.
func (l *Loopback) Run(ctx context.Context, h Handler) error {
	l.mu.Lock()
	l.handler = h
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-l.events:
			l.deliver(ev)
		}
	}
}

// Feed queues a physical event for Run.
func (l *Loopback) Feed(code keys.Code, isDown bool) {
	l.events <- Event{Code: code, Down: isDown, Modifier: keys.IsModifier(code)}
}

// Deliver dispatches ev synchronously on the calling goroutine.
func (l *Loopback) Deliver(h Handler, ev Event) engine.Decision {
	l.mu.Lock()
	l.handler = h
	l.mu.Unlock()
	return l.deliver(ev)
}

func (l *Loopback) deliver(ev Event) engine.Decision {
	l.mu.Lock()
	h := l.handler
	l.Observed = append(l.Observed, ev)
	l.mu.Unlock()

	d := Dispatch(ev, h)
	if d == engine.Forward && ev.Tag != SentinelTag {
		l.mu.Lock()
		l.Forwarded = append(l.Forwarded, ev)
		l.mu.Unlock()
	}
	return d
}

// Snapshot returns copies of the posted and forwarded events.
func (l *Loopback) Snapshot() (posted, forwarded []Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.Posted...), append([]Event(nil), l.Forwarded...)
}

// Synthesize records the event and echoes it back through the source.
func (l *Loopback) Synthesize(code keys.Code, isDown bool, flags keys.Flags) error {
	ev := Event{Code: code, Down: isDown, Modifier: keys.IsModifier(code), Tag: SentinelTag}
	l.mu.Lock()
	l.Posted = append(l.Posted, ev)
	l.mu.Unlock()
	l.deliver(ev)
	return nil
}
