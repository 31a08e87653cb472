package platform

import (
	"context"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

// SentinelTag marks every event we synthesize so the event source can
// recognize and skip it.
const SentinelTag = 12345

// Handler interprets one physical key event.
type Handler func(code keys.Code, isDown, isModifier bool) engine.Decision

// Source delivers physical key events to a Handler, one at a time on a
// single goroutine, and suppresses or forwards each according to the
// returned decision.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// Event is a raw keyboard notification as seen by a source, after
// flags-changed notifications have been split per key.
type Event struct {
	Code     keys.Code
	Down     bool
	Modifier bool
	Tag      int64
}

// Dispatch passes ev to h unless it carries SentinelTag. Our own events are
// always forwarded untouched.
func Dispatch(ev Event, h Handler) engine.Decision {
	if ev.Tag == SentinelTag {
		return engine.Forward
	}
	return h(ev.Code, ev.Down, ev.Modifier)
}
