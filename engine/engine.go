// Package engine turns a stream of raw key events into dual-role space bar
// behaviour: a tap types a space, a hold turns the next keys into hyper
// bindings.
package engine

import (
	"fmt"
	"log/slog"

	"markestedt/hyperspace/keys"
)

// State is the engine's position in the dual-role state machine.
type State int

const (
	Idle State = iota
	SpaceHeldAlone
	SpaceHeldWithCandidate
	HyperMode
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SpaceHeldAlone:
		return "space-held"
	case SpaceHeldWithCandidate:
		return "space-held-with-candidate"
	case HyperMode:
		return "hyper"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Decision tells the event source what to do with the original event.
type Decision int

const (
	Forward Decision = iota
	Suppress
)

func (d Decision) String() string {
	if d == Suppress {
		return "suppress"
	}
	return "forward"
}

// Sink posts synthesized key events back into the system. Implementations
// must mark every event so the event source can skip it.
type Sink interface {
	Synthesize(code keys.Code, isDown bool, flags keys.Flags) error
}

// Action describes one hyper binding that fired.
type Action struct {
	Trigger keys.Code
	Binding keys.Binding
	Flags   keys.Flags // flags actually emitted, held modifiers included
}

// Observer is notified after state transitions and fired actions. Observers
// run on the event thread and must not block.
type Observer interface {
	OnTransition(from, to State)
	OnAction(a Action)
}

// Engine owns the dual-role state machine. It is not safe for concurrent use:
// Handle must be called from a single goroutine, one event at a time.
type Engine struct {
	trigger   keys.Code
	table     *keys.Table
	sink      Sink
	held      *keys.Held
	state     State
	candidate keys.Code
	observers []Observer
}

// New creates an engine in the Idle state. trigger is the dual-role key,
// normally space.
func New(trigger keys.Code, table *keys.Table, sink Sink, observers ...Observer) *Engine {
	return &Engine{
		trigger:   trigger,
		table:     table,
		sink:      sink,
		held:      keys.NewHeld(),
		observers: observers,
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// HeldFlags returns the modifiers currently held down.
func (e *Engine) HeldFlags() keys.Flags {
	return e.held.Flags()
}

// Handle consumes one physical key event and reports whether the source
// should forward or suppress it. Synthesized events are emitted through the
// sink before Handle returns.
func (e *Engine) Handle(key keys.Code, isDown, isModifier bool) Decision {
	if isModifier {
		if isDown {
			e.held.Press(key)
		} else {
			e.held.Release(key)
		}
	}

	switch e.state {
	case Idle:
		if key == e.trigger && isDown {
			e.setState(SpaceHeldAlone)
			return Suppress
		}
		return Forward

	case SpaceHeldAlone:
		switch {
		case key == e.trigger && !isDown:
			e.setState(Idle)
			e.tap(keys.Identity(e.trigger))
			return Suppress
		case key == e.trigger:
			// auto-repeat of the held trigger
			return Suppress
		case isDown && !isModifier:
			e.candidate = key
			e.setState(SpaceHeldWithCandidate)
			return Suppress
		case isDown:
			e.setState(HyperMode)
			return Forward
		default:
			e.setState(Idle)
			e.tap(keys.Identity(e.trigger))
			return Forward
		}

	case SpaceHeldWithCandidate:
		candidate := e.candidate
		switch {
		case key == e.trigger && !isDown:
			e.setState(Idle)
			e.tap(keys.Identity(e.trigger))
			e.emit(candidate, true, e.held.Flags())
			return Suppress
		case key == candidate && !isDown:
			e.setState(HyperMode)
			e.fire(candidate)
			return Suppress
		case key == candidate:
			e.setState(HyperMode)
			e.fire(candidate)
			e.fire(candidate)
			return Suppress
		case isDown:
			e.setState(HyperMode)
			e.fire(candidate)
			e.fire(key)
			return Suppress
		default:
			e.setState(Idle)
			e.tap(keys.Identity(e.trigger))
			e.emit(candidate, true, e.held.Flags())
			return Forward
		}

	case HyperMode:
		switch {
		case key == e.trigger && !isDown:
			e.setState(Idle)
			return Suppress
		case key == e.trigger:
			return Suppress
		case isDown:
			if _, ok := e.table.Lookup(key); ok {
				e.fire(key)
				return Suppress
			}
		}
		return Forward
	}

	return Forward
}

func (e *Engine) setState(to State) {
	from := e.state
	e.state = to
	if to != SpaceHeldWithCandidate {
		e.candidate = 0
	}
	if from == to {
		return
	}
	slog.Debug("State changed", "from", from, "to", to)
	for _, o := range e.observers {
		o.OnTransition(from, to)
	}
}

// fire taps the binding resolved for trigger and notifies observers.
func (e *Engine) fire(trigger keys.Code) {
	b := e.table.Resolve(trigger)
	flags := e.tap(b)
	a := Action{Trigger: trigger, Binding: b, Flags: flags}
	for _, o := range e.observers {
		o.OnAction(a)
	}
}

// tap emits a down/up pair for b.Target. Modifiers the user is physically
// holding are merged into the binding's own.
func (e *Engine) tap(b keys.Binding) keys.Flags {
	flags := b.Modifiers | e.held.Flags()
	e.emit(b.Target, true, flags)
	e.emit(b.Target, false, flags)
	return flags
}

func (e *Engine) emit(code keys.Code, isDown bool, flags keys.Flags) {
	slog.Debug("Synthesizing key event", "key", keys.Name(code), "down", isDown, "flags", flags)
	if err := e.sink.Synthesize(code, isDown, flags); err != nil {
		slog.Warn("Failed to synthesize key event", "key", keys.Name(code), "down", isDown, "error", err)
	}
}
