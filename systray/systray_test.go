package systray

import (
	"bytes"
	"testing"

	"markestedt/hyperspace/engine"
)

func TestIconFollowsState(t *testing.T) {
	tests := []struct {
		state  engine.State
		paused bool
		want   []byte
	}{
		{engine.Idle, false, iconIdle},
		{engine.SpaceHeldAlone, false, iconIdle},
		{engine.HyperMode, false, iconHyper},
		{engine.HyperMode, true, iconPaused},
	}
	for _, tt := range tests {
		if got := iconFor(tt.state, tt.paused); !bytes.Equal(got, tt.want) {
			t.Errorf("iconFor(%v, %v) picked the wrong icon", tt.state, tt.paused)
		}
	}
	if len(iconIdle) == 0 || len(iconHyper) == 0 || len(iconPaused) == 0 {
		t.Fatalf("icons not embedded")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel(engine.HyperMode, false); got != "Status: hyper" {
		t.Fatalf("got %q", got)
	}
	if got := statusLabel(engine.HyperMode, true); got != "Status: paused" {
		t.Fatalf("got %q", got)
	}
}

func TestObserverDoesNotBlock(t *testing.T) {
	m := NewSystrayManager("", "space", nil)
	for i := 0; i < 10; i++ {
		m.OnTransition(engine.Idle, engine.HyperMode)
	}
	if engine.State(m.state.Load()) != engine.HyperMode {
		t.Fatalf("state not recorded")
	}
	if len(m.changed) != 1 {
		t.Fatalf("expected a single pending update, got %d", len(m.changed))
	}
}
