package platform

import (
	"context"
	"testing"
	"time"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

func TestDispatchSkipsTaggedEvents(t *testing.T) {
	called := 0
	h := func(code keys.Code, isDown, isModifier bool) engine.Decision {
		called++
		return engine.Suppress
	}

	if got := Dispatch(Event{Code: keys.MustParse("x"), Down: true, Tag: SentinelTag}, h); got != engine.Forward {
		t.Errorf("tagged event decision = %v, want forward", got)
	}
	if called != 0 {
		t.Fatal("handler called for tagged event")
	}

	if got := Dispatch(Event{Code: keys.MustParse("x"), Down: true}, h); got != engine.Suppress {
		t.Errorf("physical event decision = %v, want suppress", got)
	}
	if called != 1 {
		t.Errorf("handler called %d times, want 1", called)
	}
}

func TestLoopbackNoFeedback(t *testing.T) {
	space, h, left := keys.MustParse("space"), keys.MustParse("h"), keys.MustParse("left")
	table := keys.NewTable(map[keys.Code]keys.Binding{h: {Target: left}})

	lb := NewLoopback()
	eng := engine.New(space, table, lb)

	handled := 0
	handler := func(code keys.Code, isDown, isModifier bool) engine.Decision {
		handled++
		return eng.Handle(code, isDown, isModifier)
	}

	lb.Deliver(handler, Event{Code: space, Down: true})
	lb.Deliver(handler, Event{Code: h, Down: true})
	lb.Deliver(handler, Event{Code: h, Down: false})
	lb.Deliver(handler, Event{Code: space, Down: false})

	if handled != 4 {
		t.Errorf("handler saw %d events, want only the 4 physical ones", handled)
	}
	if len(lb.Posted) != 2 {
		t.Fatalf("posted %d events, want 2", len(lb.Posted))
	}
	for _, ev := range lb.Posted {
		if ev.Code != left || ev.Tag != SentinelTag {
			t.Errorf("unexpected posted event %+v", ev)
		}
	}
	if len(lb.Observed) != 6 {
		t.Errorf("source observed %d events, want 6", len(lb.Observed))
	}
	if eng.State() != engine.Idle {
		t.Errorf("state = %v", eng.State())
	}
}

func TestLoopbackRun(t *testing.T) {
	lb := NewLoopback()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan keys.Code, 1)
	done := make(chan error, 1)
	go func() {
		done <- lb.Run(ctx, func(code keys.Code, isDown, isModifier bool) engine.Decision {
			seen <- code
			return engine.Forward
		})
	}()

	lb.Feed(keys.MustParse("q"), true)
	select {
	case c := <-seen:
		if c != keys.MustParse("q") {
			t.Errorf("got %s", keys.Name(c))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestModifierStateTracksEachKey(t *testing.T) {
	left, right := keys.MustParse("shift"), keys.MustParse("rightshift")
	s := modifierState{}

	steps := []struct {
		name    string
		code    keys.Code
		maskSet bool
		want    bool
	}{
		{"left down", left, true, true},
		{"right down", right, true, true},
		{"left up while right held", left, true, false},
		{"right up", right, false, false},
		{"left down again", left, true, true},
		{"cleared mask resyncs", right, false, false},
		{"left reported up by clear mask", left, false, false},
	}
	for _, st := range steps {
		if got := s.update(st.code, st.maskSet); got != st.want {
			t.Fatalf("%s: down = %v, want %v", st.name, got, st.want)
		}
	}
	if len(s) != 0 {
		t.Errorf("expected no keys held, got %v", s)
	}
}
