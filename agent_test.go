package main

import (
	"context"
	"testing"
	"time"

	"markestedt/hyperspace/config"
	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
	"markestedt/hyperspace/platform"
	"markestedt/hyperspace/storage"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Web.Enabled = false
	cfg.Feedback.Click = false
	cfg.Bindings = []config.BindingConfig{
		{Key: "h", Target: "left", Modifiers: []string{}},
		{Key: "n", Target: "delete", Modifiers: []string{"option"}},
	}
	return cfg
}

type step struct {
	key  string
	down bool
}

// drive feeds steps through the agent's handler on the test goroutine
func drive(a *Agent, lb *platform.Loopback, steps ...step) {
	for _, s := range steps {
		code := keys.MustParse(s.key)
		lb.Deliver(a.handle, platform.Event{Code: code, Down: s.down, Modifier: keys.IsModifier(code)})
	}
}

func codes(events []platform.Event) []string {
	var out []string
	for _, ev := range events {
		dir := "up"
		if ev.Down {
			dir = "down"
		}
		out = append(out, keys.Name(ev.Code)+":"+dir)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAgentRemapsThroughLoopback(t *testing.T) {
	cfg := testConfig()
	cfg.Stats.Enabled = false
	lb := platform.NewLoopback()

	a, err := NewAgent(cfg, t.TempDir(), lb, lb)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	drive(a, lb,
		step{"space", true},
		step{"h", true},
		step{"h", false},
		step{"space", false},
		step{"x", true},
		step{"x", false},
	)

	posted, forwarded := lb.Snapshot()
	if want := []string{"left:down", "left:up"}; !equal(codes(posted), want) {
		t.Fatalf("posted %v, want %v", codes(posted), want)
	}
	if want := []string{"x:down", "x:up"}; !equal(codes(forwarded), want) {
		t.Fatalf("forwarded %v, want %v", codes(forwarded), want)
	}
	if a.engine.State() != engine.Idle {
		t.Fatalf("expected idle, got %v", a.engine.State())
	}
}

func TestAgentPauseLetsTriggerThrough(t *testing.T) {
	cfg := testConfig()
	cfg.Stats.Enabled = false
	lb := platform.NewLoopback()

	a, err := NewAgent(cfg, t.TempDir(), lb, lb)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	a.SetPaused(true)
	drive(a, lb,
		step{"space", true},
		step{"h", true},
		step{"h", false},
		step{"space", false},
	)

	posted, forwarded := lb.Snapshot()
	if len(posted) != 0 {
		t.Fatalf("paused agent synthesized %v", codes(posted))
	}
	if want := []string{"space:down", "h:down", "h:up", "space:up"}; !equal(codes(forwarded), want) {
		t.Fatalf("forwarded %v, want %v", codes(forwarded), want)
	}
}

func TestAgentPauseWaitsForHoldToFinish(t *testing.T) {
	cfg := testConfig()
	cfg.Stats.Enabled = false
	lb := platform.NewLoopback()

	a, err := NewAgent(cfg, t.TempDir(), lb, lb)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}

	drive(a, lb, step{"space", true}, step{"h", true}, step{"h", false})
	a.SetPaused(true)
	drive(a, lb, step{"space", false})

	if a.engine.State() != engine.Idle {
		t.Fatalf("hold should complete normally, state %v", a.engine.State())
	}
	posted, _ := lb.Snapshot()
	if want := []string{"left:down", "left:up"}; !equal(codes(posted), want) {
		t.Fatalf("posted %v, want %v", codes(posted), want)
	}
}

func TestAgentRejectsBadTrigger(t *testing.T) {
	cfg := testConfig()
	cfg.Trigger = "nope"
	lb := platform.NewLoopback()

	if _, err := NewAgent(cfg, t.TempDir(), lb, lb); err == nil {
		t.Fatalf("expected error for unknown trigger")
	}
}

func TestAgentRunRecordsSession(t *testing.T) {
	dir := t.TempDir()
	lb := platform.NewLoopback()

	a, err := NewAgent(testConfig(), dir, lb, lb)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if a.sessionID == "" {
		t.Fatalf("expected a session to be started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	for _, s := range []step{{"space", true}, {"n", true}, {"n", false}, {"space", false}} {
		lb.Feed(keys.MustParse(s.key), s.down)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		posted, _ := lb.Snapshot()
		if len(posted) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("events were not processed, posted %v", codes(posted))
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop")
	}

	db, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db.Close()

	sessions, err := db.GetSessions(1)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d (%v)", len(sessions), err)
	}
	if sessions[0].EndedAt.IsZero() {
		t.Fatalf("session was not ended")
	}

	actions, err := db.GetActions(10, 0)
	if err != nil {
		t.Fatalf("get actions: %v", err)
	}
	if len(actions) != 1 || actions[0].Key != "n" || actions[0].Target != "delete" || actions[0].Modifiers != "option" {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}
