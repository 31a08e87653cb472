package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"markestedt/hyperspace/keys"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadCreatesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Trigger != "space" {
		t.Fatalf("expected default trigger, got %q", cfg.Trigger)
	}
	if len(cfg.Bindings) != len(defaultBindings()) {
		t.Fatalf("expected %d default bindings, got %d", len(defaultBindings()), len(cfg.Bindings))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}

	// the written file must load back to the same settings
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if len(again.Bindings) != len(cfg.Bindings) || again.Web.Port != cfg.Web.Port {
		t.Fatalf("reloaded config differs: %+v", again)
	}
}

func TestDefaultBindingsAreValid(t *testing.T) {
	table, errs := Default().Table()
	if len(errs) != 0 {
		t.Fatalf("default bindings produced errors: %v", errs)
	}
	if table.Len() != len(defaultBindings()) {
		t.Fatalf("expected %d entries, got %d", len(defaultBindings()), table.Len())
	}
	b, ok := table.Lookup(keys.MustParse("h"))
	if !ok || b.Target != keys.MustParse("left") || b.Modifiers != 0 {
		t.Fatalf("unexpected binding for h: %+v (ok=%v)", b, ok)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
trigger = "capslock"

[log]
level = "debug"

[feedback]
click = true

[web]
enabled = false

[[bindings]]
key = "j"
target = "down"

[[bindings]]
key = "w"
target = "right"
modifiers = ["alt", "shift"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Feedback.Click {
		t.Fatalf("expected click enabled")
	}
	if cfg.Web.Enabled {
		t.Fatalf("expected web disabled")
	}
	if !cfg.Stats.Enabled {
		t.Fatalf("expected stats to keep default")
	}
	if lvl, _ := cfg.LogLevel(); lvl != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", lvl)
	}
	if code, err := cfg.TriggerCode(); err != nil || code != keys.MustParse("capslock") {
		t.Fatalf("unexpected trigger %v: %v", code, err)
	}

	table, errs := cfg.Table()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if table.Len() != 2 {
		t.Fatalf("bindings should replace defaults, got %d entries", table.Len())
	}
	b, _ := table.Lookup(keys.MustParse("w"))
	want := keys.Binding{Target: keys.MustParse("right"), Modifiers: keys.Option.Flag() | keys.Shift.Flag()}
	if b != want {
		t.Fatalf("got %v, want %v", b, want)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown trigger", `trigger = "hyper"`, "trigger"},
		{"modifier trigger", `trigger = "shift"`, "modifier"},
		{"bad log level", "[log]\nlevel = \"loud\"", "log.level"},
		{"bad port", "[web]\nenabled = true\nport = 0", "web.port"},
		{"malformed", `trigger = `, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestTableSkipsBadBindings(t *testing.T) {
	cfg := Default()
	cfg.Bindings = []BindingConfig{
		bind("h", "left"),
		bind("nope", "left"),
		bind("j", "nowhere"),
		bind("k", "up", "hyper"),
		bind("h", "right"),
		bind("space", "escape"),
		bind("shift", "escape"),
		bind("l", "right", "ctrl"),
	}

	table, errs := cfg.Table()
	if len(errs) != 6 {
		t.Fatalf("expected 6 errors, got %d: %v", len(errs), errs)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 usable entries, got %d", table.Len())
	}
	if b, _ := table.Lookup(keys.MustParse("h")); b.Target != keys.MustParse("left") {
		t.Fatalf("first binding for h should win, got %v", b)
	}
	if b, _ := table.Lookup(keys.MustParse("l")); b.Modifiers != keys.Control.Flag() {
		t.Fatalf("expected control modifier, got %v", b.Modifiers)
	}
}
