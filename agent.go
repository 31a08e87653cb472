package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"markestedt/hyperspace/audio"
	"markestedt/hyperspace/config"
	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
	"markestedt/hyperspace/platform"
	"markestedt/hyperspace/storage"
	"markestedt/hyperspace/web"
)

// Agent wires the event source to the remap engine and the optional
// stats, dashboard and click feedback.
type Agent struct {
	cfg     *config.Config
	trigger keys.Code
	table   *keys.Table
	source  platform.Source
	engine  *engine.Engine
	paused  atomic.Bool

	db        *storage.DB
	sessionID string
	recorder  *storage.Recorder
	web       *web.Server
	clicker   *audio.Clicker
}

// NewAgent creates a new agent instance. dataDir holds the stats database;
// extra observers (the tray) are notified alongside the built-in ones.
func NewAgent(cfg *config.Config, dataDir string, source platform.Source, sink engine.Sink, extra ...engine.Observer) (*Agent, error) {
	trigger, err := cfg.TriggerCode()
	if err != nil {
		return nil, err
	}

	table, errs := cfg.Table()
	for _, err := range errs {
		slog.Warn("Skipping binding", "error", err)
	}

	a := &Agent{
		cfg:     cfg,
		trigger: trigger,
		table:   table,
		source:  source,
	}

	var observers []engine.Observer

	if cfg.Stats.Enabled {
		if err := a.openStats(dataDir); err != nil {
			slog.Error("Stats disabled", "error", err)
		} else {
			observers = append(observers, a.recorder)
		}
	}

	if cfg.Web.Enabled {
		a.web = web.NewServer(web.Options{
			Port:      cfg.Web.Port,
			Trigger:   trigger,
			Table:     table,
			SessionID: a.sessionID,
			DB:        a.db,
			Paused:    a.Paused,
		})
		observers = append(observers, a.web)
	}

	if cfg.Feedback.Click {
		clicker, err := audio.NewClicker()
		if err != nil {
			slog.Error("Click feedback disabled", "error", err)
		} else {
			a.clicker = clicker
			observers = append(observers, clicker)
		}
	}

	observers = append(observers, extra...)
	a.engine = engine.New(trigger, table, sink, observers...)

	return a, nil
}

func (a *Agent) openStats(dataDir string) error {
	db, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	id, err := db.StartSession(keys.Name(a.trigger), a.table.Len())
	if err != nil {
		db.Close()
		return err
	}
	a.db = db
	a.sessionID = id
	a.recorder = storage.NewRecorder(db, id)
	return nil
}

// SetPaused turns remapping off or on. While paused the trigger key types
// normally; a hold already in progress finishes first.
func (a *Agent) SetPaused(paused bool) {
	a.paused.Store(paused)
}

// Paused reports whether remapping is paused
func (a *Agent) Paused() bool {
	return a.paused.Load()
}

// handle runs on the source's event goroutine
func (a *Agent) handle(code keys.Code, isDown, isModifier bool) engine.Decision {
	if code == a.trigger && a.paused.Load() && a.engine.State() == engine.Idle {
		return engine.Forward
	}
	return a.engine.Handle(code, isDown, isModifier)
}

// Run starts the agent's main event loop
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// the recorder outlives the source so no action fired during shutdown
	// is lost
	recCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()

	var wg sync.WaitGroup
	if a.recorder != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.recorder.Run(recCtx)
		}()
	}
	if a.web != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.web.Run(ctx); err != nil {
				slog.Error("Dashboard disabled", "error", err)
			}
		}()
	}

	slog.Info("HyperSpace started",
		"trigger", keys.Name(a.trigger),
		"bindings", a.table.Len(),
		"session", a.sessionID,
	)

	err := a.source.Run(ctx, a.handle)
	cancel()
	stopRecorder()
	wg.Wait()
	a.close()

	if err != nil {
		return fmt.Errorf("event source: %w", err)
	}
	return nil
}

func (a *Agent) close() {
	if a.clicker != nil {
		a.clicker.Close()
	}
	if a.db != nil {
		if err := a.db.EndSession(a.sessionID); err != nil {
			slog.Warn("Failed to end session", "error", err)
		}
		if err := a.db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
}
