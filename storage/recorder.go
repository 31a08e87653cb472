package storage

import (
	"context"
	"log/slog"
	"sync/atomic"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

const recorderQueue = 256

// Recorder is an engine observer that saves fired actions for one session.
// OnAction runs on the event thread, so actions are queued and written by
// Run; when the queue is full they are dropped.
type Recorder struct {
	db        *DB
	sessionID string
	queue     chan Action
	dropped   atomic.Int64
}

// NewRecorder creates a recorder writing into session sessionID.
func NewRecorder(db *DB, sessionID string) *Recorder {
	return &Recorder{
		db:        db,
		sessionID: sessionID,
		queue:     make(chan Action, recorderQueue),
	}
}

func (r *Recorder) OnTransition(from, to engine.State) {}

func (r *Recorder) OnAction(a engine.Action) {
	rec := Action{
		SessionID: r.sessionID,
		Key:       keys.Name(a.Trigger),
		Target:    keys.Name(a.Binding.Target),
		Modifiers: a.Flags.String(),
	}
	select {
	case r.queue <- rec:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many actions were discarded because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Run writes queued actions until ctx is cancelled, then flushes what is
// left in the queue.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.flush()
			if n := r.Dropped(); n > 0 {
				slog.Warn("Actions dropped from stats", "count", n)
			}
			return
		case a := <-r.queue:
			r.save(a)
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case a := <-r.queue:
			r.save(a)
		default:
			return
		}
	}
}

func (r *Recorder) save(a Action) {
	if err := r.db.SaveAction(&a); err != nil {
		slog.Error("Failed to save action", "key", a.Key, "error", err)
	}
}
