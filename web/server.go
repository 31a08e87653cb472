package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
	"markestedt/hyperspace/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the server only listens on loopback
	},
}

// Options configures the dashboard server
type Options struct {
	Port      int
	Trigger   keys.Code
	Table     *keys.Table
	SessionID string
	DB        *storage.DB // nil when stats are disabled
	Paused    func() bool
}

// Server is the local dashboard. It is also an engine observer, pushing
// transitions and actions to connected clients.
type Server struct {
	opts    Options
	hub     *Hub
	state   atomic.Int32
	actions atomic.Int64
	started time.Time
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	if opts.Paused == nil {
		opts.Paused = func() bool { return false }
	}
	return &Server{
		opts:    opts,
		hub:     NewHub(),
		started: time.Now(),
	}
}

// Handler returns the dashboard's routes
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/bindings", s.handleBindings)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// URL is where the dashboard is served
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.opts.Port)
}

// Run serves the dashboard on loopback until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.opts.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	go s.hub.Run(ctx)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting web server", "port", s.opts.Port, "url", s.URL())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) OnTransition(from, to engine.State) {
	s.state.Store(int32(to))
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeState,
		Data: StateMessage{From: from.String(), State: to.String()},
	})
}

func (s *Server) OnAction(a engine.Action) {
	s.actions.Add(1)
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeAction,
		Data: ActionMessage{
			Key:       keys.Name(a.Trigger),
			Target:    keys.Name(a.Binding.Target),
			Modifiers: a.Flags.String(),
		},
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}
