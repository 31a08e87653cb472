package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
	"markestedt/hyperspace/storage"
)

func testTable() *keys.Table {
	return keys.NewTable(map[keys.Code]keys.Binding{
		keys.MustParse("h"): keys.Identity(keys.MustParse("left")),
		keys.MustParse("n"): {Target: keys.MustParse("delete"), Modifiers: keys.Option.Flag()},
	})
}

func newTestServer(t *testing.T, db *storage.DB) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(Options{
		Port:      7345,
		Trigger:   keys.MustParse("space"),
		Table:     testTable(),
		SessionID: "session-1",
		DB:        db,
	})
	handler, err := s.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestStatusFollowsTransitions(t *testing.T) {
	s, ts := newTestServer(t, nil)

	var status map[string]interface{}
	getJSON(t, ts.URL+"/api/status", &status)
	if status["state"] != "idle" || status["trigger"] != "space" || status["sessionId"] != "session-1" {
		t.Fatalf("unexpected status: %v", status)
	}

	s.OnTransition(engine.Idle, engine.HyperMode)
	s.OnAction(engine.Action{Trigger: keys.MustParse("h"), Binding: keys.Identity(keys.MustParse("left"))})

	getJSON(t, ts.URL+"/api/status", &status)
	if status["state"] != "hyper" {
		t.Fatalf("expected hyper state, got %v", status["state"])
	}
	if status["actions"] != float64(1) {
		t.Fatalf("expected 1 action, got %v", status["actions"])
	}
}

func TestStatusRejectsPost(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/status", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestBindings(t *testing.T) {
	_, ts := newTestServer(t, nil)

	var bindings []struct {
		Key       string `json:"key"`
		Target    string `json:"target"`
		Modifiers string `json:"modifiers"`
	}
	getJSON(t, ts.URL+"/api/bindings", &bindings)
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	if bindings[0].Key != "h" || bindings[0].Target != "left" || bindings[0].Modifiers != "none" {
		t.Fatalf("unexpected first binding: %+v", bindings[0])
	}
	if bindings[1].Key != "n" || bindings[1].Modifiers != "option" {
		t.Fatalf("unexpected second binding: %+v", bindings[1])
	}
}

func TestStatsDisabledWithoutDB(t *testing.T) {
	_, ts := newTestServer(t, nil)

	if code := getJSON(t, ts.URL+"/api/stats", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if code := getJSON(t, ts.URL+"/api/history", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
}

func TestStatsAndHistory(t *testing.T) {
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	id, err := db.StartSession("space", 2)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := db.SaveAction(&storage.Action{SessionID: id, Key: "h", Target: "left", Modifiers: "none"}); err != nil {
			t.Fatalf("save action: %v", err)
		}
	}

	_, ts := newTestServer(t, db)

	var stats struct {
		Days     int                    `json:"days"`
		Overall  storage.OverallStats   `json:"overall"`
		Bindings []storage.BindingStats `json:"bindings"`
	}
	if code := getJSON(t, ts.URL+"/api/stats?days=30", &stats); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if stats.Days != 30 || stats.Overall.TotalActions != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.Bindings) != 1 || stats.Bindings[0].Count != 3 {
		t.Fatalf("unexpected binding stats: %+v", stats.Bindings)
	}

	var history struct {
		Actions []storage.Action `json:"actions"`
		Total   int              `json:"total"`
		Limit   int              `json:"limit"`
	}
	getJSON(t, ts.URL+"/api/history?limit=2", &history)
	if history.Total != 3 || history.Limit != 2 || len(history.Actions) != 2 {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestStaticIndex(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebSocketReceivesTransitions(t *testing.T) {
	s, ts := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// registration happens asynchronously; keep publishing until a message
	// arrives
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	received := make(chan Message, 1)
	go func() {
		var msg Message
		if err := conn.ReadJSON(&msg); err == nil {
			received <- msg
		}
		close(received)
	}()

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-received:
			if !ok {
				t.Fatalf("connection closed before a message arrived")
			}
			if msg.Type != MessageTypeState {
				t.Fatalf("expected state message, got %q", msg.Type)
			}
			data, _ := msg.Data.(map[string]interface{})
			if data["state"] != "space-held" || data["from"] != "idle" {
				t.Fatalf("unexpected data: %v", msg.Data)
			}
			return
		case <-ticker.C:
			s.OnTransition(engine.Idle, engine.SpaceHeldAlone)
		case <-deadline:
			t.Fatalf("no message received")
		}
	}
}
