package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

// intParam reads a positive integer query parameter, falling back to def
func intParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// handleStatus returns the current engine state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"state":     engine.State(s.state.Load()).String(),
		"paused":    s.opts.Paused(),
		"trigger":   keys.Name(s.opts.Trigger),
		"sessionId": s.opts.SessionID,
		"actions":   s.actions.Load(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleBindings lists the remap table
func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type binding struct {
		Key       string `json:"key"`
		Target    string `json:"target"`
		Modifiers string `json:"modifiers"`
	}
	bindings := []binding{}
	for _, e := range s.opts.Table.Entries() {
		bindings = append(bindings, binding{
			Key:       keys.Name(e.Key),
			Target:    keys.Name(e.Binding.Target),
			Modifiers: e.Binding.Modifiers.String(),
		})
	}

	writeJSON(w, bindings)
}

// handleStats returns statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.opts.DB == nil {
		http.Error(w, "Statistics are disabled", http.StatusServiceUnavailable)
		return
	}

	days := intParam(r, "days", 7)
	if days == 0 {
		days = 7
	}

	overall, err := s.opts.DB.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	daily, err := s.opts.DB.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	bindings, err := s.opts.DB.GetBindingStats(days)
	if err != nil {
		slog.Error("Failed to get binding stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"days":     days,
		"overall":  overall,
		"daily":    daily,
		"bindings": bindings,
	})
}

// handleHistory returns paginated action history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.opts.DB == nil {
		http.Error(w, "Statistics are disabled", http.StatusServiceUnavailable)
		return
	}

	limit := intParam(r, "limit", 50)
	if limit == 0 {
		limit = 50
	}
	offset := intParam(r, "offset", 0)

	actions, err := s.opts.DB.GetActions(limit, offset)
	if err != nil {
		slog.Error("Failed to get actions", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	total, err := s.opts.DB.GetActionCount()
	if err != nil {
		slog.Error("Failed to get action count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"actions": actions,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
