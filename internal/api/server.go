// Package api serves the session state over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/continuum/internal/engine"
)

// Server exposes a running session for observation.
type Server struct {
	Eng      *engine.Engine
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Advance steps the session one turn. Wired by the runner; nil
	// disables the admin advance endpoint.
	Advance func() (*engine.TurnReport, error)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	narrativeLimiter := NewRateLimiter(120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/narrative", RateLimitMiddleware(narrativeLimiter, s.handleNarrative))
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/hot-locations", s.handleHotLocations)
	mux.HandleFunc("/api/v1/reporting-actors", s.handleReportingActors)
	mux.HandleFunc("/api/v1/threads", s.handleThreads)
	mux.HandleFunc("/api/v1/consequences", s.handleConsequences)

	// Admin endpoints.
	mux.HandleFunc("/api/v1/advance", s.adminOnly(s.handleAdvance))
	mux.HandleFunc("/api/v1/resolve/", s.adminOnly(s.handleResolve))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires POST with a bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	summary := s.Eng.Summarize()
	writeJSON(w, map[string]any{
		"name":          "Continuum",
		"turn":          summary.Turn,
		"tension":       summary.Tension,
		"events":        s.Eng.Log.Len(),
		"threads":       len(summary.Threads),
		"consequences":  len(summary.Consequences),
		"hot_locations": len(summary.HotSpots),
	})
}

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"turn":    s.Eng.Turn(),
		"tension": s.Eng.Tension(),
		"story":   s.Eng.TurnStory(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events := s.Eng.Log.All()
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, map[string]any{"events": events})
}

func (s *Server) handleHotLocations(w http.ResponseWriter, r *http.Request) {
	threshold := 0.3
	if v := r.URL.Query().Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			http.Error(w, "bad threshold", http.StatusBadRequest)
			return
		}
		threshold = f
	}
	writeJSON(w, map[string]any{"locations": s.Eng.HotLocations(threshold)})
}

func (s *Server) handleReportingActors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"actors": s.Eng.ReportingActors(0.6)})
}

func (s *Server) handleThreads(w http.ResponseWriter, r *http.Request) {
	threads := s.Eng.ActiveThreads()
	type entry struct {
		ID          string   `json:"id"`
		Description string   `json:"description"`
		Status      string   `json:"status"`
		Intensity   float64  `json:"intensity"`
		Events      int      `json:"events"`
		MainActors  []string `json:"main_actors,omitempty"`
	}
	out := make([]entry, 0, len(threads))
	for _, t := range threads {
		out = append(out, entry{
			ID:          t.ID,
			Description: t.Description,
			Status:      string(t.Status),
			Intensity:   t.Intensity,
			Events:      len(t.Events),
			MainActors:  t.MainActors,
		})
	}
	writeJSON(w, map[string]any{"threads": out})
}

func (s *Server) handleConsequences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"active":  s.Eng.ActiveConsequences(),
		"pending": s.Eng.PendingConsequences(),
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if s.Advance == nil {
		http.Error(w, "manual advance disabled", http.StatusForbidden)
		return
	}
	report, err := s.Advance()
	if err != nil {
		slog.Error("manual advance failed", "error", err)
		http.Error(w, "advance failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

// handleResolve closes a consequence: POST /api/v1/resolve/{id}.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/resolve/")
	if id == "" {
		http.Error(w, "missing consequence id", http.StatusBadRequest)
		return
	}
	if !s.Eng.ResolveConsequence(id) {
		http.Error(w, "unknown or already resolved consequence", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"resolved": id})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
