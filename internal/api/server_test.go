package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/entropy"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/story"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	eng := engine.New(entropy.New(3), nil)
	if err := eng.RecordAction(&event.Event{
		Category: event.MissionFailure,
		ActorID:  "traveler-1",
		Location: "Downtown",
		Detail:   event.MissionDetail{MissionType: "extraction", Importance: event.ImportanceMajor},
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	eng.AdvanceTurn(story.Feeds{})

	srv := &Server{
		Eng:      eng,
		AdminKey: "hunter2",
		Advance: func() (*engine.TurnReport, error) {
			return eng.AdvanceTurn(story.Feeds{}), nil
		},
	}
	return srv, eng
}

func get(t *testing.T, h http.HandlerFunc, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	var body map[string]any
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec, body
}

func TestStatus(t *testing.T) {
	srv, eng := newTestServer(t)
	rec, body := get(t, srv.handleStatus, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if int(body["turn"].(float64)) != eng.Turn() {
		t.Errorf("turn = %v, want %d", body["turn"], eng.Turn())
	}
	if body["events"].(float64) < 1 {
		t.Error("status reports no events")
	}
}

func TestNarrative(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, body := get(t, srv.handleNarrative, "/api/v1/narrative")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["story"].(string) == "" {
		t.Error("narrative returned no story")
	}
}

func TestEventsLimit(t *testing.T) {
	srv, _ := newTestServer(t)
	_, body := get(t, srv.handleEvents, "/api/v1/events?limit=1")
	events := body["events"].([]any)
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}

	rec, _ := get(t, srv.handleEvents, "/api/v1/events?limit=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit accepted: %d", rec.Code)
	}
}

func TestHotLocations(t *testing.T) {
	srv, _ := newTestServer(t)
	_, body := get(t, srv.handleHotLocations, "/api/v1/hot-locations?threshold=0.3")
	locs := body["locations"].([]any)
	if len(locs) != 1 {
		t.Fatalf("hot locations = %d, want 1", len(locs))
	}
	loc := locs[0].(map[string]any)
	if loc["location"] != "Downtown" {
		t.Errorf("hot location = %v, want Downtown", loc["location"])
	}

	rec, _ := get(t, srv.handleHotLocations, "/api/v1/hot-locations?threshold=2")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range threshold accepted: %d", rec.Code)
	}
}

func TestConsequences(t *testing.T) {
	srv, _ := newTestServer(t)
	_, body := get(t, srv.handleConsequences, "/api/v1/consequences")
	if _, ok := body["active"]; !ok {
		t.Error("response missing active list")
	}
	if _, ok := body["pending"]; !ok {
		t.Error("response missing pending list")
	}
}

func TestAdminAuth(t *testing.T) {
	srv, eng := newTestServer(t)
	handler := srv.adminOnly(srv.handleAdvance)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/advance", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET allowed on admin endpoint: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/advance", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated POST = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/advance", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token POST = %d, want 401", rec.Code)
	}

	before := eng.Turn()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/advance", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorized POST = %d, want 200", rec.Code)
	}
	if eng.Turn() != before+1 {
		t.Errorf("advance did not step the turn: %d -> %d", before, eng.Turn())
	}
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.AdminKey = ""
	handler := srv.adminOnly(srv.handleAdvance)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/advance", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("keyless admin POST = %d, want 403", rec.Code)
	}
}

func TestResolveConsequence(t *testing.T) {
	srv, eng := newTestServer(t)
	handler := srv.adminOnly(srv.handleResolve)

	// The failed mission scheduled an urgent investigation; advancing in
	// newTestServer triggered it.
	active := eng.ActiveConsequences()
	if len(active) == 0 {
		t.Fatal("no active consequence to resolve")
	}
	id := active[0].ID

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve/"+id, nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve = %d, want 200", rec.Code)
	}
	for _, c := range eng.ActiveConsequences() {
		if c.ID == id {
			t.Error("consequence still active after resolve")
		}
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/resolve/no-such-id", nil)
	req.Header.Set("Authorization", "Bearer hunter2")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id resolve = %d, want 404", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("budget denied too early")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request within window allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("separate IP shares a bucket")
	}
	if rl.RetryAfter("10.0.0.1") < 1 {
		t.Error("no retry-after for limited IP")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	calls := 0
	h := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) { calls++ })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/narrative", nil)
	req.RemoteAddr = "10.1.1.1:4242"
	h(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 missing Retry-After")
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5000"
	if ip := clientIP(req); ip != "192.0.2.7" {
		t.Errorf("ip = %q", ip)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 192.0.2.7")
	if ip := clientIP(req); ip != "203.0.113.5" {
		t.Errorf("forwarded ip = %q", ip)
	}
	if !strings.HasPrefix(req.RemoteAddr, "192.0.2.7") {
		t.Fatal("request mutated")
	}
}
