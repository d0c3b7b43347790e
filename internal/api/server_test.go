package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/tributes"
)

const testAdminKey = "let-the-games-begin"

func newTestServer(t *testing.T) (*Server, *engine.Session) {
	t.Helper()
	sess := engine.NewSession(uuid.MustParse("2d8c1f4e-7a3b-4e5d-8c9f-1a2b3c4d5e6f"), nil, entropy.New(12))
	sess.FillRoster(tributes.NewSpawner(12, nil))
	hub := NewHub()
	sess.Notify = hub.Publish
	if err := sess.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return &Server{Runner: engine.NewRunner(sess), Hub: hub, AdminKey: testAdminKey}, sess
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	srv, sess := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/status", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var st statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.GameID != sess.ID.String() || st.State != "in_progress" || st.Living != 24 || st.Total != 24 {
		t.Fatalf("status = %+v", st)
	}
}

func TestTributesAndDetail(t *testing.T) {
	srv, sess := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/tributes?district=3", "", "")
	var list []tributeSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("district 3 has %d tributes, want 2", len(list))
	}
	for _, ts := range list {
		if ts.District != 3 || ts.Area != "hub" {
			t.Fatalf("summary = %+v", ts)
		}
	}

	first := sess.Tributes[0]
	rec = do(t, h, http.MethodGet, "/api/v1/tribute/1", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), first.Name) {
		t.Fatalf("detail = %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/tribute/999", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown tribute code = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/tribute/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id code = %d", rec.Code)
	}
}

func TestAreas(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/areas", "", "")
	var areas []areaSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &areas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(areas) != 5 || areas[0].Code != "hub" || areas[0].Tributes != 24 || len(areas[0].Neighbors) != 4 {
		t.Fatalf("areas = %+v", areas)
	}
	for _, a := range areas[1:] {
		if a.Tributes != 0 || len(a.Neighbors) != 1 || a.Biome == "" {
			t.Fatalf("outer area = %+v", a)
		}
	}
}

func TestAdminRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	if rec := do(t, h, http.MethodPost, "/api/v1/cycle", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token code = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/cycle", "", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token code = %d", rec.Code)
	}

	srv.AdminKey = ""
	if rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/cycle", "", "anything"); rec.Code != http.StatusForbidden {
		t.Fatalf("disabled admin code = %d", rec.Code)
	}
}

func TestCycleAdvancesGame(t *testing.T) {
	srv, sess := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/cycle", "", testAdminKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("cycle code = %d: %s", rec.Code, rec.Body)
	}
	if sess.Day != 1 {
		t.Fatalf("day = %d", sess.Day)
	}

	rec = do(t, srv.Handler(), http.MethodGet, "/api/v1/events?limit=500&category=cycle", "", "")
	var events []engine.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected cycle events")
	}
	for _, e := range events {
		if e.Category != engine.CategoryCycle {
			t.Fatalf("category filter leaked %+v", e)
		}
	}
}

func TestCycleOnFinishedGame(t *testing.T) {
	srv, sess := newTestServer(t)
	sess.State = engine.Finished
	if rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/cycle", "", testAdminKey); rec.Code != http.StatusConflict {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestForceHazard(t *testing.T) {
	srv, sess := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/hazard", `{"hazard":"flood","area":"ne"}`, testAdminKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body)
	}
	if len(sess.Hazards) != 1 || sess.Hazards[0].Area.Code() != "ne" {
		t.Fatalf("hazards = %+v", sess.Hazards)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/hazard", `{"hazard":"meteor","area":"ne"}`, testAdminKey); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown hazard code = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/hazard", `{"hazard":"flood","area":"moon"}`, testAdminKey); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown area code = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/hazard", `{`, testAdminKey); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json code = %d", rec.Code)
	}
}

func TestSpeed(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":0}`, testAdminKey); rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if srv.Runner.Speed != 0 {
		t.Fatalf("speed = %g", srv.Runner.Speed)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":-1}`, testAdminKey); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative speed code = %d", rec.Code)
	}
}

func TestGamesWithoutDB(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/games", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestStreamDeliversEvents(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(buf[:n]), "event: game") {
		t.Fatalf("catch-up = %q", buf[:n])
	}
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	for i := 0; i < subscriberBuf+10; i++ {
		h.Publish(engine.Event{Day: i})
	}
	if len(ch) != subscriberBuf {
		t.Fatalf("buffered %d, want %d", len(ch), subscriberBuf)
	}
	h.Unsubscribe(id)
	for range ch {
	}
	h.Unsubscribe(id)
}
