// Package api provides the HTTP API for watching and steering a game.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/persistence"
	"github.com/talgya/tribute-arena/internal/tributes"
)

// Server serves one running game over HTTP.
type Server struct {
	Runner   *engine.Runner
	DB       *persistence.DB // Optional; enables the game listing
	Hub      *Hub            // Optional; enables the event stream
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Active SSE connection count (atomic).
	sseConns int32
}

// Handler builds the request router.
func (s *Server) Handler() http.Handler {
	adminLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/tributes", s.handleTributes)
	mux.HandleFunc("GET /api/v1/tribute/{id}", s.handleTributeDetail)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/areas", s.handleAreas)
	mux.HandleFunc("GET /api/v1/games", s.handleGames)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	mux.HandleFunc("POST /api/v1/cycle", s.adminOnly(RateLimitMiddleware(adminLimiter, s.handleCycle)))
	mux.HandleFunc("POST /api/v1/hazard", s.adminOnly(RateLimitMiddleware(adminLimiter, s.handleHazard)))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))

	return mux
}

// Start begins serving the HTTP API in a goroutine. The returned server is
// used for shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// Shutdown stops srv, waiting up to five seconds for open requests.
func Shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no ARENA_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type statusResponse struct {
	GameID  string   `json:"game_id"`
	Day     int      `json:"day"`
	State   string   `json:"state"`
	Living  int      `json:"living"`
	Total   int      `json:"total"`
	Closed  []string `json:"closed_areas"`
	Winner  string   `json:"winner,omitempty"`
	Hazards int      `json:"hazards"`
	Speed   float64  `json:"speed"`
}

func (s *Server) status(sess *engine.Session) statusResponse {
	st := statusResponse{
		GameID:  sess.ID.String(),
		Day:     sess.Day,
		State:   sess.State.String(),
		Living:  len(sess.Living()),
		Total:   len(sess.Tributes),
		Closed:  []string{},
		Hazards: len(sess.Hazards),
		Speed:   s.Runner.Speed,
	}
	for _, a := range arena.All() {
		if sess.Closed[a] {
			st.Closed = append(st.Closed, a.Code())
		}
	}
	if w, ok := sess.Winner(); ok {
		st.Winner = w.Name
	}
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st statusResponse
	s.Runner.Do(func(sess *engine.Session) error {
		st = s.status(sess)
		return nil
	})
	writeJSON(w, st)
}

type tributeSummary struct {
	ID       tributes.ID `json:"id"`
	Name     string      `json:"name"`
	District int         `json:"district"`
	Area     string      `json:"area,omitempty"`
	Health   int         `json:"health"`
	Sanity   int         `json:"sanity"`
	Status   string      `json:"status"`
	Hidden   bool        `json:"hidden"`
	Kills    int         `json:"kills"`
	KilledBy string      `json:"killed_by,omitempty"`
}

func (s *Server) handleTributes(w http.ResponseWriter, r *http.Request) {
	aliveOnly := r.URL.Query().Get("alive") == "true"
	district, _ := strconv.Atoi(r.URL.Query().Get("district"))

	result := []tributeSummary{}
	s.Runner.Do(func(sess *engine.Session) error {
		for _, t := range sess.Tributes {
			if aliveOnly && !t.IsAlive() {
				continue
			}
			if district != 0 && t.District != district {
				continue
			}
			result = append(result, tributeSummary{
				ID:       t.ID,
				Name:     t.Name,
				District: t.District,
				Area:     t.Area.Code(),
				Health:   t.Health,
				Sanity:   t.Sanity,
				Status:   t.Status.String(),
				Hidden:   t.Hidden,
				Kills:    t.Statistics.Kills,
				KilledBy: t.KilledBy,
			})
		}
		return nil
	})
	writeJSON(w, result)
}

func (s *Server) handleTributeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid tribute id", http.StatusBadRequest)
		return
	}

	var snapshot tributes.Tribute
	err = s.Runner.Do(func(sess *engine.Session) error {
		t, err := sess.Tribute(tributes.ID(id))
		if err != nil {
			return err
		}
		snapshot = *t
		snapshot.Items = append([]tributes.Item(nil), t.Items...)
		return nil
	})
	if err != nil {
		http.Error(w, "tribute not found", http.StatusNotFound)
		return
	}
	writeJSON(w, snapshot)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	category := r.URL.Query().Get("category")

	var events []engine.Event
	s.Runner.Do(func(sess *engine.Session) error {
		events = lastEvents(sess.Events, len(sess.Events))
		return nil
	})

	if category != "" {
		filtered := []engine.Event{}
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	writeJSON(w, lastEvents(events, limit))
}

type areaSummary struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Closed      bool     `json:"closed"`
	Biome       string   `json:"biome"`
	Elevation   float64  `json:"elevation"`
	Temperature float64  `json:"temperature"`
	Moisture    float64  `json:"moisture"`
	Tributes    int      `json:"tributes"`
	Items       int      `json:"items"`
	Neighbors   []string `json:"neighbors"`
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	var result []areaSummary
	s.Runner.Do(func(sess *engine.Session) error {
		for _, a := range arena.All() {
			terrain := sess.Terrain[a]
			sum := areaSummary{
				Code:        a.Code(),
				Name:        a.String(),
				Closed:      sess.Closed[a],
				Biome:       terrain.Biome.String(),
				Elevation:   terrain.Elevation,
				Temperature: terrain.Temperature,
				Moisture:    terrain.Moisture,
				Tributes:    len(sess.InArea(a)),
				Items:       len(sess.Items[a]),
			}
			for _, n := range arena.Neighbors(a) {
				sum.Neighbors = append(sum.Neighbors, n.Code())
			}
			result = append(result, sum)
		}
		return nil
	})
	writeJSON(w, result)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	games, err := s.DB.ListGames(r.Context(), 50)
	if err != nil {
		slog.Error("list games failed", "error", err)
		http.Error(w, "list games failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, games)
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	finished := false
	s.Runner.Do(func(sess *engine.Session) error {
		finished = sess.State == engine.Finished
		return nil
	})
	if finished {
		http.Error(w, "game already finished", http.StatusConflict)
		return
	}

	// ErrGameFinished here means this cycle ended the game.
	if err := s.Runner.Step(r.Context()); err != nil && !errors.Is(err, engine.ErrGameFinished) {
		slog.Error("manual cycle failed", "error", err)
		http.Error(w, "cycle failed", http.StatusInternalServerError)
		return
	}

	var st statusResponse
	s.Runner.Do(func(sess *engine.Session) error {
		st = s.status(sess)
		return nil
	})
	writeJSON(w, st)
}

func (s *Server) handleHazard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hazard string `json:"hazard"`
		Area   string `json:"area"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	h, err := arena.ParseHazard(req.Hazard)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := arena.Parse(req.Area)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var ev arena.HazardEvent
	err = s.Runner.Do(func(sess *engine.Session) error {
		if sess.State != engine.InProgress {
			return engine.ErrGameFinished
		}
		var err error
		ev, err = sess.ForceHazard(h, a)
		return err
	})
	if err != nil {
		http.Error(w, "game is not in progress", http.StatusConflict)
		return
	}
	slog.Info("hazard forced", "hazard", h, "area", a)
	writeJSON(w, map[string]any{
		"hazard": ev.Hazard.String(),
		"area":   ev.Area.Code(),
		"day":    ev.Day,
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Runner.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]float64{"speed": req.Speed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
