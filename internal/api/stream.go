package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/tribute-arena/internal/engine"
)

const (
	maxSSEConns   = 4
	subscriberBuf = 128
	catchUpEvents = 50
)

// Hub fans game events out to stream subscribers. Publish never blocks;
// a subscriber that falls behind misses events.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan engine.Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan engine.Event)}
}

// Subscribe registers a new listener.
func (h *Hub) Subscribe() (int, <-chan engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	ch := make(chan engine.Event, subscriberBuf)
	h.subs[h.next] = ch
	return h.next, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

// Publish delivers e to every subscriber with room for it. It has the
// engine.Notifier signature.
func (h *Hub) Publish(e engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			slog.Debug("stream subscriber lagging, event dropped", "sub_id", id)
		}
	}
}

// handleStream provides an SSE endpoint for real-time event streaming,
// starting with a short catch-up of recent events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	current := atomic.AddInt32(&s.sseConns, 1)
	defer atomic.AddInt32(&s.sseConns, -1)
	if current > maxSSEConns {
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	subID, ch := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(subID)

	var recent []engine.Event
	s.Runner.Do(func(sess *engine.Session) error {
		recent = lastEvents(sess.Events, catchUpEvents)
		return nil
	})
	for _, e := range recent {
		writeSSEEvent(w, e)
	}
	flusher.Flush()
	slog.Info("SSE client connected", "sub_id", subID)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e engine.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Category, data)
}

func lastEvents(events []engine.Event, n int) []engine.Event {
	start := 0
	if len(events) > n {
		start = len(events) - n
	}
	out := make([]engine.Event, len(events)-start)
	copy(out, events[start:])
	return out
}
