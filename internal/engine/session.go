// Package engine runs the games: the session state machine, the day/night
// cycle orchestrator and the area hazard system.
package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/tributes"
)

// MaxTributes is the roster capacity of a game.
const MaxTributes = 24

var (
	// ErrInvariant marks a broken contract with the collaborator that
	// supplies the roster and area graph. It is never recovered locally.
	ErrInvariant = errors.New("engine invariant violated")
	// ErrGameFinished is returned when a cycle is requested after the end.
	ErrGameFinished = errors.New("game already finished")
	// ErrRosterFull is returned when adding to a full roster.
	ErrRosterFull = errors.New("roster is full")
	// ErrGameStarted is returned when the roster is changed after the start.
	ErrGameStarted = errors.New("game already started")
)

// State is the lifecycle stage of a session.
type State uint8

const (
	NotStarted State = iota
	InProgress
	Finished
)

var stateNames = [...]string{
	NotStarted: "not_started",
	InProgress: "in_progress",
	Finished:   "finished",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ParseState parses the output of State.String.
func ParseState(raw string) (State, error) {
	for i, name := range stateNames {
		if raw == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown game state %q", raw)
}

// Config tunes the orchestrator's overrides and item drops.
type Config struct {
	ScatterChance float64 // Day 1: chance a tribute runs from the hub
	FeastChance   float64 // Feast day: chance a tribute heads to the hub
	FleeChance    float64 // Chance a tribute in a closed area tries to leave
	FeastDay      int
	StartingItems int // Items stocked at the Cornucopia on start
	FeastItems    int // Items added at the Cornucopia on feast day
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		ScatterChance: 0.75,
		FeastChance:   0.5,
		FleeChance:    0.9,
		FeastDay:      3,
		StartingItems: 12,
		FeastItems:    8,
	}
}

// Store is the persistence collaborator. The session calls it at turn and
// segment boundaries and never holds anything open across a cycle.
type Store interface {
	LoadRoster(ctx context.Context, gameID uuid.UUID) ([]*tributes.Tribute, error)
	SaveTribute(ctx context.Context, gameID uuid.UUID, t *tributes.Tribute) error
	LoadSession(ctx context.Context, id uuid.UUID) (*Session, error)
	SaveSession(ctx context.Context, s *Session) error
	AppendLog(ctx context.Context, gameID uuid.UUID, day int, message string) error
}

// Session is one game. It exclusively owns its roster, the closed-area set
// and the items lying in each area; all mutation goes through its methods.
type Session struct {
	ID       uuid.UUID                      `json:"id"`
	Day      int                            `json:"day"`
	State    State                          `json:"state"`
	Closed   map[arena.Area]bool            `json:"closed"`
	Tributes []*tributes.Tribute            `json:"tributes"`
	Items    map[arena.Area][]tributes.Item `json:"items"`
	WinnerID *tributes.ID                   `json:"winner_id,omitempty"`
	Hazards  []arena.HazardEvent            `json:"hazards"`
	Terrain  map[arena.Area]arena.Terrain   `json:"terrain"`
	Events   []Event                        `json:"-"` // Recent events, trimmed on flush

	Config Config   `json:"-"`
	Store  Store    `json:"-"` // Optional
	Notify Notifier `json:"-"` // Optional

	rng     entropy.Source
	index   map[tributes.ID]*tributes.Tribute
	segment Segment
	pending []Event
	dirty   []*tributes.Tribute
}

// NewSession creates a game that has not started yet.
func NewSession(id uuid.UUID, roster []*tributes.Tribute, src entropy.Source) *Session {
	s := &Session{
		ID:     id,
		Closed: make(map[arena.Area]bool),
		Items:  make(map[arena.Area][]tributes.Item),
		Config: DefaultConfig(),
	}
	s.Attach(roster, src)
	return s
}

// Attach binds a session, typically one just loaded from a Store, to its
// roster and random source.
func (s *Session) Attach(roster []*tributes.Tribute, src entropy.Source) {
	s.Tributes = roster
	s.rng = src
	s.index = make(map[tributes.ID]*tributes.Tribute, len(roster))
	for _, t := range roster {
		s.index[t.ID] = t
	}
	if s.Closed == nil {
		s.Closed = make(map[arena.Area]bool)
	}
	if s.Items == nil {
		s.Items = make(map[arena.Area][]tributes.Item)
	}
	if s.Config == (Config{}) {
		s.Config = DefaultConfig()
	}
	s.Terrain = arena.GenerateTerrain(TerrainSeed(s.ID))
}

// TerrainSeed derives the arena terrain seed from the game id, so a
// reloaded game regenerates the same arena.
func TerrainSeed(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[:8]) >> 1)
}

// AddTribute adds a tribute to a game that has not started.
func (s *Session) AddTribute(t *tributes.Tribute) error {
	if s.State != NotStarted {
		return ErrGameStarted
	}
	if len(s.Tributes) >= MaxTributes {
		return ErrRosterFull
	}
	if _, dup := s.index[t.ID]; dup {
		return fmt.Errorf("%w: duplicate tribute id %d", ErrInvariant, t.ID)
	}
	s.Tributes = append(s.Tributes, t)
	s.index[t.ID] = t
	return nil
}

// FillRoster spawns tributes until the roster is full and returns how many
// were added. A full roster is a no-op.
func (s *Session) FillRoster(sp *tributes.Spawner) int {
	added := 0
	for {
		t := sp.Spawn()
		if err := s.AddTribute(t); err != nil {
			if !errors.Is(err, ErrRosterFull) {
				slog.Warn("roster fill stopped", "game", s.ID, "error", err)
			} else if added == 0 {
				slog.Info("roster already full", "game", s.ID, "size", len(s.Tributes))
			}
			return added
		}
		added++
	}
}

// Tribute looks a tribute up by id.
func (s *Session) Tribute(id tributes.ID) (*tributes.Tribute, error) {
	t, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tribute %d", ErrInvariant, id)
	}
	return t, nil
}

// Living returns the tributes that still have health, in roster order.
func (s *Session) Living() []*tributes.Tribute {
	var out []*tributes.Tribute
	for _, t := range s.Tributes {
		if t.IsAlive() {
			out = append(out, t)
		}
	}
	return out
}

// InArea returns the living tributes in a, in roster order.
func (s *Session) InArea(a arena.Area) []*tributes.Tribute {
	var out []*tributes.Tribute
	for _, t := range s.Tributes {
		if t.InPlay() && t.Area == a {
			out = append(out, t)
		}
	}
	return out
}

// OpenAreas returns the areas not currently closed by a hazard.
func (s *Session) OpenAreas() []arena.Area {
	var out []arena.Area
	for _, a := range arena.All() {
		if !s.Closed[a] {
			out = append(out, a)
		}
	}
	return out
}

// Winner returns the winning tribute, if the game ended with one.
func (s *Session) Winner() (*tributes.Tribute, bool) {
	if s.WinnerID == nil {
		return nil, false
	}
	t, ok := s.index[*s.WinnerID]
	return t, ok
}

// Start places every living tribute at the Cornucopia, stocks it and moves
// the game to InProgress. Starting a started game is a no-op.
func (s *Session) Start(ctx context.Context) error {
	if s.State != NotStarted {
		return nil
	}
	if s.rng == nil {
		return fmt.Errorf("%w: session has no random source", ErrInvariant)
	}

	for _, t := range s.Tributes {
		t.Area = arena.Nowhere
		t.Hidden = false
		t.Brain.Clear()
		if !t.IsAlive() {
			continue
		}
		t.Area = arena.Cornucopia
		t.Statistics.Games++
	}
	s.stock(arena.Cornucopia, s.Config.StartingItems)
	s.State = InProgress

	s.emit(CategoryGame, msgGamesBegin(len(s.Living())))
	slog.Info("game started", "game", s.ID, "tributes", len(s.Tributes))

	for _, t := range s.Tributes {
		if err := s.saveTribute(ctx, t); err != nil {
			return err
		}
	}
	return s.flush(ctx)
}

func (s *Session) stock(a arena.Area, n int) {
	for i := 0; i < n; i++ {
		s.Items[a] = append(s.Items[a], tributes.RandomItem(s.rng))
	}
}

func (s *Session) saveTribute(ctx context.Context, t *tributes.Tribute) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.SaveTribute(ctx, s.ID, t); err != nil {
		return fmt.Errorf("save tribute %d: %w", t.ID, err)
	}
	return nil
}

// maxEvents bounds the in-memory event history.
const maxEvents = 1000

// flush writes pending log lines and the session row.
func (s *Session) flush(ctx context.Context) error {
	pending := s.pending
	s.pending = nil
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
	if s.Store == nil {
		return nil
	}
	for _, e := range pending {
		if err := s.Store.AppendLog(ctx, s.ID, e.Day, e.Description); err != nil {
			return fmt.Errorf("append log: %w", err)
		}
	}
	if err := s.Store.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
