// Package persistence stores games, rosters and the event log in SQLite or
// Postgres. It implements engine.Store.
package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/tributes"
)

//go:embed migrations/*/*.sql
var migrationFS embed.FS

// Dialect selects the SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ErrNotFound is returned when a game does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a database connection for game persistence.
type DB struct {
	conn    *sqlx.DB
	dialect Dialect
}

// Open opens the database and applies pending migrations. For SQLite dsn is
// a file path; for Postgres it is a connection string.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	var driver string
	switch dialect {
	case SQLite, "":
		dialect = SQLite
		driver = "sqlite"
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case Postgres:
		driver = "pgx"
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect, err)
	}
	if dialect == SQLite {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s db: %w", dialect, err)
	}

	db := &DB{conn: conn, dialect: dialect}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database opened", "dialect", dialect)
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at BIGINT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var done []string
	if err := db.conn.SelectContext(ctx, &done, "SELECT version FROM schema_migrations"); err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	applied := make(map[string]bool, len(done))
	for _, v := range done {
		applied[v] = true
	}

	files, err := fs.Glob(migrationFS, fmt.Sprintf("migrations/%s/*.sql", db.dialect))
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		version := file[strings.LastIndex(file, "/")+1:]
		if applied[version] {
			continue
		}
		body, err := migrationFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		tx, err := db.conn.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, db.conn.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
			version, time.Now().Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
		slog.Info("migration applied", "version", version)
	}
	return nil
}

type tributeRow struct {
	GameID       string         `db:"game_id"`
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	District     int            `db:"district"`
	Health       int            `db:"health"`
	Sanity       int            `db:"sanity"`
	Movement     int            `db:"movement"`
	Strength     int            `db:"strength"`
	Defense      int            `db:"defense"`
	Dexterity    int            `db:"dexterity"`
	Bravery      int            `db:"bravery"`
	Loyalty      int            `db:"loyalty"`
	Speed        int            `db:"speed"`
	Intelligence int            `db:"intelligence"`
	Persuasion   int            `db:"persuasion"`
	Luck         int            `db:"luck"`
	Area         sql.NullString `db:"area"`
	Hidden       int            `db:"hidden"`
	Status       string         `db:"status"`
	DayKilled    int            `db:"day_killed"`
	KilledBy     string         `db:"killed_by"`
	Kills        int            `db:"kills"`
	Wins         int            `db:"wins"`
	Defeats      int            `db:"defeats"`
	Draws        int            `db:"draws"`
	Games        int            `db:"games"`
	ItemsJSON    string         `db:"items_json"`
}

var tributeColumns = []string{
	"game_id", "id", "name", "district",
	"health", "sanity", "movement",
	"strength", "defense", "dexterity", "bravery", "loyalty", "speed", "intelligence", "persuasion", "luck",
	"area", "hidden", "status", "day_killed", "killed_by",
	"kills", "wins", "defeats", "draws", "games",
	"items_json",
}

func toTributeRow(gameID uuid.UUID, t *tributes.Tribute) (tributeRow, error) {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return tributeRow{}, err
	}
	status, err := t.Status.MarshalText()
	if err != nil {
		return tributeRow{}, err
	}
	r := tributeRow{
		GameID:       gameID.String(),
		ID:           int64(t.ID),
		Name:         t.Name,
		District:     t.District,
		Health:       t.Health,
		Sanity:       t.Sanity,
		Movement:     t.Movement,
		Strength:     t.Strength,
		Defense:      t.Defense,
		Dexterity:    t.Dexterity,
		Bravery:      t.Bravery,
		Loyalty:      t.Loyalty,
		Speed:        t.Speed,
		Intelligence: t.Intelligence,
		Persuasion:   t.Persuasion,
		Luck:         t.Luck,
		Status:       string(status),
		DayKilled:    t.DayKilled,
		KilledBy:     t.KilledBy,
		Kills:        t.Statistics.Kills,
		Wins:         t.Statistics.Wins,
		Defeats:      t.Statistics.Defeats,
		Draws:        t.Statistics.Draws,
		Games:        t.Statistics.Games,
		ItemsJSON:    string(items),
	}
	if t.Area.Valid() {
		r.Area = sql.NullString{String: t.Area.Code(), Valid: true}
	}
	if t.Hidden {
		r.Hidden = 1
	}
	return r, nil
}

func (r tributeRow) tribute() (*tributes.Tribute, error) {
	t := &tributes.Tribute{
		ID:       tributes.ID(r.ID),
		Name:     r.Name,
		District: r.District,
		Attributes: tributes.Attributes{
			Health:       r.Health,
			Sanity:       r.Sanity,
			Movement:     r.Movement,
			Strength:     r.Strength,
			Defense:      r.Defense,
			Dexterity:    r.Dexterity,
			Bravery:      r.Bravery,
			Loyalty:      r.Loyalty,
			Speed:        r.Speed,
			Intelligence: r.Intelligence,
			Persuasion:   r.Persuasion,
			Luck:         r.Luck,
		},
		Hidden:    r.Hidden != 0,
		DayKilled: r.DayKilled,
		KilledBy:  r.KilledBy,
		Statistics: tributes.Statistics{
			Kills:   r.Kills,
			Wins:    r.Wins,
			Defeats: r.Defeats,
			Draws:   r.Draws,
			Games:   r.Games,
		},
	}
	if err := t.Status.UnmarshalText([]byte(r.Status)); err != nil {
		return nil, fmt.Errorf("tribute %d: %w", r.ID, err)
	}
	if r.Area.Valid {
		a, err := arena.Parse(r.Area.String)
		if err != nil {
			return nil, fmt.Errorf("tribute %d: %w", r.ID, err)
		}
		t.Area = a
	}
	if err := json.Unmarshal([]byte(r.ItemsJSON), &t.Items); err != nil {
		return nil, fmt.Errorf("tribute %d items: %w", r.ID, err)
	}
	return t, nil
}

// SaveTribute inserts or updates one tribute of a game.
func (db *DB) SaveTribute(ctx context.Context, gameID uuid.UUID, t *tributes.Tribute) error {
	row, err := toTributeRow(gameID, t)
	if err != nil {
		return fmt.Errorf("encode tribute %d: %w", t.ID, err)
	}
	if _, err := db.conn.NamedExecContext(ctx, upsert("tributes", tributeColumns, []string{"game_id", "id"}), row); err != nil {
		return fmt.Errorf("save tribute %d: %w", t.ID, err)
	}
	return nil
}

// LoadRoster returns every tribute of a game, ordered by id.
func (db *DB) LoadRoster(ctx context.Context, gameID uuid.UUID) ([]*tributes.Tribute, error) {
	var rows []tributeRow
	q := db.conn.Rebind("SELECT " + strings.Join(tributeColumns, ", ") + " FROM tributes WHERE game_id = ? ORDER BY id")
	if err := db.conn.SelectContext(ctx, &rows, q, gameID.String()); err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	out := make([]*tributes.Tribute, 0, len(rows))
	for _, r := range rows {
		t, err := r.tribute()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

type gameRow struct {
	ID          string        `db:"id"`
	Day         int           `db:"day"`
	State       string        `db:"state"`
	WinnerID    sql.NullInt64 `db:"winner_id"`
	ClosedJSON  string        `db:"closed_json"`
	ItemsJSON   string        `db:"items_json"`
	HazardsJSON string        `db:"hazards_json"`
	CreatedAt   int64         `db:"created_at"`
}

var gameColumns = []string{"id", "day", "state", "winner_id", "closed_json", "items_json", "hazards_json", "created_at"}

// SaveSession inserts or updates the game row. The roster is saved
// separately through SaveTribute.
func (db *DB) SaveSession(ctx context.Context, s *engine.Session) error {
	var closed []string
	for _, a := range arena.All() {
		if s.Closed[a] {
			closed = append(closed, a.Code())
		}
	}
	items := make(map[string][]tributes.Item, len(s.Items))
	for a, list := range s.Items {
		if len(list) > 0 {
			items[a.Code()] = list
		}
	}

	row := gameRow{
		ID:          s.ID.String(),
		Day:         s.Day,
		State:       s.State.String(),
		ClosedJSON:  asJSON(closed),
		ItemsJSON:   asJSON(items),
		HazardsJSON: asJSON(s.Hazards),
		CreatedAt:   time.Now().UnixNano(),
	}
	if s.WinnerID != nil {
		row.WinnerID = sql.NullInt64{Int64: int64(*s.WinnerID), Valid: true}
	}

	// created_at is left alone on update.
	if _, err := db.conn.NamedExecContext(ctx, upsert("games", gameColumns, []string{"id"}, "created_at"), row); err != nil {
		return fmt.Errorf("save game %s: %w", s.ID, err)
	}
	return nil
}

// LoadSession reads a game row. The returned session has no roster or
// random source yet; callers pass both to Attach.
func (db *DB) LoadSession(ctx context.Context, id uuid.UUID) (*engine.Session, error) {
	var row gameRow
	q := db.conn.Rebind("SELECT " + strings.Join(gameColumns, ", ") + " FROM games WHERE id = ?")
	if err := db.conn.GetContext(ctx, &row, q, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}

	state, err := engine.ParseState(row.State)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}
	s := &engine.Session{
		ID:     id,
		Day:    row.Day,
		State:  state,
		Closed: make(map[arena.Area]bool),
		Items:  make(map[arena.Area][]tributes.Item),
	}
	if row.WinnerID.Valid {
		w := tributes.ID(row.WinnerID.Int64)
		s.WinnerID = &w
	}

	var closed []string
	if err := json.Unmarshal([]byte(row.ClosedJSON), &closed); err != nil {
		return nil, fmt.Errorf("game %s closed areas: %w", id, err)
	}
	for _, code := range closed {
		a, err := arena.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}
		s.Closed[a] = true
	}

	var items map[string][]tributes.Item
	if err := json.Unmarshal([]byte(row.ItemsJSON), &items); err != nil {
		return nil, fmt.Errorf("game %s items: %w", id, err)
	}
	for code, list := range items {
		a, err := arena.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}
		s.Items[a] = list
	}

	if err := json.Unmarshal([]byte(row.HazardsJSON), &s.Hazards); err != nil {
		return nil, fmt.Errorf("game %s hazards: %w", id, err)
	}
	return s, nil
}

// GameSummary is one line of the game listing.
type GameSummary struct {
	ID       uuid.UUID    `json:"id"`
	Day      int          `json:"day"`
	State    string       `json:"state"`
	WinnerID *tributes.ID `json:"winner_id,omitempty"`
	Created  time.Time    `json:"created"`
}

// ListGames returns games newest first.
func (db *DB) ListGames(ctx context.Context, limit int) ([]GameSummary, error) {
	var rows []gameRow
	q := db.conn.Rebind("SELECT " + strings.Join(gameColumns, ", ") + " FROM games ORDER BY created_at DESC LIMIT ?")
	if err := db.conn.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make([]GameSummary, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("game id %q: %w", r.ID, err)
		}
		g := GameSummary{ID: id, Day: r.Day, State: r.State, Created: time.Unix(0, r.CreatedAt).UTC()}
		if r.WinnerID.Valid {
			w := tributes.ID(r.WinnerID.Int64)
			g.WinnerID = &w
		}
		out = append(out, g)
	}
	return out, nil
}

// LatestGame returns the id of the most recently created game.
func (db *DB) LatestGame(ctx context.Context) (uuid.UUID, error) {
	games, err := db.ListGames(ctx, 1)
	if err != nil {
		return uuid.Nil, err
	}
	if len(games) == 0 {
		return uuid.Nil, ErrNotFound
	}
	return games[0].ID, nil
}

// AppendLog appends one line to a game's event log.
func (db *DB) AppendLog(ctx context.Context, gameID uuid.UUID, day int, message string) error {
	_, err := db.conn.ExecContext(ctx,
		db.conn.Rebind("INSERT INTO logs (game_id, day, message) VALUES (?, ?, ?)"),
		gameID.String(), day, message,
	)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// RecentEvents returns the most recent log lines of a game, oldest first.
func (db *DB) RecentEvents(ctx context.Context, gameID uuid.UUID, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.SelectContext(ctx, &events,
		db.conn.Rebind("SELECT day, message FROM logs WHERE game_id = ? ORDER BY id DESC LIMIT ?"),
		gameID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// upsert builds a named INSERT that, on a key conflict, updates every
// column except the keys and keep.
func upsert(table string, cols, keys []string, keep ...string) string {
	skip := make(map[string]bool, len(keys)+len(keep))
	for _, k := range append(keys, keep...) {
		skip[k] = true
	}
	named := make([]string, len(cols))
	var sets []string
	for i, c := range cols {
		named[i] = ":" + c
		if !skip[c] {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), strings.Join(named, ", "), strings.Join(keys, ", "), strings.Join(sets, ", "))
}

func asJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
