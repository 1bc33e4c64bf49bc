// Package persistence stores session snapshots in SQLite. Saves are full
// replacements inside one transaction, so a load always sees a consistent
// session.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/continuum/internal/consequence"
	"github.com/talgya/continuum/internal/engine"
	"github.com/talgya/continuum/internal/event"
	"github.com/talgya/continuum/internal/heat"
	"github.com/talgya/continuum/internal/narrative"
)

// DB wraps a SQLite connection for session state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		category TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		detail_json TEXT,
		ext_json TEXT,
		recorded TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS consequences (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		created_turn INTEGER NOT NULL,
		trigger_turn INTEGER NOT NULL,
		resolution_turn INTEGER NOT NULL DEFAULT 0,
		resolve_by INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		actor_id TEXT NOT NULL DEFAULT '',
		intensity REAL NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		urgent INTEGER NOT NULL DEFAULT 0,
		surveillance_duration INTEGER NOT NULL DEFAULT 0,
		detail_level REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS location_heat (
		location TEXT PRIMARY KEY,
		heat_level REAL NOT NULL,
		incident_count INTEGER NOT NULL,
		last_incident_turn INTEGER NOT NULL,
		investigation_active INTEGER NOT NULL,
		surveillance_level REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS actor_suspicion (
		actor_id TEXT PRIMARY KEY,
		suspicion_level REAL NOT NULL,
		observations_json TEXT NOT NULL,
		will_report INTEGER NOT NULL,
		first_observation_turn INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS threads (
		id TEXT PRIMARY KEY,
		intensity REAL NOT NULL,
		last_update INTEGER NOT NULL,
		status TEXT NOT NULL,
		main_actors_json TEXT NOT NULL,
		description TEXT NOT NULL,
		created_turn INTEGER NOT NULL,
		event_indexes_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS seen_patterns (
		key TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_consequences_status ON consequences(status);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save writes a complete snapshot, replacing any previous one.
func (db *DB) Save(snap *engine.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{
		"events", "consequences", "location_heat",
		"actor_suspicion", "threads", "seen_patterns",
	} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := saveEvents(tx, snap.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := saveConsequences(tx, snap.Consequences); err != nil {
		return fmt.Errorf("save consequences: %w", err)
	}
	if err := saveHeat(tx, snap.Locations, snap.Actors); err != nil {
		return fmt.Errorf("save heat: %w", err)
	}
	if err := saveThreads(tx, snap.Threads); err != nil {
		return fmt.Errorf("save threads: %w", err)
	}
	for _, key := range snap.SeenPatterns {
		if _, err := tx.Exec("INSERT INTO seen_patterns (key) VALUES (?)", key); err != nil {
			return fmt.Errorf("save seen pattern: %w", err)
		}
	}
	_, err = tx.Exec(
		"INSERT OR REPLACE INTO session_meta (key, value) VALUES ('turn', ?)",
		strconv.Itoa(snap.Turn),
	)
	if err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("session saved",
		"turn", snap.Turn,
		"events", len(snap.Events),
		"consequences", len(snap.Consequences),
		"threads", len(snap.Threads),
	)
	return nil
}

func saveEvents(tx *sqlx.Tx, events []*event.Event) error {
	stmt, err := tx.Preparex(`INSERT INTO events
		(turn, category, actor_id, location, detail_json, ext_json, recorded)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, ev := range events {
		detail, err := event.MarshalDetail(ev.Detail)
		if err != nil {
			return fmt.Errorf("event %d detail: %w", i, err)
		}
		var ext []byte
		if len(ev.Ext) > 0 {
			ext, _ = json.Marshal(ev.Ext)
		}
		_, err = stmt.Exec(
			ev.Turn, string(ev.Category), ev.ActorID, ev.Location,
			nullableText(detail), nullableText(ext),
			ev.Recorded.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}
	return nil
}

func saveConsequences(tx *sqlx.Tx, cs []*consequence.Consequence) error {
	for _, c := range cs {
		_, err := tx.Exec(`INSERT INTO consequences
			(id, kind, severity, status, created_turn, trigger_turn,
			 resolution_turn, resolve_by, location, actor_id, intensity,
			 description, urgent, surveillance_duration, detail_level)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, string(c.Kind), c.Severity.String(), c.Status.String(),
			c.CreatedTurn, c.TriggerTurn, c.ResolutionTurn, c.ResolveBy,
			c.Location, c.ActorID, c.Intensity, c.Description,
			boolInt(c.Urgent), c.SurveillanceDuration, c.DetailLevel,
		)
		if err != nil {
			return fmt.Errorf("insert consequence %s: %w", c.ID, err)
		}
	}
	return nil
}

func saveHeat(tx *sqlx.Tx, locs []*heat.LocationRecord, actors []*heat.ActorRecord) error {
	for _, rec := range locs {
		_, err := tx.Exec(`INSERT INTO location_heat
			(location, heat_level, incident_count, last_incident_turn,
			 investigation_active, surveillance_level)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.Location, rec.HeatLevel, rec.IncidentCount,
			rec.LastIncidentTurn, boolInt(rec.InvestigationActive),
			rec.SurveillanceLevel,
		)
		if err != nil {
			return fmt.Errorf("insert location %s: %w", rec.Location, err)
		}
	}
	for _, rec := range actors {
		obs, err := json.Marshal(rec.Observations)
		if err != nil {
			return fmt.Errorf("actor %s observations: %w", rec.ActorID, err)
		}
		_, err = tx.Exec(`INSERT INTO actor_suspicion
			(actor_id, suspicion_level, observations_json, will_report,
			 first_observation_turn)
			VALUES (?, ?, ?, ?, ?)`,
			rec.ActorID, rec.SuspicionLevel, string(obs),
			boolInt(rec.WillReport), rec.FirstObservationTurn,
		)
		if err != nil {
			return fmt.Errorf("insert actor %s: %w", rec.ActorID, err)
		}
	}
	return nil
}

func saveThreads(tx *sqlx.Tx, threads []engine.ThreadSnapshot) error {
	for _, ts := range threads {
		t := ts.Thread
		actors, err := json.Marshal(t.MainActors)
		if err != nil {
			return fmt.Errorf("thread %s actors: %w", t.ID, err)
		}
		indexes, err := json.Marshal(ts.EventIndexes)
		if err != nil {
			return fmt.Errorf("thread %s indexes: %w", t.ID, err)
		}
		_, err = tx.Exec(`INSERT INTO threads
			(id, intensity, last_update, status, main_actors_json,
			 description, created_turn, event_indexes_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Intensity, t.LastUpdate, string(t.Status),
			string(actors), t.Description, t.CreatedTurn, string(indexes),
		)
		if err != nil {
			return fmt.Errorf("insert thread %s: %w", t.ID, err)
		}
	}
	return nil
}

// Load reads the stored snapshot. It returns (nil, nil) when the database
// holds no saved session.
func (db *DB) Load() (*engine.Snapshot, error) {
	var turnStr string
	err := db.conn.Get(&turnStr, "SELECT value FROM session_meta WHERE key = 'turn'")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	turn, err := strconv.Atoi(turnStr)
	if err != nil {
		return nil, fmt.Errorf("load meta: bad turn %q", turnStr)
	}

	snap := &engine.Snapshot{Turn: turn}
	if snap.Events, err = db.loadEvents(); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if snap.Consequences, err = db.loadConsequences(); err != nil {
		return nil, fmt.Errorf("load consequences: %w", err)
	}
	if snap.Locations, snap.Actors, err = db.loadHeat(); err != nil {
		return nil, fmt.Errorf("load heat: %w", err)
	}
	if snap.Threads, err = db.loadThreads(); err != nil {
		return nil, fmt.Errorf("load threads: %w", err)
	}
	err = db.conn.Select(&snap.SeenPatterns, "SELECT key FROM seen_patterns ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("load seen patterns: %w", err)
	}
	return snap, nil
}

type eventRow struct {
	Turn     int            `db:"turn"`
	Category string         `db:"category"`
	ActorID  string         `db:"actor_id"`
	Location string         `db:"location"`
	Detail   sql.NullString `db:"detail_json"`
	Ext      sql.NullString `db:"ext_json"`
	Recorded string         `db:"recorded"`
}

func (db *DB) loadEvents() ([]*event.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows, `SELECT turn, category, actor_id, location,
		detail_json, ext_json, recorded FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}

	out := make([]*event.Event, 0, len(rows))
	for i, row := range rows {
		cat := event.Category(row.Category)
		ev := &event.Event{
			Turn:     row.Turn,
			Category: cat,
			ActorID:  row.ActorID,
			Location: row.Location,
		}
		if row.Detail.Valid {
			ev.Detail, err = event.UnmarshalDetail(cat, []byte(row.Detail.String))
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
		}
		if row.Ext.Valid {
			if err := json.Unmarshal([]byte(row.Ext.String), &ev.Ext); err != nil {
				return nil, fmt.Errorf("event %d ext: %w", i, err)
			}
		}
		ev.Recorded, err = time.Parse(time.RFC3339Nano, row.Recorded)
		if err != nil {
			return nil, fmt.Errorf("event %d timestamp: %w", i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

type consequenceRow struct {
	ID                   string  `db:"id"`
	Kind                 string  `db:"kind"`
	Severity             string  `db:"severity"`
	Status               string  `db:"status"`
	CreatedTurn          int     `db:"created_turn"`
	TriggerTurn          int     `db:"trigger_turn"`
	ResolutionTurn       int     `db:"resolution_turn"`
	ResolveBy            int     `db:"resolve_by"`
	Location             string  `db:"location"`
	ActorID              string  `db:"actor_id"`
	Intensity            float64 `db:"intensity"`
	Description          string  `db:"description"`
	Urgent               int     `db:"urgent"`
	SurveillanceDuration int     `db:"surveillance_duration"`
	DetailLevel          float64 `db:"detail_level"`
}

func (db *DB) loadConsequences() ([]*consequence.Consequence, error) {
	var rows []consequenceRow
	err := db.conn.Select(&rows, `SELECT id, kind, severity, status,
		created_turn, trigger_turn, resolution_turn, resolve_by, location,
		actor_id, intensity, description, urgent, surveillance_duration,
		detail_level FROM consequences ORDER BY trigger_turn, id`)
	if err != nil {
		return nil, err
	}

	out := make([]*consequence.Consequence, 0, len(rows))
	for _, row := range rows {
		out = append(out, &consequence.Consequence{
			ID:                   row.ID,
			Kind:                 consequence.Kind(row.Kind),
			Severity:             consequence.ParseSeverity(row.Severity),
			Status:               consequence.ParseStatus(row.Status),
			CreatedTurn:          row.CreatedTurn,
			TriggerTurn:          row.TriggerTurn,
			ResolutionTurn:       row.ResolutionTurn,
			ResolveBy:            row.ResolveBy,
			Location:             row.Location,
			ActorID:              row.ActorID,
			Intensity:            row.Intensity,
			Description:          row.Description,
			Urgent:               row.Urgent != 0,
			SurveillanceDuration: row.SurveillanceDuration,
			DetailLevel:          row.DetailLevel,
		})
	}
	return out, nil
}

type locationRow struct {
	Location            string  `db:"location"`
	HeatLevel           float64 `db:"heat_level"`
	IncidentCount       int     `db:"incident_count"`
	LastIncidentTurn    int     `db:"last_incident_turn"`
	InvestigationActive int     `db:"investigation_active"`
	SurveillanceLevel   float64 `db:"surveillance_level"`
}

type actorRow struct {
	ActorID              string  `db:"actor_id"`
	SuspicionLevel       float64 `db:"suspicion_level"`
	Observations         string  `db:"observations_json"`
	WillReport           int     `db:"will_report"`
	FirstObservationTurn int     `db:"first_observation_turn"`
}

func (db *DB) loadHeat() ([]*heat.LocationRecord, []*heat.ActorRecord, error) {
	var locRows []locationRow
	err := db.conn.Select(&locRows, `SELECT location, heat_level,
		incident_count, last_incident_turn, investigation_active,
		surveillance_level FROM location_heat ORDER BY location`)
	if err != nil {
		return nil, nil, err
	}
	locs := make([]*heat.LocationRecord, 0, len(locRows))
	for _, row := range locRows {
		locs = append(locs, &heat.LocationRecord{
			Location:            row.Location,
			HeatLevel:           row.HeatLevel,
			IncidentCount:       row.IncidentCount,
			LastIncidentTurn:    row.LastIncidentTurn,
			InvestigationActive: row.InvestigationActive != 0,
			SurveillanceLevel:   row.SurveillanceLevel,
		})
	}

	var actRows []actorRow
	err = db.conn.Select(&actRows, `SELECT actor_id, suspicion_level,
		observations_json, will_report, first_observation_turn
		FROM actor_suspicion ORDER BY actor_id`)
	if err != nil {
		return nil, nil, err
	}
	actors := make([]*heat.ActorRecord, 0, len(actRows))
	for _, row := range actRows {
		rec := &heat.ActorRecord{
			ActorID:              row.ActorID,
			SuspicionLevel:       row.SuspicionLevel,
			WillReport:           row.WillReport != 0,
			FirstObservationTurn: row.FirstObservationTurn,
		}
		if err := json.Unmarshal([]byte(row.Observations), &rec.Observations); err != nil {
			return nil, nil, fmt.Errorf("actor %s observations: %w", row.ActorID, err)
		}
		actors = append(actors, rec)
	}
	return locs, actors, nil
}

type threadRow struct {
	ID           string  `db:"id"`
	Intensity    float64 `db:"intensity"`
	LastUpdate   int     `db:"last_update"`
	Status       string  `db:"status"`
	MainActors   string  `db:"main_actors_json"`
	Description  string  `db:"description"`
	CreatedTurn  int     `db:"created_turn"`
	EventIndexes string  `db:"event_indexes_json"`
}

func (db *DB) loadThreads() ([]engine.ThreadSnapshot, error) {
	var rows []threadRow
	err := db.conn.Select(&rows, `SELECT id, intensity, last_update, status,
		main_actors_json, description, created_turn, event_indexes_json
		FROM threads ORDER BY created_turn, id`)
	if err != nil {
		return nil, err
	}

	out := make([]engine.ThreadSnapshot, 0, len(rows))
	for _, row := range rows {
		t := &narrative.Thread{
			ID:          row.ID,
			Intensity:   row.Intensity,
			LastUpdate:  row.LastUpdate,
			Status:      narrative.ThreadStatus(row.Status),
			Description: row.Description,
			CreatedTurn: row.CreatedTurn,
		}
		if err := json.Unmarshal([]byte(row.MainActors), &t.MainActors); err != nil {
			return nil, fmt.Errorf("thread %s actors: %w", row.ID, err)
		}
		var indexes []int
		if err := json.Unmarshal([]byte(row.EventIndexes), &indexes); err != nil {
			return nil, fmt.Errorf("thread %s indexes: %w", row.ID, err)
		}
		out = append(out, engine.ThreadSnapshot{Thread: t, EventIndexes: indexes})
	}
	return out, nil
}

func nullableText(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
