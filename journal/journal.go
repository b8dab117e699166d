// Package journal records what the agent did in a SQLite database.
package journal

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Sokpao/Agent-TAC/types"
)

type Journal struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

// Open opens or creates the journal at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	conn.SetMaxOpenConns(1)

	j := &Journal{conn: conn, logger: logger}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		game_id INTEGER NOT NULL,
		auction INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		detail TEXT NOT NULL,
		at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS games (
		game_id INTEGER PRIMARY KEY,
		utility REAL NOT NULL,
		cost REAL NOT NULL,
		score REAL NOT NULL,
		clients INTEGER NOT NULL,
		satisfied INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_game ON events(game_id);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// Observe records an agent event. Failures are logged, never returned: the
// journal must not get in the way of bidding.
func (j *Journal) Observe(event types.AgentEvent) {
	if err := j.Record(event); err != nil {
		j.logger.Warn("failed to journal event", "kind", event.Kind, "error", err)
	}
}

func (j *Journal) Record(event types.AgentEvent) error {
	_, err := j.conn.NamedExec(`INSERT INTO events (kind, game_id, auction, quantity, price, detail, at)
		VALUES (:kind, :game_id, :auction, :quantity, :price, :detail, :at)`, event)
	return err
}

// RecordGame stores a game's outcome, replacing any earlier record of it.
func (j *Journal) RecordGame(summary types.GameSummary) error {
	_, err := j.conn.NamedExec(`INSERT OR REPLACE INTO games (game_id, utility, cost, score, clients, satisfied)
		VALUES (:game_id, :utility, :cost, :score, :clients, :satisfied)`, summary)
	return err
}

func (j *Journal) Events(gameID int) ([]types.AgentEvent, error) {
	events := []types.AgentEvent{}
	err := j.conn.Select(&events, `SELECT kind, game_id, auction, quantity, price, detail, at
		FROM events WHERE game_id = ? ORDER BY id`, gameID)
	return events, err
}

// Counts tallies a game's events by kind.
func (j *Journal) Counts(gameID int) (map[string]int, error) {
	rows := []struct {
		Kind  string `db:"kind"`
		Count int    `db:"n"`
	}{}
	err := j.conn.Select(&rows, `SELECT kind, COUNT(*) AS n FROM events WHERE game_id = ? GROUP BY kind`, gameID)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	return counts, nil
}

func (j *Journal) Games() ([]types.GameSummary, error) {
	games := []types.GameSummary{}
	err := j.conn.Select(&games, `SELECT game_id, utility, cost, score, clients, satisfied FROM games ORDER BY game_id`)
	return games, err
}
