// Package journal is the persistent audit trail: every bus event is appended
// as a row. Nothing is ever read back into the simulation; the table only
// feeds the dashboard activity feed and offline inspection.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"warebot/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	driver string
}

// Entry is one journal row.
type Entry struct {
	ID      int64           `json:"id"`
	At      time.Time       `json:"at"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Open connects to the configured backend and ensures the schema exists.
func Open(cfg *config.JournalConfig) (*DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg.SQLite.Path)
	case "postgres":
		return openPostgres(&cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported journal driver: %s", cfg.Driver)
	}
}

func openSQLite(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := &DB{DB: sqlDB, driver: "sqlite"}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

func openPostgres(cfg *config.PostgresConfig) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode)
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db := &DB{DB: sqlDB, driver: "postgres"}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return db, nil
}

func (db *DB) Driver() string { return db.driver }

func (db *DB) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		type TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}'
	)`
	if db.driver == "postgres" {
		schema = `CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			at TEXT NOT NULL,
			type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}'
		)`
	}
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_events_type ON events(type)`)
	return err
}

// Q rewrites ? placeholders for PostgreSQL, passes through for SQLite.
func (db *DB) Q(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Append inserts one event row. The payload is stored as JSON.
func (db *DB) Append(eventType string, at time.Time, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = db.Exec(db.Q(`INSERT INTO events (at, type, payload) VALUES (?, ?, ?)`),
		at.UTC().Format(time.RFC3339Nano), eventType, string(data))
	return err
}

// Recent returns the latest events, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(db.Q(`SELECT id, at, type, payload FROM events ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at, payload string
		if err := rows.Scan(&e.ID, &at, &e.Type, &payload); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByType returns event counts grouped by type, for diagnostics.
func (db *DB) CountByType() (map[string]int, error) {
	rows, err := db.Query(`SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}
