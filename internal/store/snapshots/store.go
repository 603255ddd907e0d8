package snapshots

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/playoff-odds/internal/league"
	"github.com/charleschow/playoff-odds/internal/telemetry"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("snapshot not found")

// Meta describes one stored snapshot without its payload.
type Meta struct {
	LeagueID   string
	Year       int
	Week       int
	Franchises int
	SavedAt    time.Time
	Bytes      int
}

// Store keeps league input snapshots keyed by (league, year, week). A
// later save for the same key replaces the earlier one.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS league_snapshots (
			league_id   TEXT    NOT NULL,
			year        INTEGER NOT NULL,
			week        INTEGER NOT NULL,
			franchises  INTEGER NOT NULL,
			saved_at    TEXT    NOT NULL,
			payload     TEXT    NOT NULL,
			PRIMARY KEY (league_id, year, week)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ls_saved_at ON league_snapshots(saved_at)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	telemetry.Infof("snapshots: opened %s", path)
	return &Store{db: db}, nil
}

func (s *Store) Save(l *league.League) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal league: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`INSERT INTO league_snapshots (league_id, year, week, franchises, saved_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(league_id, year, week) DO UPDATE SET
			franchises = excluded.franchises,
			saved_at   = excluded.saved_at,
			payload    = excluded.payload`,
		l.ID, l.Year, l.Week, len(l.Standings), time.Now().UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	telemetry.Debugf("snapshots: saved %s/%d week %d (%d bytes)", l.ID, l.Year, l.Week, len(payload))
	return nil
}

// Latest returns the highest-week snapshot for a league and year.
func (s *Store) Latest(leagueID string, year int) (*league.League, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM league_snapshots
		WHERE league_id = ? AND year = ? ORDER BY week DESC LIMIT 1`, leagueID, year).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%d: %w", leagueID, year, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var l league.League
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &l, nil
}

// List returns snapshot metadata, newest save first. limit <= 0 means all.
func (s *Store) List(limit int) ([]Meta, error) {
	if limit <= 0 {
		limit = -1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT league_id, year, week, franchises, saved_at, length(payload)
		FROM league_snapshots ORDER BY saved_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		var savedAt string
		if err := rows.Scan(&m.LeagueID, &m.Year, &m.Week, &m.Franchises, &savedAt, &m.Bytes); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		m.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
