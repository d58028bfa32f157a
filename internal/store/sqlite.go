package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

// SQLiteStore implements weather.Store on SQLite (pure Go driver modernc.org/sqlite).
// Snapshots are stored as JSON, indexed by location key and fetch time.
type SQLiteStore struct {
	db         *sql.DB
	maxHistory int
	maxAge     time.Duration
	now        func() time.Time
}

var _ weather.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
// Retention limits behave as in NewMemoryStore.
func NewSQLiteStore(path string, maxHistory int, maxAge time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("WARN: could not set WAL mode:", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
        id TEXT PRIMARY KEY,
        location_key TEXT NOT NULL,
        fetched_at INTEGER NOT NULL,
        payload TEXT NOT NULL
    );`,
		`CREATE INDEX IF NOT EXISTS snapshots_location_time ON snapshots(location_key, fetched_at);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &SQLiteStore{db: db, maxHistory: maxHistory, maxAge: maxAge, now: time.Now}, nil
}

// SaveSnapshot inserts the snapshot and prunes the location's history.
func (s *SQLiteStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	key := loc.Key()
	if _, err := tx.Exec(`INSERT OR REPLACE INTO snapshots(id, location_key, fetched_at, payload) VALUES(?,?,?,?)`,
		snapshot.ID, key, snapshot.FetchedAt.UnixNano(), string(payload)); err != nil {
		return err
	}

	if s.maxHistory > 0 {
		if _, err := tx.Exec(`DELETE FROM snapshots WHERE location_key = ? AND id NOT IN (
            SELECT id FROM snapshots WHERE location_key = ? ORDER BY fetched_at DESC LIMIT ?)`,
			key, key, s.maxHistory); err != nil {
			return err
		}
	}

	if s.maxAge > 0 {
		// The newest snapshot is always kept.
		cutoff := s.now().Add(-s.maxAge).UnixNano()
		if _, err := tx.Exec(`DELETE FROM snapshots WHERE location_key = ? AND fetched_at < ? AND id NOT IN (
            SELECT id FROM snapshots WHERE location_key = ? ORDER BY fetched_at DESC LIMIT 1)`,
			key, cutoff, key); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetLatest returns the most recently fetched snapshot for a location.
func (s *SQLiteStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	row := s.db.QueryRow(`SELECT payload FROM snapshots WHERE location_key = ? ORDER BY fetched_at DESC LIMIT 1`, loc.Key())

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return weather.WeatherSnapshot{}, ErrNotFound
		}
		return weather.WeatherSnapshot{}, err
	}

	var snap weather.WeatherSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// GetRange returns the snapshots for a location fetched between from and to (inclusive), oldest first.
func (s *SQLiteStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	rows, err := s.db.Query(`SELECT payload FROM snapshots WHERE location_key = ? AND fetched_at BETWEEN ? AND ? ORDER BY fetched_at`,
		loc.Key(), from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weather.WeatherSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var snap weather.WeatherSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
