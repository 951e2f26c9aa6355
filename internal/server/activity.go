package server

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"cid/internal/protocol"
)

// ActivityStore persists track_activity events in a per-project SQLite
// database. Tracking is advisory: every method failure is the caller's
// to ignore.
type ActivityStore struct {
	conn *sql.DB
}

// OpenActivityStore opens or creates the activity database.
func OpenActivityStore(dbPath string) (*ActivityStore, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open activity database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS activity (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	session_id TEXT,
	layers INTEGER NOT NULL DEFAULT 0,
	count INTEGER NOT NULL DEFAULT 1,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_created ON activity(created_at);
`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ActivityStore{conn: conn}, nil
}

// Record inserts one tracking event.
func (s *ActivityStore) Record(event protocol.ActivityEvent) error {
	_, err := s.conn.Exec(
		"INSERT INTO activity (kind, session_id, layers, count, created_at) VALUES (?, ?, ?, ?, ?)",
		event.Kind, event.SessionID, event.Layers, event.Count, time.Now().Unix(),
	)
	return err
}

// Count returns the total number of recorded events.
func (s *ActivityStore) Count() (int64, error) {
	var n int64
	err := s.conn.QueryRow("SELECT COUNT(*) FROM activity").Scan(&n)
	return n, err
}

// Prune deletes events older than the retention window.
func (s *ActivityStore) Prune(retention time.Duration) error {
	cutoff := time.Now().Add(-retention).Unix()
	_, err := s.conn.Exec("DELETE FROM activity WHERE created_at < ?", cutoff)
	return err
}

// Close closes the database.
func (s *ActivityStore) Close() error {
	return s.conn.Close()
}
