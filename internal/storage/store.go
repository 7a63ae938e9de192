// Package storage is the SQLite persistence layer behind the hub's
// collaborator interfaces and the REST history endpoints.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width UTC so created_at comparisons stay
// lexicographic in SQL.
const timeLayout = "2006-01-02 15:04:05.000"

// Store wraps the database handle. The mutex serializes access because
// the driver is used from every connection task plus the HTTP handlers.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(dataSourceName string) (*Store, error) {
	if dir := filepath.Dir(dataSourceName); dir != "" && dataSourceName != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err = migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("module", "storage").Str("path", dataSourceName).Msg("database ready")
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_online INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_by INTEGER NOT NULL,
			FOREIGN KEY (created_by) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id INTEGER NOT NULL,
			recipient_id INTEGER,
			room_id INTEGER,
			content TEXT,
			file_url TEXT,
			file_type TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (sender_id) REFERENCES users(id)
		);`,
		// room_id/contact_id use 0 for "none" so the UNIQUE constraint
		// can dedupe; NULLs never collide in SQLite unique indexes.
		`CREATE TABLE IF NOT EXISTS user_chat_clears (
			user_id INTEGER NOT NULL,
			room_id INTEGER NOT NULL DEFAULT 0,
			contact_id INTEGER NOT NULL DEFAULT 0,
			cleared_at TEXT NOT NULL,
			UNIQUE (user_id, room_id, contact_id)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
