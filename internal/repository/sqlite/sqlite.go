// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY SQLITE?
// SQLite is an embedded database: one file, no server. That suits both users
// of this package:
//   - the CLI keeps its bearer token in a small state file between runs
//   - the local API keeps users and cards for development and tests
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C compiler is
// needed and cross-compilation keeps working.
//
// The pool is pinned to a single connection. SQLite allows one writer at a
// time anyway, PRAGMAs are per connection, and ":memory:" databases exist per
// connection, so one connection keeps all three consistent.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The typed stores returned by Users,
// Cards and KV share it.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/mesto.db"        → file-based database (persistent)
//   - "/home/me/.mesto/state.db"
//   - ":memory:"             → in-memory database, lost on Close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	// Ping forces a real connection so a bad path fails here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Likes cascade on card delete.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user store.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Cards returns the card store.
func (db *DB) Cards() *CardDB {
	return &CardDB{conn: db.conn}
}

// KV returns the key-value store used for client state.
func (db *DB) KV() *KVDB {
	return &KVDB{conn: db.conn}
}

// migrate creates every table. CREATE TABLE IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			about         TEXT NOT NULL,
			avatar        TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cards (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			link       TEXT NOT NULL,
			owner_id   TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_cards_created_at ON cards(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating cards table: %w", err)
	}

	// (card_id, user_id) is the primary key, which is what makes likes a set.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS card_likes (
			card_id  TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			user_id  TEXT NOT NULL REFERENCES users(id),
			liked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (card_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating card_likes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating kv table: %w", err)
	}

	return nil
}
