// Package journal records prompt/response exchanges in SQLite.
//
// The journal is write-mostly: it is never read back into prompts, so chat
// turns stay independent.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no entry has the given ID.
var ErrNotFound = errors.New("journal entry not found")

// Entry is a single recorded exchange.
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"`
	Model      string    `json:"model"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	Kind       string    `json:"kind"` // "ok", "transport" or "parse"
	Error      string    `json:"error,omitempty"`
	OutputFile string    `json:"output_file,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store manages journal persistence in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) a SQLite journal at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS exchanges (
			id          TEXT PRIMARY KEY,
			session_id  TEXT NOT NULL DEFAULT '',
			mode        TEXT NOT NULL,
			model       TEXT NOT NULL DEFAULT '',
			prompt      TEXT NOT NULL,
			response    TEXT NOT NULL,
			kind        TEXT NOT NULL,
			error       TEXT NOT NULL DEFAULT '',
			output_file TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_exchanges_created_at
			ON exchanges(created_at);

		CREATE INDEX IF NOT EXISTS idx_exchanges_session_id
			ON exchanges(session_id);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts an entry, assigning an ID and timestamp when they are unset.
func (s *Store) Record(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.db.Exec(
		`INSERT INTO exchanges (id, session_id, mode, model, prompt, response, kind, error, output_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Mode, e.Model, e.Prompt, e.Response, e.Kind, e.Error, e.OutputFile, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording exchange: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (s *Store) Get(id string) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT id, session_id, mode, model, prompt, response, kind, error, output_file, created_at
		 FROM exchanges WHERE id = ?`, id,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, session_id, mode, model, prompt, response, kind, error, output_file, created_at
		 FROM exchanges ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Session returns all entries of one shell session in the order they were made.
func (s *Store) Session(sessionID string) ([]*Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, mode, model, prompt, response, kind, error, output_file, created_at
		 FROM exchanges WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable) (*Entry, error) {
	e := &Entry{}
	err := row.Scan(
		&e.ID, &e.SessionID, &e.Mode, &e.Model, &e.Prompt, &e.Response,
		&e.Kind, &e.Error, &e.OutputFile, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}
