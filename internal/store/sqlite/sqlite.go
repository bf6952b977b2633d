// Package sqlite stores conversations in a SQLite table keyed by
// conversation id.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gptyar/telegram-relay/internal/model"
	"github.com/gptyar/telegram-relay/internal/store"
)

// Compile-time interface check.
var _ store.Backend = (*Store)(nil)

func init() {
	store.RegisterBackend("sqlite", func(_ context.Context, opts store.Options) (store.Backend, error) {
		return Open(opts.Path)
	})
}

// Store implements store.Backend backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath and initialises the
// conversations table.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite db: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	messages   TEXT NOT NULL DEFAULT '[]',
	updated_at TEXT NOT NULL
);
`
	_, err := db.Exec(ddl)
	return err
}

func (s *Store) Get(ctx context.Context, id model.ConversationID) ([]model.Message, error) {
	const q = `SELECT messages FROM conversations WHERE id = ?`

	var raw string
	err := s.db.QueryRowContext(ctx, q, string(id)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation %s: %w", id, err)
	}
	return store.Decode([]byte(raw))
}

func (s *Store) Put(ctx context.Context, id model.ConversationID, messages []model.Message) error {
	const q = `INSERT INTO conversations (id, messages, updated_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET messages = excluded.messages, updated_at = excluded.updated_at`

	raw, err := store.Encode(messages)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, q, string(id), string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing conversation %s: %w", id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id model.ConversationID) error {
	const q = `DELETE FROM conversations WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, q, string(id)); err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
