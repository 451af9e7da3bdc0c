package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DefaultSlot is the slot name under which the pending-operation queue
// is persisted.
const DefaultSlot = "pending"

// Store persists a single named operation queue in SQLite.
// Uses WAL mode for concurrent read access.
type Store struct {
	db   *sql.DB
	slot string
	log  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSlot overrides the slot name the store reads and writes.
// Used by tests to isolate queues within one database.
func WithSlot(name string) StoreOption {
	return func(s *Store) {
		s.slot = name
	}
}

// WithLogger sets the logger used for non-fatal load diagnostics.
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...StoreOption) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, slot: DefaultSlot, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the persisted queue for the store's slot.
//
// A missing slot yields an empty queue. Content that fails to parse also
// yields an empty queue: the data is already lost and startup must not be
// blocked on it, so the failure is logged at warn level and swallowed.
// Only real database errors are returned.
func (s *Store) Load(ctx context.Context) ([]Operation, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT ops FROM queue_slots WHERE name = ?`, s.slot,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load queue slot %q: %w", s.slot, err)
	}

	var ops []Operation
	if err := json.Unmarshal([]byte(raw), &ops); err != nil {
		s.log.Warn("queue slot content unparseable, starting with empty queue",
			"slot", s.slot, "error", err)
		return nil, nil
	}
	return ops, nil
}

// Save overwrites the persisted queue for the store's slot.
//
// The write is a single UPSERT, so callers never observe a partially
// written queue. A failure leaves the previous slot content intact; the
// in-memory queue remains the source of truth until the next successful
// save.
func (s *Store) Save(ctx context.Context, ops []Operation) error {
	if ops == nil {
		ops = []Operation{}
	}
	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO queue_slots (name, ops, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			ops        = excluded.ops,
			updated_at = excluded.updated_at
	`, s.slot, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save queue slot %q: %w", s.slot, err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
