package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists saved scenarios to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saved_scenarios (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			name       TEXT NOT NULL,
			payload    BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saved_created ON saved_scenarios(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save stores a scenario snapshot and returns its id. A blank ID is assigned
// a fresh UUID; an existing ID is overwritten (re-saving a named scenario).
func (s *SQLiteStore) Save(ctx context.Context, sc SavedScenario) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_scenarios (id, kind, name, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind=excluded.kind, name=excluded.name,
		   payload=excluded.payload, created_at=excluded.created_at`,
		sc.ID, sc.Kind, sc.Name, sc.Payload, sc.CreatedAt.Unix())
	if err != nil {
		return "", fmt.Errorf("save scenario: %w", err)
	}
	return sc.ID, nil
}

// Get returns the saved scenario with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (SavedScenario, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, name, payload, created_at FROM saved_scenarios WHERE id = ?`, id)

	var sc SavedScenario
	var createdAt int64
	if err := row.Scan(&sc.ID, &sc.Kind, &sc.Name, &sc.Payload, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedScenario{}, ErrNotFound
		}
		return SavedScenario{}, fmt.Errorf("get scenario: %w", err)
	}
	sc.CreatedAt = time.Unix(createdAt, 0)
	return sc, nil
}

// List returns all saved scenarios, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]SavedScenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, name, payload, created_at FROM saved_scenarios ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []SavedScenario
	for rows.Next() {
		var sc SavedScenario
		var createdAt int64
		if err := rows.Scan(&sc.ID, &sc.Kind, &sc.Name, &sc.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		sc.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Delete removes the saved scenario with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
