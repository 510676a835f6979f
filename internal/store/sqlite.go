package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/dagaz/internal/task"
)

const kvSchemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const (
	keyTasks    = "tasks"
	keySettings = "settings"
)

// SQLite is the durable provider: a single key-value table holding the
// tasks and settings JSON documents.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(kvSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// GetTasks returns the stored collection. A missing or unreadable value
// yields an empty collection.
func (s *SQLite) GetTasks(ctx context.Context) ([]task.Task, error) {
	raw, ok, err := s.get(ctx, keyTasks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []task.Task{}, nil
	}
	var tasks []task.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return []task.Task{}, nil
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// SetTasks replaces the stored collection.
func (s *SQLite) SetTasks(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("store: marshal tasks: %w", err)
	}
	return s.set(ctx, keyTasks, raw)
}

// GetSettings returns the stored settings, defaults when absent or corrupt.
func (s *SQLite) GetSettings(ctx context.Context) (task.Settings, error) {
	raw, ok, err := s.get(ctx, keySettings)
	if err != nil {
		return task.DefaultSettings(), err
	}
	if !ok {
		return task.DefaultSettings(), nil
	}
	var set task.Settings
	if err := json.Unmarshal(raw, &set); err != nil {
		return task.DefaultSettings(), nil
	}
	set.Normalize()
	return set, nil
}

// SetSettings replaces the stored settings record.
func (s *SQLite) SetSettings(ctx context.Context, set task.Settings) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("store: marshal settings: %w", err)
	}
	return s.set(ctx, keySettings, raw)
}

func (s *SQLite) get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLite) set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

// Verify both providers satisfy the interface at compile time.
var (
	_ Provider = (*SQLite)(nil)
	_ Provider = (*JSONFile)(nil)
)
