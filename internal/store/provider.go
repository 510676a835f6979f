// Package store implements the persistence providers for the task
// collection and the settings record.
//
// Persistence granularity is "whole document replace": every write stores
// the full collection, mirroring the in-memory state. Reads recover from
// missing or corrupt data by returning an empty collection or default
// settings; corruption is never surfaced to the caller.
package store

import (
	"context"

	"github.com/starford/dagaz/internal/task"
)

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendJSONFile = "jsonfile"
)

// Provider is the durable mirror of the in-memory state.
type Provider interface {
	// GetTasks returns the stored collection, or an empty slice when the
	// store is empty or unreadable.
	GetTasks(ctx context.Context) ([]task.Task, error)
	// SetTasks replaces the stored collection.
	SetTasks(ctx context.Context, tasks []task.Task) error
	// GetSettings returns the stored settings, or defaults when absent.
	GetSettings(ctx context.Context) (task.Settings, error)
	// SetSettings replaces the stored settings.
	SetSettings(ctx context.Context, s task.Settings) error
	Close() error
}
