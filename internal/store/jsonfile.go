package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/task"
)

const (
	tasksFile    = "tasks.json"
	settingsFile = "settings.json"
)

// JSONFile is the simple fallback provider: two JSON documents in a data
// directory, written atomically. It doubles as the backend for users who
// want the data file editable by external tools.
type JSONFile struct {
	dir string

	mu      sync.Mutex
	lastSum map[string]string // filename -> checksum of our last write
}

// NewJSONFile creates a provider rooted at dir, creating it if needed.
func NewJSONFile(dir string) (*JSONFile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store: resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	return &JSONFile{dir: abs, lastSum: make(map[string]string)}, nil
}

// Dir returns the absolute data directory, for the file watcher.
func (f *JSONFile) Dir() string { return f.dir }

// Close is a no-op; the provider holds no open handles between calls.
func (f *JSONFile) Close() error { return nil }

// GetTasks reads the collection file. Missing or corrupt content yields an
// empty collection.
func (f *JSONFile) GetTasks(_ context.Context) ([]task.Task, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, tasksFile))
	if err != nil {
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

// SetTasks atomically replaces the collection file.
func (f *JSONFile) SetTasks(_ context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	raw, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal tasks: %w", err)
	}
	return f.writeFile(tasksFile, raw)
}

// GetSettings reads the settings file, falling back to defaults.
func (f *JSONFile) GetSettings(_ context.Context) (task.Settings, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, settingsFile))
	if err != nil {
		return task.DefaultSettings(), nil
	}
	var s task.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return task.DefaultSettings(), nil
	}
	s.Normalize()
	return s, nil
}

// SetSettings atomically replaces the settings file.
func (f *JSONFile) SetSettings(_ context.Context, s task.Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal settings: %w", err)
	}
	return f.writeFile(settingsFile, raw)
}

// OwnWrite reports whether the current content of name matches the last
// write made through this provider. The file watcher uses it to skip
// reloads triggered by our own persistence.
func (f *JSONFile) OwnWrite(name string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSum[name] == checksum.Sum(data)
}

// writeFile writes atomically: tmp file → fsync → rename.
func (f *JSONFile) writeFile(name string, content []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".dagaz-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(f.dir, name)); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true

	f.mu.Lock()
	f.lastSum[name] = checksum.Sum(content)
	f.mu.Unlock()
	return nil
}
