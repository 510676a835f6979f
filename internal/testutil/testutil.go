// Package testutil provides shared test helpers for setting up stores and services.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/dagaz/internal/store"
	"github.com/starford/dagaz/internal/taskservice"
)

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dagaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestJSONStore creates a temporary JSON file store.
func TestJSONStore(t *testing.T) *store.JSONFile {
	t.Helper()
	js, err := store.NewJSONFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return js
}

// TestService creates a loaded service backed by a temporary SQLite store.
func TestService(t *testing.T) *taskservice.Service {
	t.Helper()
	svc := taskservice.New(TestStore(t), slog.New(slog.NewTextHandler(os.Stderr, nil)), nil, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc
}
