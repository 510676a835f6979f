package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ExternalEditTriggersReload(t *testing.T) {
	dir := t.TempDir()
	jf, err := NewJSONFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go func() {
		_ = Watch(ctx, jf, logger, func() { reloads.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(`[{"id":"ext","text":"edited"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return reloads.Load() >= 1
	}, "external edit did not trigger reload")
}

func TestWatch_IgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	jf, err := NewJSONFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go func() {
		_ = Watch(ctx, jf, logger, func() { reloads.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	if err := jf.SetTasks(ctx, nil); err != nil {
		t.Fatal(err)
	}

	// Allow the debounce to fire; no reload should follow.
	time.Sleep(500 * time.Millisecond)
	if n := reloads.Load(); n != 0 {
		t.Errorf("own write triggered %d reloads", n)
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	jf, err := NewJSONFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go func() {
		_ = Watch(ctx, jf, logger, func() { reloads.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if n := reloads.Load(); n != 0 {
		t.Errorf("unrelated file triggered %d reloads", n)
	}
}
