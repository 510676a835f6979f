package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called after an external edit to the tasks file has been
// detected, debounced.
type ReloadFunc func()

// Watch runs an fsnotify watcher on the JSON file store's data directory
// until ctx is cancelled. When the tasks file is rewritten by something
// other than this process (an editor, a sync tool), reload is invoked so
// the running instance can pick up the new collection.
//
// Writes are debounced for a short interval: editors tend to emit several
// events per save, and atomic renames arrive as Create.
func Watch(ctx context.Context, f *JSONFile, logger *slog.Logger, reload ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(f.Dir()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", f.Dir()))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	scheduleReload := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			data, readErr := os.ReadFile(filepath.Join(f.Dir(), tasksFile))
			if readErr != nil {
				logger.Warn("watcher: read failed", slog.String("error", readErr.Error()))
				continue
			}
			if f.OwnWrite(tasksFile, data) {
				continue
			}
			logger.Info("watcher: external edit detected", slog.String("file", tasksFile))
			reload()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != tasksFile {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
