package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/task"
)

func openTestProviders(t *testing.T) map[string]Provider {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	jf, err := NewJSONFile(t.TempDir())
	if err != nil {
		t.Fatalf("open jsonfile: %v", err)
	}
	return map[string]Provider{"sqlite": sq, "jsonfile": jf}
}

func TestProvider_TasksRoundTrip(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2026, 3, 3, 17, 0, 0, 0, time.UTC)

	for name, p := range openTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := p.GetTasks(ctx)
			if err != nil {
				t.Fatalf("get on empty store: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("empty store = %v, want empty slice", got)
			}

			in := []task.Task{{
				ID:        "t1",
				Text:      "buy milk",
				Status:    task.StatusPending,
				CreatedAt: due.Add(-24 * time.Hour),
				Due:       &due,
				Tags:      []string{"errand"},
				Subtasks:  []task.Subtask{{Text: "check fridge", Done: true}},
			}}
			if err := p.SetTasks(ctx, in); err != nil {
				t.Fatalf("set: %v", err)
			}

			got, err = p.GetTasks(ctx)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d tasks, want 1", len(got))
			}
			tk := got[0]
			if tk.ID != "t1" || tk.Text != "buy milk" {
				t.Errorf("task = %+v", tk)
			}
			if tk.Due == nil || !tk.Due.Equal(due) {
				t.Errorf("due = %v, want %v", tk.Due, due)
			}
			if len(tk.Subtasks) != 1 || !tk.Subtasks[0].Done {
				t.Errorf("subtasks = %v", tk.Subtasks)
			}
		})
	}
}

func TestProvider_SettingsRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, p := range openTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := p.GetSettings(ctx)
			if err != nil {
				t.Fatalf("get on empty store: %v", err)
			}
			if got.Theme != "dark" || got.DailyGoal != 5 {
				t.Errorf("defaults = %+v", got)
			}

			got.Theme = "light"
			got.DailyGoal = 8
			got.Streak = task.Streak{Count: 3, Date: "2026-03-03"}
			if err := p.SetSettings(ctx, got); err != nil {
				t.Fatalf("set: %v", err)
			}

			again, err := p.GetSettings(ctx)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if again.Theme != "light" || again.DailyGoal != 8 || again.Streak.Count != 3 {
				t.Errorf("settings = %+v", again)
			}
		})
	}
}

func TestJSONFile_CorruptFileYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	jf, err := NewJSONFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := jf.GetTasks(context.Background())
	if err != nil {
		t.Fatalf("corrupt file should not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d tasks from corrupt file", len(got))
	}
}

func TestSQLite_CorruptValueYieldsEmpty(t *testing.T) {
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sq.Close()

	ctx := context.Background()
	if err := sq.set(ctx, keyTasks, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	got, err := sq.GetTasks(ctx)
	if err != nil {
		t.Fatalf("corrupt value should not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d tasks from corrupt value", len(got))
	}
}

func TestJSONFile_OwnWrite(t *testing.T) {
	dir := t.TempDir()
	jf, err := NewJSONFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := jf.SetTasks(ctx, []task.Task{{ID: "a", Text: "x"}}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !jf.OwnWrite("tasks.json", data) {
		t.Error("own write not recognized")
	}
	if jf.OwnWrite("tasks.json", []byte(`[{"id":"external"}]`)) {
		t.Error("external content mistaken for own write")
	}
}

func TestJSONFile_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	jf, err := NewJSONFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := jf.SetTasks(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "tasks.json" {
			t.Errorf("unexpected file %q in data dir", e.Name())
		}
	}
}
