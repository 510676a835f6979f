package task

import (
	"testing"
	"time"
)

func TestToggleComplete_Invariant(t *testing.T) {
	tk := New(Draft{Text: "x"}, 0, time.Now())

	tk.ToggleComplete()
	if !tk.Completed || tk.Status != StatusCompleted {
		t.Errorf("after complete: completed=%v status=%q", tk.Completed, tk.Status)
	}

	tk.ToggleComplete()
	if tk.Completed || tk.Status != StatusPending {
		t.Errorf("after uncomplete: completed=%v status=%q", tk.Completed, tk.Status)
	}
}

func TestToggleComplete_FromDoingReturnsToPending(t *testing.T) {
	tk := New(Draft{Text: "x"}, 0, time.Now())
	tk.ToggleDoing()
	tk.ToggleComplete()
	tk.ToggleComplete()
	if tk.Status != StatusPending {
		t.Errorf("status = %q, want %q", tk.Status, StatusPending)
	}
}

func TestToggleDoing(t *testing.T) {
	tk := New(Draft{Text: "x"}, 0, time.Now())

	tk.ToggleDoing()
	if tk.Status != StatusDoing {
		t.Fatalf("status = %q, want doing", tk.Status)
	}
	tk.ToggleDoing()
	if tk.Status != StatusPending {
		t.Fatalf("status = %q, want pending", tk.Status)
	}
}

func TestToggleDoing_NoopWhenCompleted(t *testing.T) {
	tk := New(Draft{Text: "x"}, 0, time.Now())
	tk.ToggleComplete()
	tk.ToggleDoing()
	if tk.Status != StatusCompleted || !tk.Completed {
		t.Errorf("completed task changed by ToggleDoing: status=%q completed=%v", tk.Status, tk.Completed)
	}
}

func TestToggleArchive_LeavesStatusAlone(t *testing.T) {
	tk := New(Draft{Text: "x"}, 0, time.Now())
	tk.ToggleDoing()
	tk.ToggleArchive()
	if !tk.Archived {
		t.Fatal("not archived")
	}
	if tk.Status != StatusDoing {
		t.Errorf("status = %q, want doing", tk.Status)
	}
}

func TestSnooze(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	remind := due.Add(-15 * time.Minute)
	tk := New(Draft{Text: "x", Due: &due, RemindAt: &remind}, 0, time.Now())
	tk.Notified = true

	if !tk.Snooze(30 * time.Minute) {
		t.Fatal("snooze refused with a due date set")
	}
	if got, want := *tk.Due, due.Add(30*time.Minute); !got.Equal(want) {
		t.Errorf("due = %v, want %v", got, want)
	}
	if got, want := *tk.RemindAt, remind.Add(30*time.Minute); !got.Equal(want) {
		t.Errorf("remindAt = %v, want %v", got, want)
	}
	if tk.Notified {
		t.Error("notified not re-armed")
	}
}

func TestSnooze_NoDueDate(t *testing.T) {
	tk := New(Draft{Text: "x"}, 0, time.Now())
	if tk.Snooze(30 * time.Minute) {
		t.Error("snooze without due date should be a no-op")
	}
}

func TestReminderTime_Fallback(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	remind := due.Add(-15 * time.Minute)

	tk := Task{Due: &due, RemindAt: &remind}
	if got := tk.ReminderTime(); !got.Equal(remind) {
		t.Errorf("with remindAt: got %v, want %v", got, remind)
	}

	tk = Task{Due: &due}
	if got := tk.ReminderTime(); !got.Equal(due) {
		t.Errorf("due fallback: got %v, want %v", got, due)
	}

	tk = Task{}
	if tk.ReminderTime() != nil {
		t.Error("expected nil for task without due")
	}
}

func TestRollover_Weekly(t *testing.T) {
	due := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	tk := Task{Completed: true, Status: StatusCompleted, Repeat: RepeatWeekly, Due: &due, Notified: true}

	if !tk.Rollover() {
		t.Fatal("rollover refused")
	}
	if got, want := *tk.Due, due.AddDate(0, 0, 7); !got.Equal(want) {
		t.Errorf("due = %v, want %v", got, want)
	}
	if tk.Completed || tk.Status != StatusPending || tk.Notified {
		t.Errorf("not reset: completed=%v status=%q notified=%v", tk.Completed, tk.Status, tk.Notified)
	}
}

func TestRollover_Ineligible(t *testing.T) {
	due := time.Now()
	cases := []struct {
		name string
		tk   Task
	}{
		{"not completed", Task{Completed: false, Repeat: RepeatDaily, Due: &due}},
		{"no repeat", Task{Completed: true, Repeat: RepeatNone, Due: &due}},
		{"no due", Task{Completed: true, Repeat: RepeatDaily}},
	}
	for _, c := range cases {
		if c.tk.Rollover() {
			t.Errorf("%s: rollover should refuse", c.name)
		}
	}
}

func TestRollover_MonthlyNormalizes(t *testing.T) {
	due := time.Date(2026, 1, 31, 17, 0, 0, 0, time.UTC)
	tk := Task{Completed: true, Repeat: RepeatMonthly, Due: &due}
	tk.Rollover()
	// AddDate rolls Jan 31 + 1 month into early March.
	if tk.Due.Month() != time.March {
		t.Errorf("month = %v, want March", tk.Due.Month())
	}
}

func TestMigrate_BackfillsMissingFields(t *testing.T) {
	now := time.Now()
	tasks := []Task{
		{Text: "a", Completed: true},
		{Text: "b"},
		{Text: "c"},
	}

	if !Migrate(tasks, now) {
		t.Fatal("expected changes on first pass")
	}
	for i, tk := range tasks {
		if tk.ID == "" {
			t.Errorf("task %d: id not backfilled", i)
		}
		if tk.CreatedAt.IsZero() {
			t.Errorf("task %d: createdAt not backfilled", i)
		}
		if tk.Order != i {
			t.Errorf("task %d: order = %d, want %d", i, tk.Order, i)
		}
		if tk.Tags == nil || tk.Subtasks == nil {
			t.Errorf("task %d: nil slices survived migration", i)
		}
	}
	if tasks[0].Status != StatusCompleted {
		t.Errorf("completed task status = %q, want completed", tasks[0].Status)
	}
	if tasks[1].Status != StatusPending {
		t.Errorf("status = %q, want pending", tasks[1].Status)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	now := time.Now()
	tasks := []Task{{Text: "a"}, {Text: "b", Completed: true}}

	Migrate(tasks, now)
	before := make([]Task, len(tasks))
	copy(before, tasks)

	if Migrate(tasks, now) {
		t.Error("second pass reported changes")
	}
	for i := range tasks {
		if tasks[i].ID != before[i].ID || tasks[i].Order != before[i].Order ||
			tasks[i].Status != before[i].Status || !tasks[i].CreatedAt.Equal(before[i].CreatedAt) {
			t.Errorf("task %d mutated on second pass", i)
		}
	}
}

func TestMigrate_KeepsExistingOrders(t *testing.T) {
	now := time.Now()
	tasks := []Task{
		{ID: "1", CreatedAt: now, Status: StatusPending, Order: 2, Tags: []string{}, Subtasks: []Subtask{}},
		{ID: "2", CreatedAt: now, Status: StatusPending, Order: 0, Tags: []string{}, Subtasks: []Subtask{}},
	}
	if Migrate(tasks, now) {
		t.Error("fully populated collection reported changes")
	}
	if tasks[0].Order != 2 {
		t.Errorf("existing order overwritten: %d", tasks[0].Order)
	}
}

func TestNew_Defaults(t *testing.T) {
	now := time.Now()
	tk := New(Draft{Text: "x", Priority: PriorityHigh}, 7, now)

	if tk.ID == "" {
		t.Error("empty id")
	}
	if tk.Status != StatusPending || tk.Completed {
		t.Errorf("status=%q completed=%v", tk.Status, tk.Completed)
	}
	if tk.Order != 7 {
		t.Errorf("order = %d, want 7", tk.Order)
	}
	if !tk.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", tk.CreatedAt, now)
	}
	if tk.Tags == nil || tk.Subtasks == nil {
		t.Error("nil slices on fresh task")
	}
	if tk.Repeat != RepeatNone {
		t.Errorf("repeat = %q, want none", tk.Repeat)
	}
}
