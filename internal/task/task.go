// Package task defines the domain types for Dagaz: the task entity, its
// lifecycle operations, and the persisted settings record.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses.
const (
	StatusPending   = "pending"
	StatusDoing     = "doing"
	StatusCompleted = "completed"
)

// Repeat cadences. Empty string means no recurrence.
const (
	RepeatNone    = ""
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

// Priority levels. Zero means unset.
const (
	PriorityNone   = 0
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Subtask is a checklist item inside a task. Subtasks have no identity
// beyond their position in the slice.
type Subtask struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Task is the central entity. The collection of tasks is owned by the
// running instance; the store is a durable mirror, never a second writer.
type Task struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Notes     string     `json:"notes"`
	Completed bool       `json:"completed"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	Due       *time.Time `json:"due"`
	RemindAt  *time.Time `json:"remindAt"`
	Priority  int        `json:"priority"`
	Tags      []string   `json:"tags"`
	Subtasks  []Subtask  `json:"subtasks"`
	Repeat    string     `json:"repeat"`
	Archived  bool       `json:"archived"`
	Order     int        `json:"order"`
	Notified  bool       `json:"notified"`
}

// Draft is the structured output of the quick-add parser, consumed by New.
type Draft struct {
	Text     string
	Notes    string
	Priority int
	Tags     []string
	Due      *time.Time
	RemindAt *time.Time
}

// New builds a fresh task from a draft. order should be the current
// collection length so new tasks append at the end of the manual ordering.
func New(d Draft, order int, now time.Time) Task {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return Task{
		ID:        NewID(),
		Text:      d.Text,
		Notes:     d.Notes,
		Completed: false,
		Status:    StatusPending,
		CreatedAt: now,
		Due:       d.Due,
		RemindAt:  d.RemindAt,
		Priority:  d.Priority,
		Tags:      tags,
		Subtasks:  []Subtask{},
		Repeat:    RepeatNone,
		Archived:  false,
		Order:     order,
		Notified:  false,
	}
}

// NewID returns a fresh opaque task identifier.
func NewID() string {
	return uuid.NewString()
}

// SyncStatus re-establishes the completed/status invariant from the
// Completed flag: completed ⇒ "completed", otherwise a completed status
// is demoted to "pending".
func (t *Task) SyncStatus() {
	if t.Completed {
		t.Status = StatusCompleted
	} else if t.Status == StatusCompleted {
		t.Status = StatusPending
	}
}

// ToggleComplete flips the completed flag and syncs status. A task leaving
// the completed state always returns to "pending", never "doing".
func (t *Task) ToggleComplete() {
	t.Completed = !t.Completed
	if t.Completed {
		t.Status = StatusCompleted
	} else {
		t.Status = StatusPending
	}
}

// ToggleDoing flips between "doing" and "pending". It is a no-op for
// completed tasks; the full edit operation may still force any status.
func (t *Task) ToggleDoing() {
	if t.Completed {
		return
	}
	if t.Status == StatusDoing {
		t.Status = StatusPending
	} else {
		t.Status = StatusDoing
	}
}

// ToggleArchive flips the archived overlay without touching status.
func (t *Task) ToggleArchive() {
	t.Archived = !t.Archived
}

// Snooze advances the due date (and reminder, when set) by offset and
// re-arms the notification. Tasks without a due date are left untouched.
func (t *Task) Snooze(offset time.Duration) bool {
	if t.Due == nil {
		return false
	}
	d := t.Due.Add(offset)
	t.Due = &d
	if t.RemindAt != nil {
		r := t.RemindAt.Add(offset)
		t.RemindAt = &r
	}
	t.Notified = false
	return true
}

// ReminderTime returns the instant a reminder should fire: remindAt when
// set, otherwise the due date, otherwise nil.
func (t *Task) ReminderTime() *time.Time {
	if t.RemindAt != nil {
		return t.RemindAt
	}
	return t.Due
}

// Rollover advances a completed repeating task to its next occurrence in
// place. Returns false when the task is not eligible (not completed, no
// repeat cadence, or no due date).
func (t *Task) Rollover() bool {
	if !t.Completed || t.Repeat == RepeatNone || t.Due == nil {
		return false
	}
	var next time.Time
	switch t.Repeat {
	case RepeatDaily:
		next = t.Due.AddDate(0, 0, 1)
	case RepeatWeekly:
		next = t.Due.AddDate(0, 0, 7)
	case RepeatMonthly:
		next = t.Due.AddDate(0, 1, 0)
	default:
		return false
	}
	t.Due = &next
	t.Completed = false
	t.Status = StatusPending
	t.Notified = false
	return true
}

// Migrate backfills fields that older stored records may lack: id, order
// (position index), createdAt, and status (derived from completed). It is
// idempotent and reports whether any record changed.
func Migrate(tasks []Task, now time.Time) bool {
	changed := false
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			t.ID = NewID()
			changed = true
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
			changed = true
		}
		if t.Status == "" {
			if t.Completed {
				t.Status = StatusCompleted
			} else {
				t.Status = StatusPending
			}
			changed = true
		}
		if t.Tags == nil {
			t.Tags = []string{}
			changed = true
		}
		if t.Subtasks == nil {
			t.Subtasks = []Subtask{}
			changed = true
		}
	}
	// Orders are backfilled only when the whole collection lacks them;
	// a partially ordered collection keeps its existing values.
	if ordersMissing(tasks) {
		for i := range tasks {
			tasks[i].Order = i
		}
		if len(tasks) > 1 {
			changed = true
		}
	}
	return changed
}

// ordersMissing reports whether every order value is zero while more than
// one task exists, which is how a pre-migration collection looks after
// JSON decoding (absent fields decode to zero).
func ordersMissing(tasks []Task) bool {
	if len(tasks) < 2 {
		return false
	}
	for _, t := range tasks {
		if t.Order != 0 {
			return false
		}
	}
	return true
}
