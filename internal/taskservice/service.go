// Package taskservice owns the in-memory task collection and coordinates
// every mutation: parse, apply, re-establish invariants, persist, publish.
//
// The collection has exactly one writer, this service. The store is a
// durable mirror written after each mutation; write failures are logged
// and swallowed so no operation is fatal to the running session.
package taskservice

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/query"
	"github.com/starford/dagaz/internal/quickadd"
	"github.com/starford/dagaz/internal/task"
)

// DefaultSnoozeOffset is how far a snooze pushes the due date.
const DefaultSnoozeOffset = 30 * time.Minute

// Publisher receives change events after each mutation. *sse.Broker
// satisfies it; a nil publisher disables publishing.
type Publisher interface {
	PublishTaskEvent(kind, id string)
	PublishReminder(id, text string, sound bool)
}

// Notifier is the external notification sink invoked when a reminder
// fires. Best-effort: failures are not reported.
type Notifier interface {
	Notify(title, body string)
}

// Store is the subset of the persistence provider the service uses.
type Store interface {
	GetTasks(ctx context.Context) ([]task.Task, error)
	SetTasks(ctx context.Context, tasks []task.Task) error
	GetSettings(ctx context.Context) (task.Settings, error)
	SetSettings(ctx context.Context, s task.Settings) error
}

// Service is the application state controller.
type Service struct {
	store    Store
	logger   *slog.Logger
	pub      Publisher
	notifier Notifier

	mu       sync.Mutex
	tasks    []task.Task
	settings task.Settings
	inbox    []task.InboxEntry
}

// New creates a service. pub and notifier may be nil.
func New(store Store, logger *slog.Logger, pub Publisher, notifier Notifier) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		logger:   logger,
		pub:      pub,
		notifier: notifier,
		tasks:    []task.Task{},
		settings: task.DefaultSettings(),
		inbox:    []task.InboxEntry{},
	}
}

// Load reads the collection and settings from the store and runs the
// one-time migration backfill, persisting only when something changed.
func (s *Service) Load(ctx context.Context) error {
	tasks, err := s.store.GetTasks(ctx)
	if err != nil {
		return err
	}
	if task.Migrate(tasks, time.Now()) {
		if err := s.store.SetTasks(ctx, tasks); err != nil {
			s.logger.Warn("persist after migration failed", slog.String("error", err.Error()))
		}
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Reload re-reads the collection from the store, replacing the in-memory
// state. Used when the data file was edited externally.
func (s *Service) Reload(ctx context.Context) error {
	tasks, err := s.store.GetTasks(ctx)
	if err != nil {
		return err
	}
	task.Migrate(tasks, time.Now())

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	s.publish("changed", "")
	return nil
}

// List returns the tasks visible under filter/search, sorted by sortKey.
// The returned slice is a copy; callers may not mutate service state
// through it.
func (s *Service) List(filter, sortKey, search string, now time.Time) []task.Task {
	s.mu.Lock()
	out := query.Filter(s.tasks, filter, search, now)
	s.mu.Unlock()

	query.Sort(out, sortKey)
	return out
}

// Get returns a copy of the task with the given id.
func (s *Service) Get(id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return task.Task{}, apperr.ErrNotFound
	}
	return *t, nil
}

// AddQuick parses a quick-add line and appends the resulting task. When
// parsing strips everything, the raw input becomes the title.
func (s *Service) AddQuick(ctx context.Context, raw string) (task.Task, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return task.Task{}, apperr.ErrEmptyInput
	}
	now := time.Now()
	draft := quickadd.Parse(raw, now)
	if draft.Text == "" {
		draft.Text = raw
	}

	s.mu.Lock()
	t := task.New(draft, len(s.tasks), now)
	s.tasks = append(s.tasks, t)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("created", t.ID)
	return t, nil
}

// Edit is the full-field update applied by the edit dialog.
type Edit struct {
	Text      string         `json:"text"`
	Notes     string         `json:"notes"`
	Due       *time.Time     `json:"due"`
	RemindAt  *time.Time     `json:"remindAt"`
	Priority  int            `json:"priority"`
	Tags      []string       `json:"tags"`
	Doing     bool           `json:"doing"`
	Completed bool           `json:"completed"`
	Repeat    string         `json:"repeat"`
	Subtasks  []task.Subtask `json:"subtasks"`
}

// Update applies a full edit to the task with the given id. An empty text
// keeps the existing title. The notification latch is re-armed whenever
// the due date or reminder time changes.
func (s *Service) Update(ctx context.Context, id string, e Edit) (task.Task, error) {
	s.mu.Lock()
	t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return task.Task{}, apperr.ErrNotFound
	}

	if timeChanged(t.Due, e.Due) || timeChanged(t.RemindAt, e.RemindAt) {
		t.Notified = false
	}

	if text := strings.TrimSpace(e.Text); text != "" {
		t.Text = text
	}
	t.Notes = strings.TrimSpace(e.Notes)
	t.Due = e.Due
	t.RemindAt = e.RemindAt
	t.Priority = clampPriority(e.Priority)
	t.Tags = normalizeTags(e.Tags)
	t.Repeat = normalizeRepeat(e.Repeat)
	if e.Subtasks != nil {
		t.Subtasks = e.Subtasks
	}

	// Completed wins over doing so the completed/status invariant holds.
	t.Completed = e.Completed
	switch {
	case e.Completed:
		t.Status = task.StatusCompleted
	case e.Doing:
		t.Status = task.StatusDoing
	default:
		t.Status = task.StatusPending
	}

	out := *t
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("updated", id)
	return out, nil
}

// Delete removes the task with the given id. No tombstoning.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("deleted", id)
	return nil
}

// ToggleComplete flips the completion state of a task.
func (s *Service) ToggleComplete(ctx context.Context, id string) (task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task) { t.ToggleComplete() })
}

// ToggleDoing flips a task between doing and pending.
func (s *Service) ToggleDoing(ctx context.Context, id string) (task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task) { t.ToggleDoing() })
}

// ToggleArchive flips the archived overlay.
func (s *Service) ToggleArchive(ctx context.Context, id string) (task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task) { t.ToggleArchive() })
}

// ToggleSubtask sets the done flag of the subtask at index.
func (s *Service) ToggleSubtask(ctx context.Context, id string, index int, done bool) (task.Task, error) {
	s.mu.Lock()
	t := s.find(id)
	if t == nil || index < 0 || index >= len(t.Subtasks) {
		s.mu.Unlock()
		return task.Task{}, apperr.ErrNotFound
	}
	t.Subtasks[index].Done = done
	out := *t
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("updated", id)
	return out, nil
}

// Snooze pushes the due date and reminder by the default offset. A task
// without a due date returns ErrNoDueDate.
func (s *Service) Snooze(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return task.Task{}, apperr.ErrNotFound
	}
	if !t.Snooze(DefaultSnoozeOffset) {
		s.mu.Unlock()
		return task.Task{}, apperr.ErrNoDueDate
	}
	out := *t
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("updated", id)
	return out, nil
}

// Reorder assigns manual order values from the given id sequence. When
// column names a kanban status, dropped tasks also take that status, with
// the completed flag kept consistent. Unknown ids are skipped.
func (s *Service) Reorder(ctx context.Context, ids []string, column string) error {
	s.mu.Lock()
	for idx, id := range ids {
		t := s.find(id)
		if t == nil {
			continue
		}
		t.Order = idx
		if column != "" {
			t.Status = column
			t.Completed = column == task.StatusCompleted
		}
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("changed", "")
	return nil
}

// Import replaces the whole collection from a JSON document: either a bare
// task array or {"tasks": [...]}. Anything else is rejected with
// ErrInvalidImport and no state change. Imported records run through the
// migration backfill so legacy exports stay usable.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	tasks, ok := decodeImport(data)
	if !ok {
		return 0, apperr.ErrInvalidImport
	}
	task.Migrate(tasks, time.Now())

	s.mu.Lock()
	s.tasks = tasks
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("changed", "")
	return len(tasks), nil
}

// Export serializes the collection as {"tasks": [...]}.
func (s *Service) Export() ([]byte, error) {
	s.mu.Lock()
	tasks := make([]task.Task, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.Unlock()

	return json.MarshalIndent(map[string][]task.Task{"tasks": tasks}, "", "  ")
}

// Settings returns the current settings record.
func (s *Service) Settings() task.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings record and persists it.
func (s *Service) UpdateSettings(ctx context.Context, set task.Settings) task.Settings {
	set.Normalize()

	s.mu.Lock()
	set.Streak = s.settings.Streak // streak is tracker-owned, not client-editable
	s.settings = set
	s.mu.Unlock()

	if err := s.store.SetSettings(ctx, set); err != nil {
		s.logger.Warn("persist settings failed", slog.String("error", err.Error()))
	}
	return set
}

// Inbox returns the session's fired-reminder entries, newest last.
func (s *Service) Inbox() []task.InboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]task.InboxEntry, len(s.inbox))
	copy(out, s.inbox)
	return out
}

// ClearInbox discards all inbox entries.
func (s *Service) ClearInbox() {
	s.mu.Lock()
	s.inbox = s.inbox[:0]
	s.mu.Unlock()
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*task.Task)) (task.Task, error) {
	s.mu.Lock()
	t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return task.Task{}, apperr.ErrNotFound
	}
	fn(t)
	t.SyncStatus()
	out := *t
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish("updated", id)
	return out, nil
}

// find returns a pointer into the collection; callers hold s.mu.
func (s *Service) find(id string) *task.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

// persistLocked flushes the whole collection. Failures are logged and
// swallowed; the in-memory state stays authoritative.
func (s *Service) persistLocked(ctx context.Context) {
	if err := s.store.SetTasks(ctx, s.tasks); err != nil {
		s.logger.Warn("persist tasks failed", slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind, id string) {
	if s.pub != nil {
		s.pub.PublishTaskEvent(kind, id)
	}
}

func decodeImport(data []byte) ([]task.Task, bool) {
	// A JSON null decodes into a nil slice without error; it is not a
	// collection and must not wipe the existing one.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, false
	}
	var bare []task.Task
	if err := json.Unmarshal(data, &bare); err == nil {
		if bare == nil {
			bare = []task.Task{}
		}
		return bare, true
	}
	var wrapped struct {
		Tasks []task.Task `json:"tasks"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Tasks != nil {
		return wrapped.Tasks, true
	}
	return nil, false
}

func timeChanged(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a != b
	}
	return !a.Equal(*b)
}

func clampPriority(p int) int {
	if p < task.PriorityNone {
		return task.PriorityNone
	}
	if p > task.PriorityHigh {
		return task.PriorityHigh
	}
	return p
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func normalizeRepeat(r string) string {
	switch r {
	case task.RepeatDaily, task.RepeatWeekly, task.RepeatMonthly:
		return r
	default:
		return task.RepeatNone
	}
}
