package taskservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/task"
)

// ReminderPass is one scheduler tick over the collection: fire reminders
// that fall inside the window around now, then roll completed repeating
// tasks over to their next occurrence. The collection is persisted once
// when anything changed. Returns the number of reminders fired.
func (s *Service) ReminderPass(ctx context.Context, now time.Time, window time.Duration) int {
	type fired struct {
		id, text string
	}
	var toNotify []fired

	s.mu.Lock()
	changed := false

	for i := range s.tasks {
		t := &s.tasks[i]

		if !t.Completed && !t.Notified {
			if when := t.ReminderTime(); when != nil {
				diff := when.Sub(now)
				if diff <= window && diff > -window {
					s.inbox = append(s.inbox, task.InboxEntry{
						ID:      task.NewID(),
						Text:    t.Text,
						FiredAt: now,
					})
					toNotify = append(toNotify, fired{id: t.ID, text: t.Text})
					t.Notified = true
					changed = true
				}
			}
		}

		if t.Rollover() {
			changed = true
		}
	}

	sound := s.settings.Sound
	if changed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	for _, f := range toNotify {
		s.logger.Info("reminder fired", slog.String("id", f.id), slog.String("text", f.text))
		if s.notifier != nil {
			s.notifier.Notify("Reminder", f.text)
		}
		if s.pub != nil {
			s.pub.PublishReminder(f.id, f.text, sound)
		}
	}
	if changed && s.pub != nil {
		s.pub.PublishTaskEvent("changed", "")
	}
	return len(toNotify)
}
