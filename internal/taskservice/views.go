package taskservice

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/starford/dagaz/internal/query"
	"github.com/starford/dagaz/internal/task"
)

// Stats is the daily-goal dashboard payload.
type Stats struct {
	CompletedToday int `json:"completedToday"`
	DailyGoal      int `json:"dailyGoal"`
	GoalPct        int `json:"goalPct"`
	StreakDays     int `json:"streakDays"`
}

// ComputeStats counts today's completions against the daily goal and
// advances the streak when today is the first day with a completion.
//
// Completions are attributed to the day the task was created; the model
// carries no completion timestamp to count by.
func (s *Service) ComputeStats(ctx context.Context, now time.Time) Stats {
	s.mu.Lock()

	completedToday := 0
	for i := range s.tasks {
		if s.tasks[i].Completed && query.SameDay(s.tasks[i].CreatedAt, now) {
			completedToday++
		}
	}

	goal := s.settings.DailyGoal
	if goal <= 0 {
		goal = 5
	}
	pct := int(math.Round(float64(completedToday) / float64(goal) * 100))
	if pct > 100 {
		pct = 100
	}

	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	streakDirty := false
	if completedToday > 0 && s.settings.Streak.Date != today {
		if s.settings.Streak.Date == yesterday {
			s.settings.Streak.Count++
		} else {
			s.settings.Streak.Count = 1
		}
		s.settings.Streak.Date = today
		streakDirty = true
	}

	out := Stats{
		CompletedToday: completedToday,
		DailyGoal:      goal,
		GoalPct:        pct,
		StreakDays:     s.settings.Streak.Count,
	}
	settings := s.settings
	s.mu.Unlock()

	if streakDirty {
		if err := s.store.SetSettings(ctx, settings); err != nil {
			s.logger.Warn("persist streak failed", slog.String("error", err.Error()))
		}
	}
	return out
}

// Board groups non-archived tasks into the three kanban columns, each
// sorted by manual order.
func (s *Service) Board() map[string][]task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols := map[string][]task.Task{
		task.StatusPending:   {},
		task.StatusDoing:     {},
		task.StatusCompleted: {},
	}
	for i := range s.tasks {
		t := s.tasks[i]
		if t.Archived {
			continue
		}
		if _, ok := cols[t.Status]; ok {
			cols[t.Status] = append(cols[t.Status], t)
		}
	}
	for status := range cols {
		query.Sort(cols[status], query.SortOrder)
	}
	return cols
}

// CalendarDay is one cell of the month view.
type CalendarDay struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

// Calendar returns per-day counts of due tasks for the given month.
func (s *Service) Calendar(year int, month time.Month) []CalendarDay {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	out := make([]CalendarDay, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.Local)
		count := 0
		for i := range s.tasks {
			if s.tasks[i].Due != nil && query.SameDay(*s.tasks[i].Due, day) {
				count++
			}
		}
		out[d-1] = CalendarDay{Day: d, Count: count}
	}
	return out
}
