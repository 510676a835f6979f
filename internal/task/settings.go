package task

import "time"

// Streak tracks consecutive days with at least one completed task.
type Streak struct {
	Count int    `json:"count"`
	Date  string `json:"date"` // calendar day of the last increment
}

// Settings is the process-wide configuration record persisted next to the
// task collection.
type Settings struct {
	Theme     string `json:"theme"`
	AutoTheme bool   `json:"autoTheme"`
	Sound     bool   `json:"sound"`
	DailyGoal int    `json:"dailyGoal"`
	Streak    Streak `json:"streak"`
}

// DefaultSettings returns the settings used when the store is empty or
// unreadable.
func DefaultSettings() Settings {
	return Settings{
		Theme:     "dark",
		DailyGoal: 5,
	}
}

// Normalize fills defaults on a partially populated record.
func (s *Settings) Normalize() {
	if s.Theme == "" {
		s.Theme = "dark"
	}
	if s.DailyGoal <= 0 {
		s.DailyGoal = 5
	}
}

// InboxEntry is a session-only record of a fired reminder. Entries are
// never persisted; they exist so the user can review recent reminders.
type InboxEntry struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	FiredAt time.Time `json:"firedAt"`
}
