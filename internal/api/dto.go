package api

import (
	"github.com/starford/dagaz/internal/task"
	"github.com/starford/dagaz/internal/taskservice"
)

// QuickAddRequest is the body for POST /tasks.
type QuickAddRequest struct {
	Text string `json:"text"`
}

// EditRequest is the body for PUT /tasks/{id} (aliased from the domain
// layer; the API applies full-field edits exactly as the edit dialog does).
type EditRequest = taskservice.Edit

// SubtaskRequest is the body for PUT /tasks/{id}/subtasks/{index}.
type SubtaskRequest struct {
	Done bool `json:"done"`
}

// ReorderRequest is the body for POST /tasks/reorder. Column, when set,
// names the kanban column the ids were dropped into.
type ReorderRequest struct {
	IDs    []string `json:"ids"`
	Column string   `json:"column,omitempty"`
}

// TaskListResponse wraps filtered/sorted task listings.
type TaskListResponse struct {
	Tasks []task.Task `json:"tasks"`
	Total int         `json:"total"`
}

// ImportResponse reports how many tasks an import installed.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// InboxResponse wraps the session inbox.
type InboxResponse struct {
	Entries []task.InboxEntry `json:"entries"`
}

// BoardResponse wraps the kanban columns.
type BoardResponse struct {
	Columns map[string][]task.Task `json:"columns"`
}

// CalendarResponse wraps the month view.
type CalendarResponse struct {
	Year  int                       `json:"year"`
	Month int                       `json:"month"`
	Days  []taskservice.CalendarDay `json:"days"`
}
