// Package query implements filtering and sorting of the task collection.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/task"
)

// Named filter categories.
const (
	FilterAll       = "all"
	FilterPending   = "pending"
	FilterDoing     = "doing"
	FilterCompleted = "completed"
	FilterToday     = "today"
	FilterOverdue   = "overdue"
	FilterScheduled = "scheduled"
	FilterArchived  = "archived"
)

// Sort keys.
const (
	SortOrder        = "order"
	SortDueAsc       = "dueAsc"
	SortDueDesc      = "dueDesc"
	SortPriorityDesc = "priorityDesc"
	SortCreatedDesc  = "createdDesc"
)

// Matches reports whether t is visible under the given filter and search
// term at the reference instant now.
//
// Archived tasks answer only to the "archived" filter; the check runs
// before the search term so an archived task is never surfaced by search
// under another filter.
func Matches(t *task.Task, filter, search string, now time.Time) bool {
	if t.Archived {
		return filter == FilterArchived
	}

	q := strings.ToLower(strings.TrimSpace(search))
	if q != "" && !searchHit(t, q) {
		return false
	}

	switch filter {
	case FilterPending:
		return t.Status == task.StatusPending && !t.Completed
	case FilterDoing:
		return t.Status == task.StatusDoing && !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterToday:
		return t.Due != nil && SameDay(*t.Due, now)
	case FilterOverdue:
		return t.Due != nil && t.Due.Before(now) && !t.Completed
	case FilterScheduled:
		return t.Due != nil
	case FilterArchived:
		return t.Archived
	default: // "all" and unknown filters
		return true
	}
}

// searchHit matches the term against the title or any "#tag" string,
// case-insensitively.
func searchHit(t *task.Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Text), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains("#"+strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Filter returns the tasks visible under filter/search, preserving
// collection order.
func Filter(tasks []task.Task, filter, search string, now time.Time) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for i := range tasks {
		if Matches(&tasks[i], filter, search, now) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Sort orders the slice in place by the given key. Sorting is stable and
// touches only the view slice, never the persisted order values: manual
// drag reordering is the sole writer of Task.Order.
//
// Tasks without a due date sort after all dated tasks in both due modes
// (a missing due behaves as +infinity for ascending and -infinity for
// descending, which lands it last either way).
func Sort(tasks []task.Task, key string) {
	switch key {
	case SortDueAsc:
		sort.SliceStable(tasks, func(i, j int) bool {
			return dueOrInf(tasks[i], false).Before(dueOrInf(tasks[j], false))
		})
	case SortDueDesc:
		sort.SliceStable(tasks, func(i, j int) bool {
			return dueOrInf(tasks[j], true).Before(dueOrInf(tasks[i], true))
		})
	case SortPriorityDesc:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority > tasks[j].Priority
		})
	case SortCreatedDesc:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[j].CreatedAt.Before(tasks[i].CreatedAt)
		})
	case SortOrder:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Order < tasks[j].Order
		})
	}
}

var (
	farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	farPast   = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
)

func dueOrInf(t task.Task, desc bool) time.Time {
	if t.Due != nil {
		return *t.Due
	}
	if desc {
		return farPast
	}
	return farFuture
}

// SameDay reports whether a and b fall on the same calendar day, as seen
// from b's location. Stored times may carry any offset (imports, external
// edits of the data file), so a is converted before comparing.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
