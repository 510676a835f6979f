// Package quickadd turns one line of free text into a structured task draft.
//
// The grammar is a fixed-order heuristic, not a natural-language engine:
// #tags, then a !priority token, then a trailing "+note ..." segment, then
// date keywords (today / tomorrow / next week) and an optional clock time
// scanned against the original input.
package quickadd

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/task"
)

var (
	tagRe      = regexp.MustCompile(`(?i)(^|\s)#([a-z0-9_-]+)`)
	priorityRe = regexp.MustCompile(`(?i)(^|\s)!(low|med|medium|high|1|2|3)\b`)
	noteRe     = regexp.MustCompile(`(?i)(^|\s)\+note\s(.+)$`)
	timeRe     = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
)

const reminderLead = 15 * time.Minute

// Parse extracts structure from a quick-add line. now anchors the relative
// date keywords. The returned draft's Text may be empty when the input was
// nothing but markers; callers fall back to the raw input in that case.
//
// A time-like token sets the due date to today at that time even when no
// date keyword is present: the time scan runs over the whole raw input and
// its result always wins over the keyword fallback. Callers relying on
// bare numbers staying literal must escape them out of band.
func Parse(input string, now time.Time) task.Draft {
	text := strings.TrimSpace(input)
	d := task.Draft{Tags: []string{}}

	text = strings.TrimSpace(tagRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := tagRe.FindStringSubmatch(m)
		d.Tags = append(d.Tags, strings.ToLower(sub[2]))
		return ""
	}))

	if loc := priorityRe.FindStringSubmatchIndex(text); loc != nil {
		switch strings.ToLower(text[loc[4]:loc[5]]) {
		case "high", "3":
			d.Priority = task.PriorityHigh
		case "med", "medium", "2":
			d.Priority = task.PriorityMedium
		default:
			d.Priority = task.PriorityLow
		}
		text = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	}

	if loc := noteRe.FindStringSubmatchIndex(text); loc != nil {
		d.Notes = strings.TrimSpace(text[loc[4]:loc[5]])
		text = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	}

	d.Due = parseDue(input, now)
	if d.Due != nil {
		r := d.Due.Add(-reminderLead)
		d.RemindAt = &r
	}

	d.Text = text
	return d
}

// parseDue scans the original (pre-stripped) input for date keywords and a
// clock time.
func parseDue(input string, now time.Time) *time.Time {
	lower := strings.ToLower(input)

	base := now
	hasKeyword := true
	switch {
	case strings.Contains(lower, "tomorrow"):
		base = now.AddDate(0, 0, 1)
	case strings.Contains(lower, "today"):
	case strings.Contains(lower, "next week"):
		base = now.AddDate(0, 0, 7)
	default:
		hasKeyword = false
	}

	if m := timeRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min := 0
		if m[2] != "" {
			min, _ = strconv.Atoi(m[2])
		}
		switch m[3] {
		case "pm":
			if h < 12 {
				h += 12
			}
		case "am":
			if h == 12 {
				h = 0
			}
		}
		// time.Date rolls out-of-range hours into the following days.
		due := time.Date(base.Year(), base.Month(), base.Day(), h, min, 0, 0, base.Location())
		return &due
	}

	if hasKeyword {
		due := time.Date(base.Year(), base.Month(), base.Day(), 17, 0, 0, 0, base.Location())
		return &due
	}
	return nil
}
