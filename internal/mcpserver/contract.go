package mcpserver

// QuickAddContract documents the quick-add line grammar for LLM consumers
// of the add_task tool.
const QuickAddContract = `# Dagaz Quick-Add Syntax

One line of free text, parsed in this fixed order. Tag, priority, and note
markers are removed from the line; whatever remains becomes the task title.
Date keywords and clock times stay in the title even though they also set
the due date.

## Markers

- ` + "`#tag`" + ` — any number of tags. Letters, digits, underscore, hyphen;
  stored lowercase.
- ` + "`!low` / `!med` / `!medium` / `!high` / `!1` / `!2` / `!3`" + ` — one priority
  token. Omitted means no priority.
- ` + "`+note <text>`" + ` — everything after the marker to end of line becomes the
  task notes.
- Date keywords: ` + "`today`" + `, ` + "`tomorrow`" + `, ` + "`next week`" + ` (checked in that
  order of precedence: tomorrow, today, next week).
- Clock time: ` + "`H`" + `, ` + "`H:MM`" + `, with optional ` + "`am`/`pm`" + ` (e.g. ` + "`5pm`" + `,
  ` + "`17:00`" + `, ` + "`9:30am`" + `).

## Due dates

- Date keyword + time: due at that time on that day.
- Date keyword alone: due at 17:00 on that day.
- A reminder is set 15 minutes before every due date.

## Caveats

- The time scan runs over the whole line, so any bare 1-2 digit number can
  be read as a time and set a due date for today. Avoid stray numbers in
  quick-add lines, or edit the task afterwards to clear the due date.

## Examples

- ` + "`Buy milk #errand !high +note get 2%`" + ` → title "Buy milk", tag "errand",
  high priority, notes "get 2%".
- ` + "`Call mom tomorrow 5pm`" + ` → title "Call mom tomorrow 5pm", due tomorrow
  17:00, reminder 16:45.
- ` + "`Water plants next week`" + ` → due in 7 days at 17:00.
`
