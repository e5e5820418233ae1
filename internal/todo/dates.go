package todo

import "time"

// Now is the clock used for every "today" computation. Tests replace it.
var Now = time.Now

// Today returns the current date at midnight UTC, the same representation
// parsed dates use.
func Today() time.Time {
	return truncateDay(Now())
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns b-a in whole days for two midnight-UTC dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// TagConfig names the tags that carry special meaning.
type TagConfig struct {
	Start      string `toml:"start"`
	Due        string `toml:"due"`
	Star       string `toml:"star"`
	Hidden     string `toml:"hidden"`
	Recurrence string `toml:"recurrence"`
}

// DefaultTagConfig returns the conventional todo.txt tag names.
func DefaultTagConfig() TagConfig {
	return TagConfig{
		Start:      "t",
		Due:        "due",
		Star:       "star",
		Hidden:     "h",
		Recurrence: "rec",
	}
}

func (c TagConfig) withDefaults() TagConfig {
	def := DefaultTagConfig()
	if c.Start == "" {
		c.Start = def.Start
	}
	if c.Due == "" {
		c.Due = def.Due
	}
	if c.Star == "" {
		c.Star = def.Star
	}
	if c.Hidden == "" {
		c.Hidden = def.Hidden
	}
	if c.Recurrence == "" {
		c.Recurrence = def.Recurrence
	}
	return c
}

// Dependency tag names. They are part of the file format, not configuration.
const (
	TagID     = "id"
	TagParent = "p"
)

// dateTag parses the value of key as a date.
func (t *Task) dateTag(key string) (time.Time, bool) {
	d := parseDate(t.TagValue(key))
	return d, !d.IsZero()
}

// StartDate returns the date in the start tag.
func (t *Task) StartDate() (time.Time, bool) { return t.dateTag(t.tags.Start) }

// DueDate returns the date in the due tag.
func (t *Task) DueDate() (time.Time, bool) { return t.dateTag(t.tags.Due) }

// IsActive reports whether the task is open and its start date, if any,
// has been reached.
func (t *Task) IsActive() bool {
	if t.Completed() {
		return false
	}
	start, ok := t.StartDate()
	return !ok || !start.After(Today())
}

// IsOverdue reports whether an open task's due date lies before today.
func (t *Task) IsOverdue() bool {
	due, ok := t.DueDate()
	return ok && !t.Completed() && due.Before(Today())
}

// DaysTillDue returns the signed number of days until the due date, or 0
// without one.
func (t *Task) DaysTillDue() int {
	due, ok := t.DueDate()
	if !ok {
		return 0
	}
	return daysBetween(Today(), due)
}

// Length returns due-start in days when start lies before due, else 0.
func (t *Task) Length() int {
	start, okStart := t.StartDate()
	due, okDue := t.DueDate()
	if okStart && okDue && start.Before(due) {
		return daysBetween(start, due)
	}
	return 0
}

// IsStarred reports whether the task carries the star tag.
func (t *Task) IsStarred() bool { return t.HasTag(t.tags.Star) }

// IsHidden reports whether the task carries the hidden tag with value 1.
func (t *Task) IsHidden() bool { return t.HasTag(t.tags.Hidden, "1") }

var importanceValue = map[byte]int{'A': 3, 'B': 2, 'C': 1}

// Importance scores how urgently an open task needs attention, combining
// priority, due-date proximity and the star tag. Completed tasks score 0.
func (t *Task) Importance(ignoreWeekends bool) int {
	if t.Completed() {
		return 0
	}
	result := 2 + importanceValue[t.Priority()]

	if _, ok := t.DueDate(); ok {
		days := t.DaysTillDue()
		switch {
		case days < 0:
			result += 6
		case days < 1:
			result += 5
		case days < 2:
			result += 3
		case days < 7:
			result += 2
		case days < 14:
			result++
		}
	}
	if ignoreWeekends && t.dueNextMonday() {
		result++
	}
	if t.IsStarred() {
		result++
	}
	return result
}

// dueNextMonday is true on a Friday or weekend when the task is due on the
// coming Monday.
func (t *Task) dueNextMonday() bool {
	due, ok := t.DueDate()
	if !ok {
		return false
	}
	today := Today().Weekday()
	weekend := today == time.Friday || today == time.Saturday || today == time.Sunday
	days := t.DaysTillDue()
	return weekend && due.Weekday() == time.Monday && days > 0 && days <= 3
}
