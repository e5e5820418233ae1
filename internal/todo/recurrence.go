package todo

import (
	"fmt"
	"strings"
)

// AdvanceRecurring builds the follow-up of a recurring task. The original
// task and its list are not modified; the caller adds the result.
//
// The new due date is the recurrence pattern applied to a base date. The
// base is the current due date when it is today or later, and today
// otherwise. In strict mode, or when the pattern starts with "+", the
// current due date is always the base. A start date keeps its distance
// from the due date. The creation date becomes today.
func AdvanceRecurring(t *Task, strict bool) (*Task, error) {
	cfg := t.tags
	pattern := t.TagValue(cfg.Recurrence)
	if pattern == "" {
		return nil, ErrNoRecurrence
	}
	if rest, ok := strings.CutPrefix(pattern, "+"); ok {
		strict = true
		pattern = rest
	}

	today := Today()
	base := today
	if due, ok := t.DueDate(); ok && (strict || !due.Before(today)) {
		base = due
	}

	newDue, ok := RelativeDate(pattern, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRecurrence, pattern)
	}

	length := t.Length()
	next := NewTaskWithTags(t.Source(), cfg)
	next.reopen()
	next.SetTag(cfg.Due, newDue.Format(DateLayout))
	if _, ok := next.StartDate(); ok {
		next.SetTag(cfg.Start, newDue.AddDate(0, 0, -length).Format(DateLayout))
	}
	next.SetCreationDate(today)
	return next, nil
}

// Postpone moves the due date by a relative pattern, counting from the
// current due date or from today when there is none. With moveStart the
// start date follows so the task keeps its length. It reports false when
// the pattern is not understood.
func Postpone(t *Task, pattern string, moveStart bool) bool {
	cfg := t.tags
	offset, ok := t.DueDate()
	if !ok {
		offset = Today()
	}
	newDue, ok := RelativeDate(pattern, offset)
	if !ok {
		return false
	}
	if _, hasStart := t.StartDate(); moveStart && hasStart {
		length := t.Length()
		t.SetTag(cfg.Start, newDue.AddDate(0, 0, -length).Format(DateLayout))
	}
	t.SetTag(cfg.Due, newDue.Format(DateLayout))
	return true
}
