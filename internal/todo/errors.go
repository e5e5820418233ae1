package todo

import "errors"

var (
	// ErrInvalidTodoNumber is returned when a task reference does not
	// resolve to a task in the list.
	ErrInvalidTodoNumber = errors.New("invalid todo number")

	// ErrNoRecurrence is returned when advancing a task that has no valid
	// recurrence pattern.
	ErrNoRecurrence = errors.New("no valid recurrence pattern")
)
