package view

import (
	"slices"
	"strings"
	"unicode"

	"github.com/nibzard/tdtxt/internal/todo"
)

// Filter selects tasks. Match tests one task; Filter applies the filter to
// a sequence and may also reorder or truncate it.
type Filter interface {
	Match(t *todo.Task) bool
	Filter(tasks []*todo.Task) []*todo.Task
}

// MatchFunc adapts a predicate to the Filter interface.
type MatchFunc func(t *todo.Task) bool

// Match calls f.
func (f MatchFunc) Match(t *todo.Task) bool { return f(t) }

// Filter keeps the tasks f matches, in order.
func (f MatchFunc) Filter(tasks []*todo.Task) []*todo.Task {
	result := make([]*todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if f(t) {
			result = append(result, t)
		}
	}
	return result
}

// Not inverts f.
func Not(f Filter) Filter {
	return MatchFunc(func(t *todo.Task) bool { return !f.Match(t) })
}

// And matches tasks that every filter matches.
func And(filters ...Filter) Filter {
	return MatchFunc(func(t *todo.Task) bool {
		for _, f := range filters {
			if !f.Match(t) {
				return false
			}
		}
		return true
	})
}

// Or matches tasks that at least one filter matches.
func Or(filters ...Filter) Filter {
	return MatchFunc(func(t *todo.Task) bool {
		for _, f := range filters {
			if f.Match(t) {
				return true
			}
		}
		return false
	})
}

type limit int

// Limit truncates a sequence to at most n tasks. A negative n keeps all.
func Limit(n int) Filter { return limit(n) }

func (l limit) Match(*todo.Task) bool { return true }

func (l limit) Filter(tasks []*todo.Task) []*todo.Task {
	if l < 0 || int(l) >= len(tasks) {
		return tasks
	}
	return tasks[:l]
}

// Relevance matches open, active tasks that deserve attention now: those
// with priority A, priority B due within 30 days, priority C due within
// 14 days, or no due date at all.
func Relevance() Filter {
	return MatchFunc(func(t *todo.Task) bool {
		if t.Completed() || !t.IsActive() {
			return false
		}
		_, hasDue := t.DueDate()
		days := t.DaysTillDue()
		switch {
		case t.Priority() == 'A':
			return true
		case t.Priority() == 'B' && hasDue && days <= 30:
			return true
		case t.Priority() == 'C' && hasDue && days <= 14:
			return true
		}
		return !hasDue
	})
}

// Dependency matches tasks without uncompleted children in l, hiding
// tasks that are still waiting on others.
func Dependency(l *todo.List) Filter {
	return MatchFunc(func(t *todo.Task) bool {
		n := l.Number(t)
		if n == 0 {
			return true
		}
		for _, child := range l.Children(n, false) {
			if !child.Completed() {
				return false
			}
		}
		return true
	})
}

// Grep matches tasks whose source contains expr. Unless caseSensitive is
// given, matching is case-sensitive only when expr has an uppercase
// letter.
func Grep(expr string, caseSensitive *bool) Filter {
	sensitive := strings.ContainsFunc(expr, unicode.IsUpper)
	if caseSensitive != nil {
		sensitive = *caseSensitive
	}
	if !sensitive {
		expr = strings.ToLower(expr)
	}
	return MatchFunc(func(t *todo.Task) bool {
		src := t.Source()
		if !sensitive {
			src = strings.ToLower(src)
		}
		return strings.Contains(src, expr)
	})
}

// Instance matches exactly the given tasks.
func Instance(tasks []*todo.Task) Filter {
	return MatchFunc(func(t *todo.Task) bool { return slices.Contains(tasks, t) })
}

// HiddenTag drops tasks marked hidden with the configured tag (h:1).
func HiddenTag() Filter {
	return MatchFunc(func(t *todo.Task) bool { return !t.IsHidden() })
}

// Completed matches finished tasks.
func Completed() Filter {
	return MatchFunc(func(t *todo.Task) bool { return t.Completed() })
}

// Active matches open tasks whose start date has been reached.
func Active() Filter {
	return MatchFunc(func(t *todo.Task) bool { return t.IsActive() })
}

// Project matches tasks in +name.
func Project(name string) Filter {
	return MatchFunc(func(t *todo.Task) bool { return t.HasProject(name) })
}

// Context matches tasks in @name.
func Context(name string) Filter {
	return MatchFunc(func(t *todo.Task) bool { return t.HasContext(name) })
}

// Apply runs every filter over tasks in order.
func Apply(tasks []*todo.Task, filters ...Filter) []*todo.Task {
	for _, f := range filters {
		tasks = f.Filter(tasks)
	}
	return tasks
}
