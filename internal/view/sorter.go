package view

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/nibzard/tdtxt/internal/todo"
)

// DefaultSort is the sort expression used when none is configured.
const DefaultSort = "desc:importance,due,prio"

// compareFunc orders two tasks for one sort field.
type compareFunc func(a, b *todo.Task) int

type clause struct {
	field string
	desc  bool
	cmp   compareFunc
}

// Sorter orders tasks by a list of fields.
type Sorter struct {
	expr           string
	ignoreWeekends bool
	clauses        []clause
}

// SorterOption adjusts NewSorter.
type SorterOption func(*Sorter)

// IgnoreWeekends makes the importance field treat a task due on Monday as
// due tomorrow from Friday on.
func IgnoreWeekends(on bool) SorterOption {
	return func(s *Sorter) { s.ignoreWeekends = on }
}

// NewSorter parses a comma-separated list of [asc:|desc:]field clauses.
// The first clause is the primary key. Fields that are not built in sort
// by the value of the tag with that name; tasks without the tag go last.
func NewSorter(expr string, opts ...SorterOption) *Sorter {
	s := &Sorter{expr: expr}
	for _, opt := range opts {
		opt(s)
	}
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		desc := false
		if rest, ok := strings.CutPrefix(part, "desc:"); ok {
			desc, part = true, rest
		} else if rest, ok := strings.CutPrefix(part, "asc:"); ok {
			part = rest
		}
		if part == "" {
			continue
		}
		s.clauses = append(s.clauses, clause{field: part, desc: desc, cmp: s.fieldCompare(part)})
	}
	return s
}

// String returns the expression the sorter was built from.
func (s *Sorter) String() string { return s.expr }

// Sort returns a sorted copy of tasks. Clauses are applied from the last
// to the first with a stable sort, so earlier clauses dominate and ties
// keep their original order.
func (s *Sorter) Sort(tasks []*todo.Task) []*todo.Task {
	result := slices.Clone(tasks)
	for i := len(s.clauses) - 1; i >= 0; i-- {
		c := s.clauses[i]
		slices.SortStableFunc(result, func(a, b *todo.Task) int {
			if c.desc {
				return c.cmp(b, a)
			}
			return c.cmp(a, b)
		})
	}
	return result
}

func (s *Sorter) fieldCompare(field string) compareFunc {
	switch field {
	case "prio", "priority":
		// A before Z, tasks without priority last.
		return func(a, b *todo.Task) int {
			return cmp.Compare(priorityRank(b.Priority()), priorityRank(a.Priority()))
		}
	case "due":
		return byDate((*todo.Task).DueDate)
	case "start", "t":
		return byDate((*todo.Task).StartDate)
	case "creation", "created":
		return byDate((*todo.Task).CreationDate)
	case "completion":
		return byDate((*todo.Task).CompletionDate)
	case "completed", "done":
		return func(a, b *todo.Task) int { return cmpBool(a.Completed(), b.Completed()) }
	case "text":
		return func(a, b *todo.Task) int {
			return strings.Compare(strings.ToLower(a.Text()), strings.ToLower(b.Text()))
		}
	case "length":
		return func(a, b *todo.Task) int { return cmp.Compare(a.Length(), b.Length()) }
	case "importance":
		return func(a, b *todo.Task) int {
			return cmp.Compare(a.Importance(s.ignoreWeekends), b.Importance(s.ignoreWeekends))
		}
	case "project", "projects":
		return byFirst((*todo.Task).Projects)
	case "context", "contexts":
		return byFirst((*todo.Task).Contexts)
	default:
		return func(a, b *todo.Task) int {
			return strings.Compare(tagKey(a, field), tagKey(b, field))
		}
	}
}

// byDate sorts tasks without the date after all tasks that have one.
func byDate(get func(*todo.Task) (time.Time, bool)) compareFunc {
	return func(a, b *todo.Task) int {
		da, oka := get(a)
		db, okb := get(b)
		switch {
		case oka && okb:
			return da.Compare(db)
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	}
}

func byFirst(get func(*todo.Task) []string) compareFunc {
	key := func(t *todo.Task) string {
		if values := get(t); len(values) > 0 {
			return "0" + strings.ToLower(values[0])
		}
		return "1"
	}
	return func(a, b *todo.Task) int { return strings.Compare(key(a), key(b)) }
}

// tagKey prefixes present values with "0" so they sort before the "1" of
// tasks without the tag.
func tagKey(t *todo.Task, key string) string {
	if v := t.TagValue(key); v != "" {
		return "0" + v
	}
	return "1"
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}
