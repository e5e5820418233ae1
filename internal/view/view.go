// Package view builds read-only projections of a task list: filtered,
// sorted and optionally truncated.
package view

import (
	"github.com/nibzard/tdtxt/internal/todo"
)

// View is a sorted and filtered snapshot of a list. Call Update after the
// list changes.
type View struct {
	list    *todo.List
	sorter  *Sorter
	filters []Filter
	tasks   []*todo.Task
}

// New builds a view of list. A nil sorter keeps file order.
func New(list *todo.List, sorter *Sorter, filters ...Filter) *View {
	v := &View{list: list, sorter: sorter, filters: filters}
	v.Update()
	return v
}

// Update recomputes the snapshot: sort everything, then filter.
func (v *View) Update() {
	tasks := v.list.Tasks()
	if v.sorter != nil {
		tasks = v.sorter.Sort(tasks)
	}
	v.tasks = Apply(tasks, v.filters...)
}

// Tasks returns the tasks in view order.
func (v *View) Tasks() []*todo.Task { return v.tasks }

// Len returns the number of tasks in the view.
func (v *View) Len() int { return len(v.tasks) }

// List returns the list the view was built from.
func (v *View) List() *todo.List { return v.list }

// Number returns the list number of a task in the view.
func (v *View) Number(t *todo.Task) int { return v.list.Number(t) }
