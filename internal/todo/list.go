package todo

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/tdtxt/internal/graph"
)

// ListOptions tunes how a List maintains dependencies.
type ListOptions struct {
	Tags TagConfig
	// AppendParentProjects copies the parent's +projects to a new child.
	AppendParentProjects bool
	// AppendParentContexts copies the parent's @contexts to a new child.
	AppendParentContexts bool
}

// List is an ordered set of tasks plus the dependency graph derived from
// their id: and p: tags. Tasks are numbered from 1 by position.
//
// Graph nodes are keyed by a per-task ordinal assigned when the task is
// added. Ordinals never change, so deleting a task renumbers the list
// without invalidating the graph.
type List struct {
	opts    ListOptions
	tasks   []*Task
	keys    map[*Task]int
	byKey   map[int]*Task
	nextKey int
	graph   *graph.Graph[int]
	dirty   bool
}

// NewList returns an empty list.
func NewList(opts ListOptions) *List {
	opts.Tags = opts.Tags.withDefaults()
	return &List{
		opts:  opts,
		keys:  make(map[*Task]int),
		byKey: make(map[int]*Task),
		graph: graph.New[int](),
	}
}

// LoadList builds a list from file lines. The result is not dirty.
func LoadList(lines []string, opts ListOptions) *List {
	l := NewList(opts)
	for _, line := range lines {
		l.Add(line)
	}
	l.dirty = false
	return l
}

// Options returns the options the list was created with.
func (l *List) Options() ListOptions { return l.opts }

// Add parses text into a new task at the end of the list and links it into
// the dependency graph. Blank text is ignored and yields nil.
func (l *List) Add(text string) *Task {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	t := NewTaskWithTags(text, l.opts.Tags)
	l.AddTask(t)
	return t
}

// AddTask appends an existing task, e.g. one produced by AdvanceRecurring.
func (l *List) AddTask(t *Task) {
	if t == nil {
		return
	}
	if _, ok := l.keys[t]; ok {
		return
	}
	l.nextKey++
	l.keys[t] = l.nextKey
	l.byKey[l.nextKey] = t
	l.tasks = append(l.tasks, t)
	l.link(t)
	l.dirty = true
}

// link adds the edges implied by t's own tags. A task with id:N gains an
// edge to every task already in the list tagged p:N; each p:N on t gains
// an edge from the first task tagged id:N.
func (l *List) link(t *Task) {
	key := l.keys[t]
	if id := t.TagValue(TagID); id != "" {
		l.graph.AddNode(key)
		for _, other := range l.tasks {
			if other != t && other.HasTag(TagParent, id) {
				l.graph.AddEdge(key, l.keys[other], id)
			}
		}
	}
	for _, id := range t.TagValues(TagParent) {
		if parent := l.TodoByDepID(id); parent != nil && parent != t {
			l.graph.AddEdge(l.keys[parent], key, id)
		}
	}
}

// RebuildGraphFromTags discards the graph and derives it again from the
// tags of every task, in list order.
func (l *List) RebuildGraphFromTags() {
	l.graph = graph.New[int]()
	for _, t := range l.tasks {
		l.link(t)
	}
}

// Todo returns task number n (1-based), or nil when out of range.
func (l *List) Todo(n int) *Task {
	if n < 1 || n > len(l.tasks) {
		return nil
	}
	return l.tasks[n-1]
}

// Number returns the 1-based position of t, or 0 if t is not in the list.
func (l *List) Number(t *Task) int {
	if i := slices.Index(l.tasks, t); i >= 0 {
		return i + 1
	}
	return 0
}

// Resolve turns a user-supplied reference into a task: a task number or
// "last" for the most recently added task.
func (l *List) Resolve(ref string) (*Task, int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "last" {
		if len(l.tasks) == 0 {
			return nil, 0, ErrInvalidTodoNumber
		}
		return l.tasks[len(l.tasks)-1], len(l.tasks), nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return nil, 0, ErrInvalidTodoNumber
	}
	t := l.Todo(n)
	if t == nil {
		return nil, 0, ErrInvalidTodoNumber
	}
	return t, n, nil
}

// TodoByDepID returns the first task tagged id:id.
func (l *List) TodoByDepID(id string) *Task {
	for _, t := range l.tasks {
		if t.HasTag(TagID, id) {
			return t
		}
	}
	return nil
}

// Tasks returns the tasks in file order.
func (l *List) Tasks() []*Task { return slices.Clone(l.tasks) }

// Count returns the number of tasks.
func (l *List) Count() int { return len(l.tasks) }

// Dirty reports whether the list changed since it was loaded.
func (l *List) Dirty() bool { return l.dirty }

// Delete removes task n. Its graph edges are dropped first; dependency tags
// on other tasks are left for CleanDependencies. It returns the removed
// task, or nil for an invalid number.
func (l *List) Delete(n int) *Task {
	t := l.Todo(n)
	if t == nil {
		return nil
	}
	key := l.keys[t]
	for _, child := range l.graph.OutgoingNeighbors(key, false) {
		l.graph.RemoveEdge(key, child, true)
	}
	for _, parent := range l.graph.IncomingNeighbors(key, false) {
		l.graph.RemoveEdge(parent, key, true)
	}
	l.graph.RemoveNode(key, false)

	l.tasks = slices.Delete(l.tasks, n-1, n)
	delete(l.keys, t)
	delete(l.byKey, key)
	l.dirty = true
	return t
}

// Detach removes every dependency of task n, tags included.
func (l *List) Detach(n int) {
	for _, child := range l.Children(n, true) {
		l.RemoveDependency(n, l.Number(child))
	}
	for _, parent := range l.Parents(n, true) {
		l.RemoveDependency(l.Number(parent), n)
	}
}

// Append adds text to the end of task n and picks up any new tags.
func (l *List) Append(n int, text string) {
	t := l.Todo(n)
	if t == nil || text == "" {
		return
	}
	t.SetSourceText(t.Source() + " " + text)
	l.link(t)
	l.dirty = true
}

// Modify applies fn to task n and marks the list dirty. If fn changes the
// dependency tags the graph is rebuilt.
func (l *List) Modify(n int, fn func(*Task)) {
	t := l.Todo(n)
	if t == nil {
		return
	}
	before := depSignature(t)
	old := t.Source()
	fn(t)
	if t.Source() == old {
		return
	}
	l.dirty = true
	if depSignature(t) != before {
		l.RebuildGraphFromTags()
	}
}

func depSignature(t *Task) string {
	return strings.Join(t.TagValues(TagID), ",") + "|" + strings.Join(t.TagValues(TagParent), ",")
}

// SetCompleted marks task n done on date.
func (l *List) SetCompleted(n int, date time.Time) {
	l.Modify(n, func(t *Task) { t.SetCompleted(date) })
}

// SetPriority sets or clears the priority of task n.
func (l *List) SetPriority(n int, p byte) {
	l.Modify(n, func(t *Task) { t.SetPriority(p) })
}

// AddDependency makes task to a child of task from. The parent receives an
// id: tag if it has none, using the lowest free positive number, and the
// child receives the matching p: tag. Invalid numbers, self-dependencies
// and existing edges are ignored.
func (l *List) AddDependency(from, to int) {
	parent, child := l.Todo(from), l.Todo(to)
	if parent == nil || child == nil || parent == child {
		return
	}
	pk, ck := l.keys[parent], l.keys[child]
	if l.graph.HasEdge(pk, ck) {
		return
	}

	id := parent.TagValue(TagID)
	if id == "" {
		id = l.nextDepID()
		parent.SetTag(TagID, id)
	}
	child.AddTag(TagParent, id)
	l.graph.AddEdge(pk, ck, id)

	if l.opts.AppendParentProjects {
		for _, p := range parent.Projects() {
			if !child.HasProject(p) {
				child.SetSourceText(child.Source() + " +" + p)
			}
		}
	}
	if l.opts.AppendParentContexts {
		for _, c := range parent.Contexts() {
			if !child.HasContext(c) {
				child.SetSourceText(child.Source() + " @" + c)
			}
		}
	}
	l.dirty = true
}

// nextDepID returns the lowest positive integer not used as an edge label
// or as an id:/p: value anywhere in the list.
func (l *List) nextDepID() string {
	used := make(map[string]bool)
	for _, e := range l.graph.Edges() {
		used[e.ID] = true
	}
	for _, t := range l.tasks {
		for _, v := range t.TagValues(TagID) {
			used[v] = true
		}
		for _, v := range t.TagValues(TagParent) {
			used[v] = true
		}
	}
	for n := 1; ; n++ {
		if id := strconv.Itoa(n); !used[id] {
			return id
		}
	}
}

// RemoveDependency undoes AddDependency: the child's p: tag and the edge
// go, and the parent's id: tag goes once it has no children left.
func (l *List) RemoveDependency(from, to int) {
	parent, child := l.Todo(from), l.Todo(to)
	if parent == nil || child == nil {
		return
	}
	id := parent.TagValue(TagID)
	if id == "" {
		return
	}
	pk, ck := l.keys[parent], l.keys[child]
	if !l.graph.HasEdge(pk, ck) && !child.HasTag(TagParent, id) {
		return
	}
	l.graph.RemoveEdge(pk, ck, true)
	child.RemoveTag(TagParent, id)
	if len(l.graph.OutgoingNeighbors(pk, false)) == 0 {
		parent.RemoveTag(TagID, id)
	}
	l.dirty = true
}

// Parents returns the tasks that task n depends on through p: tags, all
// ancestors unless onlyDirect.
func (l *List) Parents(n int, onlyDirect bool) []*Task {
	t := l.Todo(n)
	if t == nil {
		return nil
	}
	return l.tasksFor(l.graph.IncomingNeighbors(l.keys[t], !onlyDirect))
}

// Children returns the tasks tagged with task n's id, all descendants
// unless onlyDirect.
func (l *List) Children(n int, onlyDirect bool) []*Task {
	t := l.Todo(n)
	if t == nil {
		return nil
	}
	return l.tasksFor(l.graph.OutgoingNeighbors(l.keys[t], !onlyDirect))
}

// tasksFor maps graph keys back to tasks in list order, skipping keys
// that no longer resolve.
func (l *List) tasksFor(keys []int) []*Task {
	var result []*Task
	for _, k := range keys {
		if t, ok := l.byKey[k]; ok {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return l.Number(result[i]) < l.Number(result[j])
	})
	return result
}

// CleanDependencies transitively reduces the graph, then strips id: tags
// that no longer label an edge and p: tags whose edge is gone.
func (l *List) CleanDependencies() {
	l.graph.TransitivelyReduce()

	for _, t := range l.tasks {
		for _, id := range t.TagValues(TagID) {
			if !l.graph.HasEdgeID(id) {
				t.RemoveTag(TagID, id)
				l.dirty = true
			}
		}
	}
	for _, t := range l.tasks {
		for _, id := range t.TagValues(TagParent) {
			parent := l.TodoByDepID(id)
			if parent == nil || !l.graph.HasEdge(l.keys[parent], l.keys[t]) {
				t.RemoveTag(TagParent, id)
				l.dirty = true
			}
		}
	}
}

// LinkRelationTags turns relation tags on task n into dependencies and
// removes them: after:N makes N a child of n, before:N and partof:N make n
// a child of N, parents-of:N attaches n to N's parents and children-of:N
// adopts N's children.
func (l *List) LinkRelationTags(n int) {
	t := l.Todo(n)
	if t == nil {
		return
	}
	for _, rel := range []string{"after", "before", "partof", "parents-of", "children-of"} {
		for _, value := range t.TagValues(rel) {
			if _, other, err := l.Resolve(value); err == nil {
				switch rel {
				case "after":
					l.AddDependency(n, other)
				case "before", "partof":
					l.AddDependency(other, n)
				case "parents-of":
					for _, p := range l.Parents(other, true) {
						l.AddDependency(l.Number(p), n)
					}
				case "children-of":
					for _, c := range l.Children(other, true) {
						l.AddDependency(n, l.Number(c))
					}
				}
			}
			t.RemoveTag(rel, value)
			l.dirty = true
		}
	}
}

// DependencyGraph returns a copy of the graph keyed by current task
// numbers.
func (l *List) DependencyGraph() *graph.Graph[int] {
	g := graph.New[int]()
	for _, e := range l.graph.Edges() {
		from, to := l.Number(l.byKey[e.From]), l.Number(l.byKey[e.To])
		if from > 0 && to > 0 {
			g.AddEdge(from, to, e.ID)
		}
	}
	return g
}

// Projects returns every +project in the list, sorted.
func (l *List) Projects() []string {
	return l.collect(func(t *Task) []string { return t.fields.Projects })
}

// Contexts returns every @context in the list, sorted.
func (l *List) Contexts() []string {
	return l.collect(func(t *Task) []string { return t.fields.Contexts })
}

func (l *List) collect(fn func(*Task) []string) []string {
	seen := make(map[string]struct{})
	for _, t := range l.tasks {
		for _, v := range fn(t) {
			seen[v] = struct{}{}
		}
	}
	result := make([]string, 0, len(seen))
	for v := range seen {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

// Lines returns the source of every task in order.
func (l *List) Lines() []string {
	lines := make([]string, len(l.tasks))
	for i, t := range l.tasks {
		lines[i] = t.Source()
	}
	return lines
}

// String serializes the list as newline-separated task lines.
func (l *List) String() string {
	return strings.Join(l.Lines(), "\n")
}
