package printer

import (
	"time"

	"github.com/nibzard/tdtxt/internal/todo"
	"github.com/nibzard/tdtxt/internal/view"
)

// Record is the structured form of a task used by the JSON and YAML
// printers.
type Record struct {
	Number         int         `json:"number" yaml:"number"`
	Text           string      `json:"text" yaml:"text"`
	Source         string      `json:"source" yaml:"source"`
	Priority       string      `json:"priority,omitempty" yaml:"priority,omitempty"`
	Completed      bool        `json:"completed" yaml:"completed"`
	CompletionDate string      `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
	CreationDate   string      `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	StartDate      string      `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	DueDate        string      `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Importance     int         `json:"importance" yaml:"importance"`
	Projects       []string    `json:"projects,omitempty" yaml:"projects,omitempty"`
	Contexts       []string    `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Tags           []TagRecord `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parents        []int       `json:"parents,omitempty" yaml:"parents,omitempty"`
	Children       []int       `json:"children,omitempty" yaml:"children,omitempty"`
}

// TagRecord is one key:value tag, kept in line order.
type TagRecord struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Records converts the tasks of v, in view order.
func Records(v *view.View) []Record {
	records := make([]Record, 0, v.Len())
	for _, t := range v.Tasks() {
		records = append(records, NewRecord(v.List(), t))
	}
	return records
}

// NewRecord describes t, including its direct dependency neighbours in l.
func NewRecord(l *todo.List, t *todo.Task) Record {
	n := l.Number(t)
	r := Record{
		Number:     n,
		Text:       t.Text(),
		Source:     t.Source(),
		Completed:  t.Completed(),
		Importance: t.Importance(false),
		Projects:   t.Projects(),
		Contexts:   t.Contexts(),
		StartDate:  formatDate(t.StartDate()),
		DueDate:    formatDate(t.DueDate()),
	}
	if p := t.Priority(); p != 0 {
		r.Priority = string(p)
	}
	r.CompletionDate = formatDate(t.CompletionDate())
	r.CreationDate = formatDate(t.CreationDate())
	for _, tag := range t.Tags() {
		r.Tags = append(r.Tags, TagRecord{Key: tag.Key, Value: tag.Value})
	}
	r.Parents = numbers(l, l.Parents(n, true))
	r.Children = numbers(l, l.Children(n, true))
	return r
}

func numbers(l *todo.List, tasks []*todo.Task) []int {
	var result []int
	for _, t := range tasks {
		result = append(result, l.Number(t))
	}
	return result
}

func formatDate(d time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return d.Format(todo.DateLayout)
}
