package todo

import (
	"strings"
	"time"
	"unicode"
)

// Task is one line of a todo.txt file. The source text is authoritative:
// every setter rewrites it and re-derives the structured fields from it.
type Task struct {
	src    string
	fields Fields
	tags   TagConfig
}

// NewTask parses src into a task using the default tag names.
func NewTask(src string) *Task {
	return NewTaskWithTags(src, DefaultTagConfig())
}

// NewTaskWithTags parses src into a task that resolves start, due and
// other special tags through cfg.
func NewTaskWithTags(src string, cfg TagConfig) *Task {
	t := &Task{tags: cfg.withDefaults()}
	t.SetSourceText(src)
	return t
}

// Source returns the line exactly as it will be written back.
func (t *Task) Source() string { return t.src }

// Text returns the source without priority, dates and tags.
func (t *Task) Text() string { return t.fields.Text }

// Priority returns the priority letter, or 0 when there is none.
func (t *Task) Priority() byte { return t.fields.Priority }

// Completed reports whether the task is marked done.
func (t *Task) Completed() bool { return t.fields.Completed }

// CompletionDate returns the completion date and whether it is set.
func (t *Task) CompletionDate() (time.Time, bool) {
	return t.fields.CompletionDate, !t.fields.CompletionDate.IsZero()
}

// CreationDate returns the creation date and whether it is set.
func (t *Task) CreationDate() (time.Time, bool) {
	return t.fields.CreationDate, !t.fields.CreationDate.IsZero()
}

// Projects returns the +project names in order of appearance.
func (t *Task) Projects() []string { return append([]string(nil), t.fields.Projects...) }

// Contexts returns the @context names in order of appearance.
func (t *Task) Contexts() []string { return append([]string(nil), t.fields.Contexts...) }

// Tags returns all key:value tags in order of appearance.
func (t *Task) Tags() []Tag { return append([]Tag(nil), t.fields.Tags...) }

// TagConfig returns the tag names the task resolves dates through.
func (t *Task) TagConfig() TagConfig { return t.tags }

// HasProject reports whether the task mentions +name.
func (t *Task) HasProject(name string) bool { return contains(t.fields.Projects, name) }

// HasContext reports whether the task mentions @name.
func (t *Task) HasContext(name string) bool { return contains(t.fields.Contexts, name) }

// TagValue returns the first value of key, or def (if given) when absent.
func (t *Task) TagValue(key string, def ...string) string {
	for _, tag := range t.fields.Tags {
		if tag.Key == key {
			return tag.Value
		}
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// TagValues returns every value of key in order of appearance.
func (t *Task) TagValues(key string) []string {
	var values []string
	for _, tag := range t.fields.Tags {
		if tag.Key == key {
			values = append(values, tag.Value)
		}
	}
	return values
}

// HasTag reports whether the task has key, and key:value when a non-empty
// value is given.
func (t *Task) HasTag(key string, value ...string) bool {
	want := ""
	if len(value) > 0 {
		want = value[0]
	}
	for _, tag := range t.fields.Tags {
		if tag.Key == key && (want == "" || tag.Value == want) {
			return true
		}
	}
	return false
}

// TagOption adjusts SetTag.
type TagOption func(*tagOptions)

type tagOptions struct {
	forceAdd bool
	oldValue string
}

// ForceAdd appends a new key:value even when key already exists.
func ForceAdd() TagOption {
	return func(o *tagOptions) { o.forceAdd = true }
}

// OldValue selects which existing key:value SetTag replaces.
func OldValue(v string) TagOption {
	return func(o *tagOptions) { o.oldValue = v }
}

// SetTag sets key to value. The first occurrence of the existing value is
// rewritten in place; otherwise " key:value" is appended. An empty value
// removes the tag. Keys or values that would not parse back as a tag are
// ignored.
func (t *Task) SetTag(key, value string, opts ...TagOption) {
	var o tagOptions
	for _, opt := range opts {
		opt(&o)
	}
	if value == "" {
		t.RemoveTag(key, o.oldValue)
		return
	}
	if !isValidTag(key, value) {
		return
	}

	old := o.oldValue
	if old == "" {
		old = t.TagValue(key)
	}

	h := splitHead(t.src)
	words := splitWords(h.rest)
	if !o.forceAdd && old != "" {
		for i := range words {
			if words[i].text == key+":"+old {
				words[i].text = key + ":" + value
				h.rest = joinWords(words)
				t.update(h)
				return
			}
		}
	}
	h.rest = appendWord(h.rest, key+":"+value)
	t.update(h)
}

// AddTag appends key:value even if key is already present.
func (t *Task) AddTag(key, value string) {
	t.SetTag(key, value, ForceAdd())
}

// RemoveTag removes every key tag, or only key:value when value is given.
func (t *Task) RemoveTag(key string, value ...string) {
	want := ""
	if len(value) > 0 {
		want = value[0]
	}
	h := splitHead(t.src)
	words := splitWords(h.rest)
	var kept []word
	for _, w := range words {
		if k, v, ok := parseTag(w.text); ok && k == key && (want == "" || v == want) {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == len(words) {
		return
	}
	// The first surviving word takes over the leading spacing of the line.
	if len(kept) > 0 {
		kept[0].pre = words[0].pre
	}
	h.rest = joinWords(kept)
	t.update(h)
}

// SetPriority sets the priority letter; 0 removes it. Completed tasks and
// letters outside A-Z are left alone.
func (t *Task) SetPriority(p byte) {
	if t.Completed() || (p != 0 && !IsValidPriority(p)) {
		return
	}
	h := splitHead(t.src)
	if p == 0 {
		h.priority = ""
	} else {
		h.priority = string(p)
	}
	t.update(h)
}

// SetCompleted marks the task done on date, dropping its priority. It does
// nothing if the task is already completed.
func (t *Task) SetCompleted(date time.Time) {
	if t.Completed() {
		return
	}
	h := splitHead(t.src)
	h.priority = ""
	h.completion = date.Format(DateLayout)
	t.update(h)
}

// SetCreationDate writes the creation date after any completion or
// priority marker. A zero date removes it.
func (t *Task) SetCreationDate(date time.Time) {
	h := splitHead(t.src)
	if date.IsZero() {
		h.created = ""
	} else {
		h.created = date.Format(DateLayout)
	}
	t.update(h)
}

// SetSourceText replaces the whole line and parses it again.
func (t *Task) SetSourceText(text string) {
	t.src = strings.TrimSpace(text)
	t.fields = Parse(t.src)
}

// reopen drops the completion marker. Used when cloning finished tasks.
func (t *Task) reopen() {
	h := splitHead(t.src)
	h.completion = ""
	t.update(h)
}

// update renders h as the new source. A rewrite that would turn words of
// the text into a completion or creation date is dropped, leaving the task
// unchanged.
func (t *Task) update(h head) {
	src := h.String()
	if got := splitHead(src); got.completion != h.completion || got.created != h.created {
		return
	}
	t.src = src
	t.fields = Parse(src)
}

func isValidTag(key, value string) bool {
	if strings.ContainsFunc(key+value, unicode.IsSpace) || strings.Contains(key, ":") {
		return false
	}
	_, _, ok := parseTag(key + ":" + value)
	return ok
}

// word is a whitespace-delimited token together with the whitespace that
// precedes it, so rewrites keep the spacing of untouched text.
type word struct {
	pre  string
	text string
}

func splitWords(s string) []word {
	var words []word
	for len(s) > 0 {
		start := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
		if start < 0 {
			break
		}
		end := strings.IndexFunc(s[start:], unicode.IsSpace)
		if end < 0 {
			end = len(s)
		} else {
			end += start
		}
		words = append(words, word{pre: s[:start], text: s[start:end]})
		s = s[end:]
	}
	return words
}

func joinWords(words []word) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w.pre)
		b.WriteString(w.text)
	}
	return b.String()
}

func appendWord(s, w string) string {
	if strings.TrimSpace(s) == "" {
		return w
	}
	return s + " " + w
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
