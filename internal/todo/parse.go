package todo

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is the todo.txt date format.
const DateLayout = "2006-01-02"

// Tag is a single key:value pair found in a task line.
type Tag struct {
	Key   string
	Value string
}

// Fields holds the structured parts of a task line.
type Fields struct {
	Completed      bool
	CompletionDate time.Time
	CreationDate   time.Time
	Priority       byte // 0 when the line has no priority
	Text           string
	Projects       []string
	Contexts       []string
	Tags           []Tag
}

// Parse splits a todo.txt line into its fields. It never fails: fragments
// that do not fit a field stay in the text.
func Parse(line string) Fields {
	var f Fields

	h := splitHead(line)
	f.Completed = h.completion != ""
	f.CompletionDate = parseDate(h.completion)
	f.CreationDate = parseDate(h.created)
	if h.priority != "" {
		f.Priority = h.priority[0]
	}

	var text []string
	for _, word := range strings.Fields(h.rest) {
		if name, ok := marker(word, '+'); ok {
			f.Projects = appendUnique(f.Projects, name)
		}
		if name, ok := marker(word, '@'); ok {
			f.Contexts = appendUnique(f.Contexts, name)
		}
		if key, value, ok := parseTag(word); ok {
			f.Tags = append(f.Tags, Tag{Key: key, Value: value})
			continue
		}
		text = append(text, word)
	}
	f.Text = strings.Join(text, " ")

	return f
}

// head is a task line split into its positional markers and the free-form
// remainder. Rendering a head with String reproduces the line it came from.
type head struct {
	completion string // completion date token; non-empty means completed
	priority   string // single letter without parentheses
	created    string // creation date token
	rest       string
}

func splitHead(line string) head {
	var h head
	rest := line

	if strings.HasPrefix(rest, "x ") {
		if date, r, ok := cutDate(rest[2:]); ok {
			h.completion = date
			rest = r
			if date, r, ok := cutDate(rest); ok {
				h.created = date
				rest = r
			}
			h.rest = rest
			return h
		}
	}

	if p, r, ok := cutPriority(rest); ok {
		h.priority = p
		rest = r
	}
	if date, r, ok := cutDate(rest); ok {
		h.created = date
		rest = r
	}
	h.rest = rest
	return h
}

func (h head) String() string {
	var parts []string
	if h.completion != "" {
		parts = append(parts, "x "+h.completion)
	}
	if h.priority != "" {
		parts = append(parts, "("+h.priority+")")
	}
	if h.created != "" {
		parts = append(parts, h.created)
	}
	if h.rest != "" {
		parts = append(parts, h.rest)
	}
	return strings.Join(parts, " ")
}

// cutPriority consumes a leading "(X)" marker and the single space after it.
func cutPriority(s string) (string, string, bool) {
	if len(s) < 3 || s[0] != '(' || s[2] != ')' || !IsValidPriority(s[1]) {
		return "", s, false
	}
	if _, rest, ok := cutSeparator(s, 3); ok {
		return s[1:2], rest, true
	}
	return "", s, false
}

// cutDate consumes a leading YYYY-MM-DD token and the single space after it.
func cutDate(s string) (string, string, bool) {
	if len(s) < len(DateLayout) || !isDateShape(s[:len(DateLayout)]) {
		return "", s, false
	}
	return cutSeparator(s, len(DateLayout))
}

func cutSeparator(s string, n int) (string, string, bool) {
	switch {
	case len(s) == n:
		return s, "", true
	case s[n] == ' ':
		return s[:n], s[n+1:], true
	default:
		return "", s, false
	}
}

func isDateShape(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			if s[i] != '-' {
				return false
			}
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseDate returns the zero time for empty or calendar-invalid dates.
func parseDate(s string) time.Time {
	if !isDateShape(s) {
		return time.Time{}
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// IsValidPriority reports whether p is an uppercase letter A-Z.
func IsValidPriority(p byte) bool {
	return p >= 'A' && p <= 'Z'
}

// marker extracts the name of a +project or @context word: the longest run
// after the sigil that ends in a word character.
func marker(word string, sigil byte) (string, bool) {
	if len(word) < 2 || word[0] != sigil {
		return "", false
	}
	name := word[1:]
	end := -1
	for i, r := range name {
		if isWordRune(r) {
			end = i + utf8.RuneLen(r)
		}
	}
	if end < 0 {
		return "", false
	}
	return name[:end], true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseTag recognizes key:value words. Values starting with "//" belong to
// URLs and are left in the text.
func parseTag(word string) (string, string, bool) {
	key, value, ok := strings.Cut(word, ":")
	if !ok || key == "" || value == "" || strings.HasPrefix(value, "//") {
		return "", "", false
	}
	return key, value, true
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
