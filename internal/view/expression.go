package view

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"

	"github.com/nibzard/tdtxt/internal/todo"
)

var (
	ordinalPattern  = regexp.MustCompile(`^([^:\s]+):(<=|>=|<|>|=|!)?(\S+)$`)
	priorityPattern = regexp.MustCompile(`^\((<=|>=|<|>|=|!)?([A-Z])\)$`)
)

// OrdinalTag parses "key:[op]value" with op one of < <= = ! >= > (default
// =) and matches tasks whose key tag compares accordingly. Values are
// compared as dates when both sides are ISO or relative dates, as
// integers when both are numbers, and as strings otherwise. Tasks without
// the tag never match.
func OrdinalTag(expr string) (Filter, bool) {
	m := ordinalPattern.FindStringSubmatch(expr)
	if m == nil || strings.HasPrefix(m[3], "//") {
		return nil, false
	}
	key, op, want := m[1], m[2], m[3]
	return MatchFunc(func(t *todo.Task) bool {
		got := t.TagValue(key)
		if got == "" {
			return false
		}
		return compareOp(op, compareValues(got, want))
	}), true
}

func compareValues(got, want string) int {
	if a, ok := todo.ParseDateOrRelative(got); ok {
		if b, ok := todo.ParseDateOrRelative(want); ok {
			return a.Compare(b)
		}
	}
	if a, err := strconv.Atoi(got); err == nil {
		if b, err := strconv.Atoi(want); err == nil {
			return cmp.Compare(a, b)
		}
	}
	return strings.Compare(got, want)
}

func compareOp(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "!":
		return c != 0
	default:
		return c == 0
	}
}

// Priority parses "(X)", "(<X)", "(>=X)" and friends. Comparisons are by
// importance: (>B) matches A, (<B) matches C to Z and tasks without a
// priority.
func Priority(expr string) (Filter, bool) {
	m := priorityPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	op, want := m[1], priorityRank(m[2][0])
	return MatchFunc(func(t *todo.Task) bool {
		return compareOp(op, cmp.Compare(priorityRank(t.Priority()), want))
	}), true
}

// priorityRank orders priorities by importance: A is 26, Z is 1 and no
// priority is 0.
func priorityRank(p byte) int {
	if !todo.IsValidPriority(p) {
		return 0
	}
	return int('Z'-p) + 1
}

// ParseExpressions turns command-line words into filters. A leading "-"
// negates a word. +name and @name select projects and contexts; ordinal
// tag and priority expressions are recognised; any other word is a grep.
func ParseExpressions(args []string) []Filter {
	var result []Filter
	for _, arg := range args {
		if arg == "" {
			continue
		}
		negated := len(arg) > 1 && arg[0] == '-'
		if negated {
			arg = arg[1:]
		}

		var f Filter
		switch {
		case len(arg) > 1 && arg[0] == '+' && !strings.Contains(arg, ":"):
			f = Project(arg[1:])
		case len(arg) > 1 && arg[0] == '@' && !strings.Contains(arg, ":"):
			f = Context(arg[1:])
		}
		if f == nil {
			if pf, ok := Priority(arg); ok {
				f = pf
			} else if of, ok := OrdinalTag(arg); ok {
				f = of
			} else {
				f = Grep(arg, nil)
			}
		}

		if negated {
			f = Not(f)
		}
		result = append(result, f)
	}
	return result
}
