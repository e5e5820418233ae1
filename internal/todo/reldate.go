package todo

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	relativePattern = regexp.MustCompile(`^([+-]?[0-9]+)([dwmyb])$`)

	weekdayPatterns = []struct {
		re  *regexp.Regexp
		day time.Weekday
	}{
		{regexp.MustCompile(`^mo(n(day)?)?$`), time.Monday},
		{regexp.MustCompile(`^tu(e(sday)?)?$`), time.Tuesday},
		{regexp.MustCompile(`^we(d(nesday)?)?$`), time.Wednesday},
		{regexp.MustCompile(`^th(u(rsday)?)?$`), time.Thursday},
		{regexp.MustCompile(`^fr(i(day)?)?$`), time.Friday},
		{regexp.MustCompile(`^sa(t(urday)?)?$`), time.Saturday},
		{regexp.MustCompile(`^su(n(day)?)?$`), time.Sunday},
	}

	todayPattern     = regexp.MustCompile(`^tod(ay)?$`)
	tomorrowPattern  = regexp.MustCompile(`^tom(orrow)?$`)
	yesterdayPattern = regexp.MustCompile(`^yes(terday)?$`)
)

// RelativeDate resolves a relative date expression against offset.
//
// Supported forms are "<n><unit>" with unit d (days), w (weeks), m (months),
// y (years) or b (business days), optionally signed; "today", "tomorrow"
// and "yesterday"; and weekday names, which resolve to the next such day
// after today. The named forms ignore offset.
func RelativeDate(expr string, offset time.Time) (time.Time, bool) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	offset = truncateDay(offset)

	if m := relativePattern.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		return shiftDate(offset, n, m[2][0]), true
	}

	today := Today()
	switch {
	case todayPattern.MatchString(expr):
		return today, true
	case tomorrowPattern.MatchString(expr):
		return today.AddDate(0, 0, 1), true
	case yesterdayPattern.MatchString(expr):
		return today.AddDate(0, 0, -1), true
	}

	for _, wp := range weekdayPatterns {
		if wp.re.MatchString(expr) {
			shift := 7 - (int(today.Weekday())-int(wp.day)+7)%7
			return today.AddDate(0, 0, shift), true
		}
	}
	return time.Time{}, false
}

func shiftDate(d time.Time, n int, unit byte) time.Time {
	switch unit {
	case 'd':
		return d.AddDate(0, 0, n)
	case 'w':
		return d.AddDate(0, 0, 7*n)
	case 'm':
		return addMonths(d, n)
	case 'y':
		return addMonths(d, 12*n)
	case 'b':
		return addBusinessDays(d, n)
	}
	return d
}

// addMonths moves d by n months, clamping the day to the target month's
// length (Jan 31 + 1m = Feb 28/29).
func addMonths(d time.Time, n int) time.Time {
	month := int(d.Month()) - 1 + n
	year := d.Year() + month/12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
}

func addBusinessDays(d time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		n--
	}
	return d
}

// ParseDateOrRelative accepts an ISO date or a relative expression
// resolved against today.
func ParseDateOrRelative(s string) (time.Time, bool) {
	if d := parseDate(s); !d.IsZero() {
		return d, true
	}
	return RelativeDate(s, Today())
}

// ResolveRelativeDates rewrites relative start and due values such as
// due:tomorrow into ISO dates.
func (t *Task) ResolveRelativeDates() {
	for _, key := range []string{t.tags.Start, t.tags.Due} {
		value := t.TagValue(key)
		if value == "" || !parseDate(value).IsZero() {
			continue
		}
		if d, ok := RelativeDate(value, Today()); ok {
			t.SetTag(key, d.Format(DateLayout))
		}
	}
}
