package utils

import (
	"regexp"
	"strings"
	"time"

	"classtime/core/constants"
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate accepts YYYY-MM-DD only.
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	if !dateFormat.MatchString(value) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(constants.DateLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseClock accepts HH:MM or HH:MM:SS and returns the HH:MM:SS form.
func ParseClock(value string) (string, bool) {
	value = strings.TrimSpace(value)
	layouts := []string{constants.TimeLayout, "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(constants.TimeLayout), true
		}
	}
	return "", false
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// StartOfWeek returns midnight of the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, 1-ISOWeekday(day))
}

func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(constants.DateLayout)
}

// SplitFullName splits a display name on the first whitespace run.
func SplitFullName(full string) (name, surname string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// JoinName renders "Name Surname", dropping an empty part.
func JoinName(name, surname string) string {
	return strings.TrimSpace(name + " " + surname)
}
