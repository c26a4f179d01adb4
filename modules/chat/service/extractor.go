package service

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"classtime/core/constants"
	"classtime/core/utils"
	"classtime/modules/chat/entity"
)

// Keywords match as word prefixes ("algebraic" is math). Abbreviations must be
// whole words so "little" is not literature.
type subjectKeywords struct {
	subject       string
	keywords      []string
	abbreviations []string
}

var subjectVocabulary = []subjectKeywords{
	{"math", []string{"math", "mathematics", "algebra", "geometry"}, nil},
	{"english", []string{"english"}, []string{"eng"}},
	{"physics", []string{"physics", "phys"}, nil},
	{"chemistry", []string{"chemistry", "chem"}, nil},
	{"biology", []string{"biology", "bio"}, nil},
	{"history", []string{"history", "hist"}, nil},
	{"programming", []string{"programming", "code", "coding", "python", "java", "javascript"}, nil},
	{"literature", []string{"literature"}, []string{"lit"}},
	{"russian", []string{"russian"}, []string{"rus"}},
	{"spanish", []string{"spanish"}, []string{"spa"}},
	{"french", []string{"french"}, []string{"fra"}},
	{"german", []string{"german"}, []string{"ger"}},
}

var subjectPatterns = compileSubjectPatterns()

func compileSubjectPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(subjectVocabulary))
	for i, s := range subjectVocabulary {
		alternatives := append([]string{}, s.keywords...)
		for _, abbr := range s.abbreviations {
			alternatives = append(alternatives, abbr+`\b`)
		}
		patterns[i] = regexp.MustCompile(`\b(?:` + strings.Join(alternatives, "|") + `)`)
	}
	return patterns
}

// Capitalised words that are never tutor names.
var nameStopWords = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
	"January": true, "February": true, "March": true, "April": true, "May": true, "June": true,
	"July": true, "August": true, "September": true, "October": true, "November": true, "December": true,
	"Find": true, "Search": true, "Show": true, "Book": true, "Cancel": true, "View": true,
	"Display": true, "Looking": true, "Need": true, "Want": true,
	"Hi": true, "Hello": true, "Hey": true, "Please": true, "Thanks": true,
	"Can": true, "Could": true, "Would": true, "What": true, "When": true, "Which": true, "How": true,
	"My": true, "The": true, "Today": true, "Tomorrow": true, "Next": true,
}

var (
	capitalisedWord = regexp.MustCompile(`\b[A-Z][a-z]{1,14}\b`)

	isoDatePattern     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	dottedDatePattern  = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`)
	slashedDatePattern = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)

	weekdayPattern = regexp.MustCompile(`\b(monday|mon|tuesday|tue|wednesday|wed|thursday|thu|friday|fri|saturday|sat|sunday|sun)\b`)

	clockPattern  = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)
	atHourPattern = regexp.MustCompile(`\bat\s+(\d{1,2})\s*(am|pm)?\b`)
)

var weekdayNumbers = map[string]int{
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
	"sunday": 7, "sun": 7,
}

// Checked in order so "day after tomorrow" wins over "tomorrow".
var relativeDates = []struct {
	pattern *regexp.Regexp
	days    int
}{
	{regexp.MustCompile(`\bday after tomorrow\b`), 2},
	{regexp.MustCompile(`\btomorrow\b`), 1},
	{regexp.MustCompile(`\byesterday\b`), -1},
	{regexp.MustCompile(`\btoday\b`), 0},
}

var nextWeekPattern = regexp.MustCompile(`\bnext week\b`)

var partsOfDay = []struct {
	pattern *regexp.Regexp
	clock   string
}{
	{regexp.MustCompile(`\bmorning\b`), "09:00"},
	{regexp.MustCompile(`\bafternoon\b`), "14:00"},
	{regexp.MustCompile(`\bevening\b`), "18:00"},
	{regexp.MustCompile(`\bnight\b`), "20:00"},
}

// Extractor pulls structured entities out of a free-text chat message.
type Extractor struct {
	loc *time.Location
}

func NewExtractor(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.UTC
	}
	return &Extractor{loc: loc}
}

// Extract returns only the entities that were found, plus original_text.
func (x *Extractor) Extract(text string, now time.Time) map[string]string {
	entities := map[string]string{entity.EntityOriginalText: text}

	if v := x.Subject(text); v != "" {
		entities[entity.EntitySubject] = v
	}
	if v := x.TutorName(text); v != "" {
		entities[entity.EntityTutorName] = v
	}
	if v := x.Date(text, now); v != "" {
		entities[entity.EntityDate] = v
	}
	if v := x.Time(text); v != "" {
		entities[entity.EntityTime] = v
	}
	if v := x.Action(text); v != "" {
		entities[entity.EntityAction] = v
	}
	return entities
}

func (x *Extractor) Subject(text string) string {
	lower := strings.ToLower(text)
	for i, pattern := range subjectPatterns {
		if pattern.MatchString(lower) {
			return subjectVocabulary[i].subject
		}
	}
	return ""
}

func isSubjectWord(word string) bool {
	lower := strings.ToLower(word)
	for _, s := range subjectVocabulary {
		if slices.Contains(s.keywords, lower) || slices.Contains(s.abbreviations, lower) {
			return true
		}
	}
	return false
}

// TutorName returns the first capitalised word, joined with a directly
// following capitalised word when there is one.
func (x *Extractor) TutorName(text string) string {
	idx := capitalisedWord.FindAllStringIndex(text, -1)
	usable := func(i int) bool {
		word := text[idx[i][0]:idx[i][1]]
		return !nameStopWords[word] && !isSubjectWord(word)
	}

	for i := range idx {
		if !usable(i) {
			continue
		}
		name := text[idx[i][0]:idx[i][1]]
		if i+1 < len(idx) && usable(i+1) && strings.TrimSpace(text[idx[i][1]:idx[i+1][0]]) == "" {
			name += " " + text[idx[i+1][0]:idx[i+1][1]]
		}
		return name
	}
	return ""
}

func validDate(year, month, day string, loc *time.Location) (string, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return t.Format(constants.DateLayout), true
}

// Date resolves an explicit or relative date to YYYY-MM-DD.
func (x *Extractor) Date(text string, now time.Time) string {
	for _, m := range isoDatePattern.FindAllStringSubmatch(text, -1) {
		if v, ok := validDate(m[1], m[2], m[3], x.loc); ok {
			return v
		}
	}
	for _, pattern := range []*regexp.Regexp{dottedDatePattern, slashedDatePattern} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if v, ok := validDate(m[3], m[2], m[1], x.loc); ok {
				return v
			}
		}
	}

	today := now.In(x.loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, x.loc)
	lower := strings.ToLower(text)

	for _, rel := range relativeDates {
		if rel.pattern.MatchString(lower) {
			return today.AddDate(0, 0, rel.days).Format(constants.DateLayout)
		}
	}

	if m := weekdayPattern.FindStringSubmatch(lower); m != nil {
		ahead := (weekdayNumbers[m[1]] - utils.ISOWeekday(today) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return today.AddDate(0, 0, ahead).Format(constants.DateLayout)
	}

	if nextWeekPattern.MatchString(lower) {
		return today.AddDate(0, 0, 7).Format(constants.DateLayout)
	}
	return ""
}

// Time returns HH:MM from a clock time, "at N[am|pm]" or a part of the day.
func (x *Extractor) Time(text string) string {
	lower := strings.ToLower(text)
	for _, pattern := range []*regexp.Regexp{isoDatePattern, dottedDatePattern, slashedDatePattern} {
		lower = pattern.ReplaceAllString(lower, " ")
	}

	for _, m := range clockPattern.FindAllStringSubmatch(lower, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}

	if m := atHourPattern.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		switch {
		case m[2] == "pm" && hour < 12:
			hour += 12
		case m[2] == "am" && hour == 12:
			hour = 0
		}
		if hour < 24 {
			return fmt.Sprintf("%02d:00", hour)
		}
	}

	for _, part := range partsOfDay {
		if part.pattern.MatchString(lower) {
			return part.clock
		}
	}
	return ""
}

// Action detects the verb of the request. Cancel words are checked first so
// "cancel my appointment" is not read as a booking.
func (x *Extractor) Action(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "cancel", "remove", "delete", "abort"):
		return "cancel"
	case containsAny(lower, "book", "reserve", "schedule", "appoint"):
		return "book"
	case containsAny(lower, "show", "view", "display", "list"):
		return "view"
	}
	return ""
}
