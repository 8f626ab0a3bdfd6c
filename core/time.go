package core

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// CALENDAR DATES - Day-granularity helpers in a business location
// =============================================================================

// Date truncates t to midnight of its calendar day in loc.
func Date(t time.Time, loc *time.Location) time.Time {
	lt := t.In(locationOrUTC(loc))
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
}

// NewDate builds a midnight date in loc.
func NewDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, locationOrUTC(loc))
}

// WeekStart returns the Monday (ISO week start) of the week containing t,
// as a midnight date in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	d := Date(t, loc)
	// time.Weekday has Sunday = 0; ISO weeks start on Monday.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// SameWeek reports whether a and b fall in the same ISO week in loc.
func SameWeek(a, b time.Time, loc *time.Location) bool {
	return WeekStart(a, loc).Equal(WeekStart(b, loc))
}

// WeekdayIn returns the weekday of t observed in loc.
func WeekdayIn(t time.Time, loc *time.Location) time.Weekday {
	return t.In(locationOrUTC(loc)).Weekday()
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// =============================================================================
// WEEKDAY PARSING - Assigned days travel as English names ("Monday")
// =============================================================================

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses an English weekday name, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	return wd, nil
}

// ParseOptionalWeekday returns nil for an empty string.
func ParseOptionalWeekday(s string) (*time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	wd, err := ParseWeekday(s)
	if err != nil {
		return nil, err
	}
	return &wd, nil
}

// LoadLocation resolves an IANA zone name; empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
