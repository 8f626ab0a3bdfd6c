package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The (month, year) scope of every commission calculation
// =============================================================================

// Period is a calendar month. Aggregation and tiering are ALWAYS scoped to a
// period; a record belongs to the period if its timestamp, observed in the
// business location, falls inside the month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewPeriod builds a period without validating it.
func NewPeriod(year int, month time.Month) Period {
	return Period{Month: int(month), Year: year}
}

// PeriodOf returns the period containing t in loc.
func PeriodOf(t time.Time, loc *time.Location) Period {
	lt := t.In(locationOrUTC(loc))
	return Period{Month: int(lt.Month()), Year: lt.Year()}
}

// Validate rejects months outside 1-12 and non-positive years.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 || p.Year <= 0 {
		return &PeriodError{Month: p.Month, Year: p.Year}
	}
	return nil
}

// Start returns the first instant of the period in loc.
func (p Period) Start(loc *time.Location) time.Time {
	return NewDate(p.Year, time.Month(p.Month), 1, loc)
}

// End returns the last calendar day of the period (midnight) in loc.
func (p Period) End(loc *time.Location) time.Time {
	return p.Start(loc).AddDate(0, 1, -1)
}

// Next returns the first instant after the period, used as an exclusive bound.
func (p Period) Next(loc *time.Location) time.Time {
	return p.Start(loc).AddDate(0, 1, 0)
}

// Contains returns true if t, observed in loc, falls in the period.
func (p Period) Contains(t time.Time, loc *time.Location) bool {
	lt := t.In(locationOrUTC(loc))
	return lt.Year() == p.Year && int(lt.Month()) == p.Month
}

// Before reports whether p is an earlier month than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// String returns "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period{Month: int(t.Month()), Year: t.Year()}, nil
}
