// Package datemath holds the calendar arithmetic used by the recurrence
// engine. Every helper works in the location of the value it receives.
package datemath

import "time"

// Unit is a calendar stepping unit.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

// AddUnits moves t forward by n units. Month and year steps follow
// time.AddDate normalization, so Jan 31 + 1 month lands in March.
func AddUnits(t time.Time, unit Unit, n int) time.Time {
	switch unit {
	case Week:
		return t.AddDate(0, 0, 7*n)
	case Month:
		return t.AddDate(0, n, 0)
	case Year:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// StartOfDay truncates t to midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday starting t's week.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// DaysBetween counts calendar days from a to b. DST transitions do not
// affect the result.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// WeeksBetween counts whole weeks between the Monday-aligned weeks of a and b.
func WeeksBetween(a, b time.Time) int {
	return floorDiv(DaysBetween(StartOfWeek(a), StartOfWeek(b)), 7)
}

// MonthsBetween counts calendar months from a to b, ignoring the day.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// YearsBetween counts calendar years from a to b.
func YearsBetween(a, b time.Time) int {
	return b.Year() - a.Year()
}

// Between returns the elapsed number of units from a to b.
func Between(a, b time.Time, unit Unit) int {
	switch unit {
	case Week:
		return WeeksBetween(a, b)
	case Month:
		return MonthsBetween(a, b)
	case Year:
		return YearsBetween(a, b)
	default:
		return DaysBetween(a, b)
	}
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayKeyOf(a) == DayKeyOf(b)
}

// WithClock returns date's calendar day at clock's wall-clock time, in
// clock's location.
func WithClock(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), clock.Location())
}

// DayKey identifies a calendar day independent of clock time.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// DayKeyOf extracts the calendar day of t.
func DayKeyOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

func (k DayKey) String() string {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod returns a non-negative remainder.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
