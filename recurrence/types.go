package recurrence

import (
	"time"

	"github.com/cyp0633/calrecur/internal/datemath"
)

// Frequency is the base period of a recurrence rule
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
	// Custom is reserved; the engine does not expand it.
	Custom Frequency = "CUSTOM"
)

// IsSupported reports whether the engine can expand f.
func (f Frequency) IsSupported() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (f Frequency) unit() datemath.Unit {
	switch f {
	case Weekly:
		return datemath.Week
	case Monthly:
		return datemath.Month
	case Yearly:
		return datemath.Year
	default:
		return datemath.Day
	}
}

// Weekday is an RFC 5545 weekday token
type Weekday string

const (
	MO Weekday = "MO"
	TU Weekday = "TU"
	WE Weekday = "WE"
	TH Weekday = "TH"
	FR Weekday = "FR"
	SA Weekday = "SA"
	SU Weekday = "SU"
)

var weekdayTokens = map[Weekday]time.Weekday{
	MO: time.Monday,
	TU: time.Tuesday,
	WE: time.Wednesday,
	TH: time.Thursday,
	FR: time.Friday,
	SA: time.Saturday,
	SU: time.Sunday,
}

// TimeWeekday maps the token to time.Weekday. ok is false for unknown tokens.
func (w Weekday) TimeWeekday() (time.Weekday, bool) {
	wd, ok := weekdayTokens[w]
	return wd, ok
}

// WeekdayOf returns the token for a time.Weekday
func WeekdayOf(wd time.Weekday) Weekday {
	for token, v := range weekdayTokens {
		if v == wd {
			return token
		}
	}
	return ""
}

// Weekdays lists MO..FR, the common "every weekday" set.
var Weekdays = []Weekday{MO, TU, WE, TH, FR}

// RecurrenceRule describes how a series repeats. Treat it as an immutable
// value; use Clone before changing the slices of a shared rule.
type RecurrenceRule struct {
	Frequency Frequency
	// Interval is the step in Frequency units. Zero is read as 1.
	Interval int
	// Count caps the total number of occurrences counted from the anchor.
	Count *int
	// Until is an inclusive upper bound.
	Until      *time.Time
	ByWeekDay  []Weekday
	ByMonthDay []int
	// BySetPos selects the Nth (or Nth from the end, if negative) matching
	// day of the month. Requires ByWeekDay.
	BySetPos []int
}

// EffectiveInterval returns Interval with the zero value read as 1.
func (r RecurrenceRule) EffectiveInterval() int {
	if r.Interval == 0 {
		return 1
	}
	return r.Interval
}

// Clone returns a deep copy of r.
func (r RecurrenceRule) Clone() RecurrenceRule {
	out := r
	if r.Count != nil {
		c := *r.Count
		out.Count = &c
	}
	if r.Until != nil {
		u := *r.Until
		out.Until = &u
	}
	out.ByWeekDay = append([]Weekday(nil), r.ByWeekDay...)
	out.ByMonthDay = append([]int(nil), r.ByMonthDay...)
	out.BySetPos = append([]int(nil), r.BySetPos...)
	return out
}

// hasDayFilter reports whether candidates must be examined day by day.
func (r RecurrenceRule) hasDayFilter() bool {
	return len(r.ByWeekDay) > 0 || len(r.ByMonthDay) > 0
}

// Instance is a single generated occurrence of a series.
type Instance struct {
	StartDate time.Time
	EndDate   time.Time
	// OriginalStartDate is always the series anchor.
	OriginalStartDate time.Time
}

// Duration returns the length of the instance.
func (i Instance) Duration() time.Duration {
	return i.EndDate.Sub(i.StartDate)
}
