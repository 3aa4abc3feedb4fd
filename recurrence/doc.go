/*
Package recurrence expands recurrence rules into concrete occurrences.

# Basic Usage

Validate a rule, then expand it inside a window:

	rule := recurrence.RecurrenceRule{
		Frequency: recurrence.Weekly,
		Interval:  1,
		ByWeekDay: []recurrence.Weekday{recurrence.MO, recurrence.WE},
	}
	if res := recurrence.ValidateRule(rule); !res.Valid {
		return fmt.Errorf("invalid rule: %s", strings.Join(res.Errors, "; "))
	}
	instances := recurrence.GenerateInstances(rule, anchor, from, to, time.Hour, 0)

Occurrences are never stored. A series is always re-expanded from its rule,
and per-date overrides are applied on top by the exception package.

# Expansion Model

Candidates are stepped forward from the anchor. Rules with ByWeekDay or
ByMonthDay are examined day by day, other rules jump one interval at a time.
A candidate is accepted when the number of elapsed frequency units since the
anchor is a multiple of Interval and it passes the ByWeekDay, ByMonthDay and
BySetPos filters. BySetPos is resolved within the candidate's month.

Count is counted from the anchor, so occurrences before the window still use
up the budget. Until is inclusive, the window end is exclusive.

# RRULE Interop

FormatRRule and ParseRRule translate to and from RFC 5545 RRULE text using
github.com/teambition/rrule-go.
*/
package recurrence
