package recurrence

import "fmt"

const (
	minInterval = 1
	maxInterval = 999
)

// Validation messages. Each rule invariant maps to exactly one message so
// callers can match on them.
const (
	MsgUnsupportedFrequency = "frequency must be one of DAILY, WEEKLY, MONTHLY, YEARLY"
	MsgIntervalRange        = "interval must be between 1 and 999"
	MsgCountPositive        = "count must be a positive integer"
	MsgUntilZero            = "until must be a valid instant"
	MsgCountAndUntil        = "count and until are mutually exclusive"
	MsgDailyByWeekDay       = "byWeekDay is not allowed with DAILY frequency"
	MsgDailyByMonthDay      = "byMonthDay is not allowed with DAILY frequency"
	MsgWeeklyByMonthDay     = "byMonthDay is not allowed with WEEKLY frequency"
	MsgSetPosNeedsWeekDay   = "bySetPos requires byWeekDay"
	MsgMonthDayRange        = "byMonthDay values must be between 1 and 31"
	MsgSetPosRange          = "bySetPos values must be non-zero and between -31 and 31"
)

// ValidationResult lists every violated invariant of a rule
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateRule checks r against the rule invariants. It never fails fast:
// every violation is reported.
func ValidateRule(r RecurrenceRule) ValidationResult {
	errs := make([]string, 0)

	if !r.Frequency.IsSupported() {
		errs = append(errs, MsgUnsupportedFrequency)
	}
	if r.Interval != 0 && (r.Interval < minInterval || r.Interval > maxInterval) {
		errs = append(errs, MsgIntervalRange)
	}
	if r.Count != nil && *r.Count <= 0 {
		errs = append(errs, MsgCountPositive)
	}
	if r.Until != nil && r.Until.IsZero() {
		errs = append(errs, MsgUntilZero)
	}
	if r.Count != nil && r.Until != nil {
		errs = append(errs, MsgCountAndUntil)
	}

	switch r.Frequency {
	case Daily:
		if len(r.ByWeekDay) > 0 {
			errs = append(errs, MsgDailyByWeekDay)
		}
		if len(r.ByMonthDay) > 0 {
			errs = append(errs, MsgDailyByMonthDay)
		}
	case Weekly:
		if len(r.ByMonthDay) > 0 {
			errs = append(errs, MsgWeeklyByMonthDay)
		}
	}

	if len(r.BySetPos) > 0 && len(r.ByWeekDay) == 0 {
		errs = append(errs, MsgSetPosNeedsWeekDay)
	}

	for _, wd := range r.ByWeekDay {
		if _, ok := wd.TimeWeekday(); !ok {
			errs = append(errs, fmt.Sprintf("invalid weekday: %q", wd))
		}
	}
	for _, d := range r.ByMonthDay {
		if d < 1 || d > 31 {
			errs = append(errs, MsgMonthDayRange)
			break
		}
	}
	for _, p := range r.BySetPos {
		if p == 0 || p < -31 || p > 31 {
			errs = append(errs, MsgSetPosRange)
			break
		}
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
