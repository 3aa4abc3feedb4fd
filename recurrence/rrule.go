package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrUnsupportedRRule is returned when an RRULE uses parts this engine does
// not model (BYMONTH, BYHOUR, HOURLY frequency, ...).
var ErrUnsupportedRRule = errors.New("recurrence: unsupported RRULE")

var toRRuleFreq = map[Frequency]rrule.Frequency{
	Daily:   rrule.DAILY,
	Weekly:  rrule.WEEKLY,
	Monthly: rrule.MONTHLY,
	Yearly:  rrule.YEARLY,
}

var toRRuleWeekday = map[Weekday]rrule.Weekday{
	MO: rrule.MO,
	TU: rrule.TU,
	WE: rrule.WE,
	TH: rrule.TH,
	FR: rrule.FR,
	SA: rrule.SA,
	SU: rrule.SU,
}

// rrule-go numbers weekdays from Monday = 0.
var fromRRuleWeekday = []Weekday{MO, TU, WE, TH, FR, SA, SU}

// ToROption converts r into rrule-go options anchored at dtstart. A zero
// dtstart leaves DTSTART unset.
func ToROption(r RecurrenceRule, dtstart time.Time) rrule.ROption {
	opt := rrule.ROption{
		Freq:       toRRuleFreq[r.Frequency],
		Dtstart:    dtstart,
		Interval:   r.EffectiveInterval(),
		Wkst:       rrule.MO,
		Bymonthday: append([]int(nil), r.ByMonthDay...),
		Bysetpos:   append([]int(nil), r.BySetPos...),
	}
	if r.Count != nil {
		opt.Count = *r.Count
	}
	if r.Until != nil {
		opt.Until = *r.Until
	}
	for _, wd := range r.ByWeekDay {
		if v, ok := toRRuleWeekday[wd]; ok {
			opt.Byweekday = append(opt.Byweekday, v)
		}
	}
	return opt
}

// FormatRRule renders r as an RFC 5545 RRULE value (without the "RRULE:"
// prefix), e.g. "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE".
func FormatRRule(r RecurrenceRule) string {
	opt := ToROption(r, time.Time{})
	return strings.TrimPrefix(opt.String(), "RRULE:")
}

// ParseRRule reads an RFC 5545 RRULE value. A lone ordinal weekday such as
// BYDAY=-1MO is translated to ByWeekDay [MO] with BySetPos [-1]; several
// ordinal weekdays cannot be expressed and are rejected.
func ParseRRule(text string) (RecurrenceRule, error) {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "RRULE:"))
	opt, err := rrule.StrToROption(text)
	if err != nil {
		return RecurrenceRule{}, fmt.Errorf("failed to parse RRULE '%s': %w", text, err)
	}

	var rule RecurrenceRule
	switch opt.Freq {
	case rrule.DAILY:
		rule.Frequency = Daily
	case rrule.WEEKLY:
		rule.Frequency = Weekly
	case rrule.MONTHLY:
		rule.Frequency = Monthly
	case rrule.YEARLY:
		rule.Frequency = Yearly
	default:
		return RecurrenceRule{}, fmt.Errorf("%w: frequency %v", ErrUnsupportedRRule, opt.Freq)
	}

	unsupported := map[string]int{
		"BYMONTH":   len(opt.Bymonth),
		"BYYEARDAY": len(opt.Byyearday),
		"BYWEEKNO":  len(opt.Byweekno),
		"BYHOUR":    len(opt.Byhour),
		"BYMINUTE":  len(opt.Byminute),
		"BYSECOND":  len(opt.Bysecond),
		"BYEASTER":  len(opt.Byeaster),
	}
	for part, n := range unsupported {
		if n > 0 {
			return RecurrenceRule{}, fmt.Errorf("%w: %s", ErrUnsupportedRRule, part)
		}
	}

	rule.Interval = opt.Interval
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if opt.Count > 0 {
		count := opt.Count
		rule.Count = &count
	}
	if !opt.Until.IsZero() {
		until := opt.Until
		rule.Until = &until
	}
	if len(opt.Bymonthday) > 0 {
		rule.ByMonthDay = append([]int(nil), opt.Bymonthday...)
	}
	if len(opt.Bysetpos) > 0 {
		rule.BySetPos = append([]int(nil), opt.Bysetpos...)
	}

	nth := 0
	for i, wd := range opt.Byweekday {
		day := wd.Day()
		if day < 0 || day >= len(fromRRuleWeekday) {
			return RecurrenceRule{}, fmt.Errorf("%w: weekday %v", ErrUnsupportedRRule, wd)
		}
		rule.ByWeekDay = append(rule.ByWeekDay, fromRRuleWeekday[day])
		if i == 0 {
			nth = wd.N()
		} else if wd.N() != nth {
			return RecurrenceRule{}, fmt.Errorf("%w: mixed ordinal weekdays", ErrUnsupportedRRule)
		}
	}
	if nth != 0 {
		if len(rule.BySetPos) > 0 || len(rule.ByWeekDay) > 1 {
			return RecurrenceRule{}, fmt.Errorf("%w: ordinal weekday %s", ErrUnsupportedRRule, text)
		}
		rule.BySetPos = []int{nth}
	}

	return rule, nil
}
