package recurrence

import (
	"log/slog"
	"sort"
	"time"

	"github.com/cyp0633/calrecur/internal/datemath"
)

// Engine expands recurrence rules into concrete instances
type Engine struct {
	config EngineConfig
	logger *slog.Logger
}

// NewEngine creates a new recurrence engine instance
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

var defaultEngine = NewEngine()

// GenerateInstances expands rule with the default engine. See
// Engine.GenerateInstances.
func GenerateInstances(rule RecurrenceRule, anchorStart, rangeStart, rangeEnd time.Time, duration time.Duration, maxInstances int) []Instance {
	return defaultEngine.GenerateInstances(rule, anchorStart, rangeStart, rangeEnd, duration, maxInstances)
}

// GenerateInstances steps candidates forward from anchorStart and returns,
// in ascending order, every candidate matching rule that starts inside
// [rangeStart, rangeEnd). Each instance lasts duration.
//
// The rule is not validated here. Callers must run ValidateRule first; an
// invalid rule produces unspecified (but bounded) output.
//
// Generation stops at the first of: Count occurrences counted from the
// anchor, a candidate after Until, a candidate at or after rangeEnd,
// maxInstances emitted instances (the engine default when <= 0), or the
// engine's iteration ceiling. Matches before rangeStart are not emitted but
// still use up Count, so a window that starts late may return fewer than
// Count instances.
func (e *Engine) GenerateInstances(rule RecurrenceRule, anchorStart, rangeStart, rangeEnd time.Time, duration time.Duration, maxInstances int) []Instance {
	out := make([]Instance, 0)
	if !rangeStart.Before(rangeEnd) {
		return out
	}
	if maxInstances <= 0 {
		maxInstances = e.config.MaxInstances
	}

	m := newMatcher(rule, anchorStart)
	matched := 0
	exhausted := true

	for i := 0; i < e.config.MaxIterations; i++ {
		candidate, ok := m.candidate(i)
		if !ok {
			continue
		}
		if rule.Until != nil && candidate.After(*rule.Until) {
			exhausted = false
			break
		}
		if !candidate.Before(rangeEnd) {
			exhausted = false
			break
		}
		if !m.matches(candidate) {
			continue
		}

		matched++
		if !candidate.Before(rangeStart) {
			out = append(out, Instance{
				StartDate:         candidate,
				EndDate:           candidate.Add(duration),
				OriginalStartDate: anchorStart,
			})
			if len(out) >= maxInstances {
				e.logger.Debug("recurrence expansion truncated",
					"reason", "max_instances",
					"limit", maxInstances,
					"frequency", rule.Frequency)
				exhausted = false
				break
			}
		}
		if rule.Count != nil && matched >= *rule.Count {
			exhausted = false
			break
		}
	}

	if exhausted {
		e.logger.Debug("recurrence expansion truncated",
			"reason", "max_iterations",
			"limit", e.config.MaxIterations,
			"frequency", rule.Frequency)
	}

	return out
}

// matcher tests candidates against one rule for the duration of one call.
type matcher struct {
	rule      RecurrenceRule
	anchor    time.Time
	interval  int
	unit      datemath.Unit
	daily     bool
	weekdays  map[time.Weekday]bool
	monthDays map[int]bool
	setPos    map[datemath.DayKey]map[int]bool // month (Day=0) -> selected days
}

func newMatcher(rule RecurrenceRule, anchor time.Time) *matcher {
	m := &matcher{
		rule:     rule,
		anchor:   anchor,
		interval: rule.EffectiveInterval(),
		unit:     rule.Frequency.unit(),
		daily:    rule.hasDayFilter(),
		setPos:   make(map[datemath.DayKey]map[int]bool),
	}
	if m.interval < 1 {
		m.interval = 1
	}
	if len(rule.ByWeekDay) > 0 {
		m.weekdays = make(map[time.Weekday]bool, len(rule.ByWeekDay))
		for _, token := range rule.ByWeekDay {
			if wd, ok := token.TimeWeekday(); ok {
				m.weekdays[wd] = true
			}
		}
	}
	if len(rule.ByMonthDay) > 0 {
		m.monthDays = make(map[int]bool, len(rule.ByMonthDay))
		for _, d := range rule.ByMonthDay {
			m.monthDays[d] = true
		}
	}
	return m
}

// candidate returns the i-th candidate. Rules with day filters are examined
// day by day; plain rules jump a whole interval at a time, computed from the
// anchor so month-end anchors do not drift. ok is false for steps that land
// on a normalized date (Jan 31 + 1 month), which are skipped.
func (m *matcher) candidate(i int) (time.Time, bool) {
	if m.daily {
		return m.anchor.AddDate(0, 0, i), true
	}
	c := datemath.AddUnits(m.anchor, m.unit, i*m.interval)
	if (m.unit == datemath.Month || m.unit == datemath.Year) && c.Day() != m.anchor.Day() {
		return time.Time{}, false
	}
	return c, true
}

func (m *matcher) matches(c time.Time) bool {
	if datemath.Mod(datemath.Between(m.anchor, c, m.unit), m.interval) != 0 {
		return false
	}
	if m.weekdays != nil && !m.weekdays[c.Weekday()] {
		return false
	}
	if m.monthDays != nil && !m.monthDays[c.Day()] {
		return false
	}
	if len(m.rule.BySetPos) > 0 && !m.selectedBySetPos(c) {
		return false
	}
	return true
}

// selectedBySetPos enumerates the days of c's month that satisfy the
// weekday (and month day) filters and checks c against the requested
// positions.
func (m *matcher) selectedBySetPos(c time.Time) bool {
	key := datemath.DayKey{Year: c.Year(), Month: c.Month()}
	selected, ok := m.setPos[key]
	if !ok {
		days := make([]int, 0, 8)
		for d := 1; d <= datemath.DaysInMonth(c.Year(), c.Month()); d++ {
			wd := time.Date(c.Year(), c.Month(), d, 0, 0, 0, 0, time.UTC).Weekday()
			if m.weekdays != nil && !m.weekdays[wd] {
				continue
			}
			if m.monthDays != nil && !m.monthDays[d] {
				continue
			}
			days = append(days, d)
		}
		sort.Ints(days)

		selected = make(map[int]bool, len(m.rule.BySetPos))
		for _, pos := range m.rule.BySetPos {
			idx := pos - 1
			if pos < 0 {
				idx = len(days) + pos
			}
			if idx >= 0 && idx < len(days) {
				selected[days[idx]] = true
			}
		}
		m.setPos[key] = selected
	}
	return selected[c.Day()]
}
