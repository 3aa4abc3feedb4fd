// Package document maps the YAML files read by the calrecur command to
// domain values.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/recurrence"
	"github.com/cyp0633/calrecur/reminder"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTime reads a timestamp in one of the accepted layouts. Values
// without an offset are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// Point is a coordinate pair.
type Point struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Rule is a recurrence rule, given either as an RRULE string or field by
// field.
type Rule struct {
	RRule      string   `yaml:"rrule,omitempty"`
	Frequency  string   `yaml:"frequency,omitempty"`
	Interval   int      `yaml:"interval,omitempty"`
	Count      *int     `yaml:"count,omitempty"`
	Until      string   `yaml:"until,omitempty"`
	ByWeekDay  []string `yaml:"by_week_day,omitempty"`
	ByMonthDay []int    `yaml:"by_month_day,omitempty"`
	BySetPos   []int    `yaml:"by_set_pos,omitempty"`
}

// Patch lists the fields an exception overrides.
type Patch struct {
	Title       *string `yaml:"title,omitempty"`
	Description *string `yaml:"description,omitempty"`
	Location    *string `yaml:"location,omitempty"`
	Coordinates *Point  `yaml:"coordinates,omitempty"`
	Start       string  `yaml:"start,omitempty"`
	End         string  `yaml:"end,omitempty"`
	AllDay      *bool   `yaml:"all_day,omitempty"`
}

// Exception overrides one day of the series.
type Exception struct {
	Date  string `yaml:"date"`
	Type  string `yaml:"type"`
	Patch *Patch `yaml:"patch,omitempty"`
}

// Timing is the base reminder lead time.
type Timing struct {
	Value       float64 `yaml:"value"`
	Unit        string  `yaml:"unit"`
	Description string  `yaml:"description,omitempty"`
}

// Series is a recurring event file.
type Series struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description,omitempty"`
	Location    string      `yaml:"location,omitempty"`
	Coordinates *Point      `yaml:"coordinates,omitempty"`
	Start       string      `yaml:"start"`
	End         string      `yaml:"end"`
	AllDay      bool        `yaml:"all_day,omitempty"`
	Rule        Rule        `yaml:"rule"`
	Exceptions  []Exception `yaml:"exceptions,omitempty"`
	Reminder    *Timing     `yaml:"reminder,omitempty"`
}

// LoadSeries reads a series file.
func LoadSeries(path string) (*Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Series
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse series %s: %w", path, err)
	}
	return &s, nil
}

// ToRule converts the rule document.
func (r Rule) ToRule(loc *time.Location) (recurrence.RecurrenceRule, error) {
	if r.RRule != "" {
		if r.Frequency != "" {
			return recurrence.RecurrenceRule{}, errors.New("rule: rrule and frequency are mutually exclusive")
		}
		return recurrence.ParseRRule(r.RRule)
	}

	rule := recurrence.RecurrenceRule{
		Frequency:  recurrence.Frequency(strings.ToUpper(r.Frequency)),
		Interval:   r.Interval,
		ByMonthDay: append([]int(nil), r.ByMonthDay...),
		BySetPos:   append([]int(nil), r.BySetPos...),
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if r.Count != nil {
		c := *r.Count
		rule.Count = &c
	}
	if r.Until != "" {
		until, err := ParseTime(r.Until, loc)
		if err != nil {
			return recurrence.RecurrenceRule{}, fmt.Errorf("rule until: %w", err)
		}
		rule.Until = &until
	}
	for _, wd := range r.ByWeekDay {
		rule.ByWeekDay = append(rule.ByWeekDay, recurrence.Weekday(strings.ToUpper(wd)))
	}
	return rule, nil
}

// ToPatch converts the patch document.
func (p Patch) ToPatch(loc *time.Location) (event.Patch, error) {
	out := event.Patch{
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		AllDay:      p.AllDay,
	}
	if p.Coordinates != nil {
		out.Coordinates = &event.GeoPoint{Latitude: p.Coordinates.Latitude, Longitude: p.Coordinates.Longitude}
	}
	if p.Start != "" {
		t, err := ParseTime(p.Start, loc)
		if err != nil {
			return event.Patch{}, fmt.Errorf("patch start: %w", err)
		}
		out.StartTime = &t
	}
	if p.End != "" {
		t, err := ParseTime(p.End, loc)
		if err != nil {
			return event.Patch{}, fmt.Errorf("patch end: %w", err)
		}
		out.EndTime = &t
	}
	return out, nil
}

// ToEvent converts the series document. The rule is not validated here.
func (s Series) ToEvent(loc *time.Location) (event.RecurrentEvent, error) {
	start, err := ParseTime(s.Start, loc)
	if err != nil {
		return event.RecurrentEvent{}, fmt.Errorf("series start: %w", err)
	}
	end := start
	if s.End != "" {
		if end, err = ParseTime(s.End, loc); err != nil {
			return event.RecurrentEvent{}, fmt.Errorf("series end: %w", err)
		}
	}
	if end.Before(start) {
		return event.RecurrentEvent{}, errors.New("series end is before start")
	}

	rule, err := s.Rule.ToRule(loc)
	if err != nil {
		return event.RecurrentEvent{}, err
	}

	ev := event.RecurrentEvent{
		CalendarEvent: event.CalendarEvent{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Location:    s.Location,
			StartTime:   start,
			EndTime:     end,
			AllDay:      s.AllDay,
			IsRecurrent: true,
		},
		RecurrenceRule: rule,
	}
	if s.Coordinates != nil {
		ev.Coordinates = &event.GeoPoint{Latitude: s.Coordinates.Latitude, Longitude: s.Coordinates.Longitude}
	}

	excs := make([]event.Exception, 0, len(s.Exceptions))
	// Dates without an offset name a day of the series.
	for _, x := range s.Exceptions {
		date, err := ParseTime(x.Date, start.Location())
		if err != nil {
			return event.RecurrentEvent{}, fmt.Errorf("exception date: %w", err)
		}
		switch event.ExceptionType(strings.ToUpper(x.Type)) {
		case event.ExceptionDeleted:
			excs = append(excs, event.Exception{OriginalDate: date, Type: event.ExceptionDeleted})
		case event.ExceptionModified:
			var patch event.Patch
			if x.Patch != nil {
				if patch, err = x.Patch.ToPatch(loc); err != nil {
					return event.RecurrentEvent{}, err
				}
			}
			excs = append(excs, event.Exception{OriginalDate: date, Type: event.ExceptionModified, Patch: &patch})
		default:
			return event.RecurrentEvent{}, fmt.Errorf("exception %s: unknown type %q", x.Date, x.Type)
		}
	}
	ev.Exceptions = event.NewExceptionSet(excs...)

	return ev, nil
}

// BaseTiming returns the series reminder, 15 minutes when unset.
func (s Series) BaseTiming() (reminder.Timing, error) {
	if s.Reminder == nil {
		return reminder.Timing{Value: 15, Unit: reminder.Minutes, Description: "15 minutes before"}, nil
	}
	unit := reminder.TimingUnit(strings.ToUpper(s.Reminder.Unit))
	if !unit.IsValid() {
		return reminder.Timing{}, fmt.Errorf("reminder: unknown unit %q", s.Reminder.Unit)
	}
	if s.Reminder.Value < 0 {
		return reminder.Timing{}, errors.New("reminder: value must not be negative")
	}
	return reminder.Timing{Value: s.Reminder.Value, Unit: unit, Description: s.Reminder.Description}, nil
}

// FromEvent builds a series document from ev. The rule is written field by
// field.
func FromEvent(ev event.RecurrentEvent) Series {
	s := Series{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       formatTime(ev.StartTime),
		End:         formatTime(ev.EndTime),
		AllDay:      ev.AllDay,
		Rule: Rule{
			Frequency:  string(ev.RecurrenceRule.Frequency),
			Interval:   ev.RecurrenceRule.Interval,
			ByMonthDay: ev.RecurrenceRule.ByMonthDay,
			BySetPos:   ev.RecurrenceRule.BySetPos,
		},
	}
	if ev.Coordinates != nil {
		s.Coordinates = &Point{Latitude: ev.Coordinates.Latitude, Longitude: ev.Coordinates.Longitude}
	}
	if ev.RecurrenceRule.Count != nil {
		c := *ev.RecurrenceRule.Count
		s.Rule.Count = &c
	}
	if ev.RecurrenceRule.Until != nil {
		s.Rule.Until = formatTime(*ev.RecurrenceRule.Until)
	}
	for _, wd := range ev.RecurrenceRule.ByWeekDay {
		s.Rule.ByWeekDay = append(s.Rule.ByWeekDay, string(wd))
	}

	for _, ex := range ev.Exceptions.All() {
		doc := Exception{Date: ev.InSeriesZone(ex.OriginalDate).Format(time.DateOnly), Type: string(ex.Type)}
		if ex.Patch != nil {
			doc.Patch = fromPatch(*ex.Patch)
		}
		s.Exceptions = append(s.Exceptions, doc)
	}
	return s
}

func fromPatch(p event.Patch) *Patch {
	out := &Patch{
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		AllDay:      p.AllDay,
	}
	if p.Coordinates != nil {
		out.Coordinates = &Point{Latitude: p.Coordinates.Latitude, Longitude: p.Coordinates.Longitude}
	}
	if p.StartTime != nil {
		out.Start = formatTime(*p.StartTime)
	}
	if p.EndTime != nil {
		out.End = formatTime(*p.EndTime)
	}
	return out
}
