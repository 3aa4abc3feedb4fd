package ical

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"

	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/internal/datemath"
	"github.com/cyp0633/calrecur/recurrence"
)

// ErrNoSeries is returned when a calendar holds no recurring VEVENT.
var ErrNoSeries = errors.New("ical: no recurring event found")

const statusCancelled = "CANCELLED"

// DecodeSeries reads the first recurring VEVENT of cal and the overrides
// sharing its UID. EXDATE values and cancelled overrides become DELETED
// exceptions; other overrides become MODIFIED exceptions whose patch holds
// the fields that differ from the generated instance.
func DecodeSeries(cal *goical.Calendar) (event.RecurrentEvent, error) {
	events := cal.Events()

	masterIdx := -1
	for i, e := range events {
		if e.Props.Get(goical.PropRecurrenceRule) != nil && e.Props.Get(propRecurrenceID) == nil {
			masterIdx = i
			break
		}
	}
	if masterIdx < 0 {
		return event.RecurrentEvent{}, ErrNoSeries
	}
	master := events[masterIdx]

	base, err := readEvent(master.Props)
	if err != nil {
		return event.RecurrentEvent{}, err
	}
	base.IsRecurrent = true

	rule, err := recurrence.ParseRRule(master.Props.Get(goical.PropRecurrenceRule).Value)
	if err != nil {
		return event.RecurrentEvent{}, err
	}

	series := event.RecurrentEvent{CalendarEvent: base, RecurrenceRule: rule}

	var excs []event.Exception
	for _, prop := range master.Props.Values(goical.PropExceptionDates) {
		dates, err := readDateList(prop)
		if err != nil {
			return event.RecurrentEvent{}, fmt.Errorf("failed to parse EXDATE: %w", err)
		}
		for _, d := range dates {
			excs = append(excs, event.Exception{OriginalDate: series.InSeriesZone(d), Type: event.ExceptionDeleted})
		}
	}

	for i, e := range events {
		if i == masterIdx {
			continue
		}
		if uid, _ := e.Props.Text(goical.PropUID); uid != base.ID {
			continue
		}
		ridProp := e.Props.Get(propRecurrenceID)
		if ridProp == nil {
			continue
		}
		rid, err := ridProp.DateTime(time.UTC)
		if err != nil {
			return event.RecurrentEvent{}, fmt.Errorf("failed to parse RECURRENCE-ID: %w", err)
		}
		rid = series.InSeriesZone(rid)

		if status, _ := e.Props.Text(goical.PropStatus); strings.EqualFold(status, statusCancelled) {
			excs = append(excs, event.Exception{OriginalDate: rid, Type: event.ExceptionDeleted})
			continue
		}

		override, err := readEvent(e.Props)
		if err != nil {
			return event.RecurrentEvent{}, err
		}
		instance := base.Clone()
		instance.StartTime = datemath.WithClock(rid, base.StartTime)
		instance.EndTime = instance.StartTime.Add(base.Duration())

		patch := diffPatch(instance, override)
		excs = append(excs, event.Exception{OriginalDate: rid, Type: event.ExceptionModified, Patch: &patch})
	}

	series.Exceptions = event.NewExceptionSet(excs...)
	return series, nil
}

// readEvent extracts the fields shared by master and override VEVENTs. A
// missing DTEND falls back to DURATION, then to one day for all-day events
// and zero length otherwise.
func readEvent(props goical.Props) (event.CalendarEvent, error) {
	var ev event.CalendarEvent

	ev.ID, _ = props.Text(goical.PropUID)
	ev.Title, _ = props.Text(goical.PropSummary)
	ev.Description, _ = props.Text(goical.PropDescription)
	ev.Location, _ = props.Text(goical.PropLocation)

	startProp := props.Get(goical.PropDateTimeStart)
	if startProp == nil {
		return ev, fmt.Errorf("ical: event %q has no DTSTART", ev.ID)
	}
	start, err := startProp.DateTime(time.UTC)
	if err != nil {
		return ev, fmt.Errorf("failed to parse DTSTART: %w", err)
	}
	ev.StartTime = start
	ev.AllDay = isDateValue(startProp)

	switch {
	case props.Get(goical.PropDateTimeEnd) != nil:
		end, err := props.DateTime(goical.PropDateTimeEnd, time.UTC)
		if err != nil {
			return ev, fmt.Errorf("failed to parse DTEND: %w", err)
		}
		ev.EndTime = end
	case props.Get(goical.PropDuration) != nil:
		d, err := props.Get(goical.PropDuration).Duration()
		if err != nil {
			return ev, fmt.Errorf("failed to parse DURATION: %w", err)
		}
		ev.EndTime = start.Add(d)
	case ev.AllDay:
		ev.EndTime = start.AddDate(0, 0, 1)
	default:
		ev.EndTime = start
	}

	if geo := props.Get(propGeo); geo != nil {
		p, err := parseGeo(geo.Value)
		if err != nil {
			return ev, err
		}
		ev.Coordinates = &p
	}

	return ev, nil
}

// readDateList parses a possibly comma separated date or date-time list.
func readDateList(prop goical.Prop) ([]time.Time, error) {
	var out []time.Time
	for _, v := range strings.Split(prop.Value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		single := prop
		single.Value = v
		t, err := single.DateTime(time.UTC)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func isDateValue(prop *goical.Prop) bool {
	if strings.EqualFold(prop.Params.Get(goical.ParamValue), "DATE") {
		return true
	}
	return len(prop.Value) == len("20060102")
}

func parseGeo(value string) (event.GeoPoint, error) {
	parts := strings.Split(value, ";")
	if len(parts) != 2 {
		return event.GeoPoint{}, fmt.Errorf("ical: invalid GEO value %q", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return event.GeoPoint{}, fmt.Errorf("ical: invalid GEO latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return event.GeoPoint{}, fmt.Errorf("ical: invalid GEO longitude: %w", err)
	}
	return event.GeoPoint{Latitude: lat, Longitude: lon}, nil
}

// diffPatch returns the changes that turn instance into override.
func diffPatch(instance, override event.CalendarEvent) event.Patch {
	var p event.Patch
	if override.Title != instance.Title {
		p.Title = &override.Title
	}
	if override.Description != instance.Description {
		p.Description = &override.Description
	}
	if override.Location != instance.Location {
		p.Location = &override.Location
	}
	if override.Coordinates != nil && (instance.Coordinates == nil || *override.Coordinates != *instance.Coordinates) {
		c := *override.Coordinates
		p.Coordinates = &c
	}
	if !override.StartTime.Equal(instance.StartTime) {
		start := override.StartTime
		p.StartTime = &start
	}
	if override.Duration() != instance.Duration() {
		end := override.EndTime
		p.EndTime = &end
	}
	if override.AllDay != instance.AllDay {
		allDay := override.AllDay
		p.AllDay = &allDay
	}
	return p
}

// Unmarshal decodes iCalendar text.
func Unmarshal(data []byte) (*goical.Calendar, error) {
	cal, err := goical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}
	return cal, nil
}

// UnmarshalSeries is Unmarshal followed by DecodeSeries.
func UnmarshalSeries(data []byte) (event.RecurrentEvent, error) {
	cal, err := Unmarshal(data)
	if err != nil {
		return event.RecurrentEvent{}, err
	}
	return DecodeSeries(cal)
}
