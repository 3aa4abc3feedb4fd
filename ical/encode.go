package ical

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/exception"
	"github.com/cyp0633/calrecur/internal/datemath"
	"github.com/cyp0633/calrecur/recurrence"
)

// ProductID is written to the PRODID of every exported calendar
const ProductID = "-//calrecur//Recurring Events//EN"

const (
	propGeo          = "GEO"
	propRecurrenceID = "RECURRENCE-ID"
)

// ErrInvalidSeries is returned when a series cannot be exported.
var ErrInvalidSeries = errors.New("ical: invalid series")

// EncodeSeries renders ev as a calendar holding one master VEVENT and one
// override VEVENT per MODIFIED exception. DELETED exceptions become EXDATE
// values. A series without ID gets a random UID.
func EncodeSeries(ev event.RecurrentEvent, stamp time.Time) (*goical.Calendar, error) {
	if v := recurrence.ValidateRule(ev.RecurrenceRule); !v.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeries, strings.Join(v.Errors, "; "))
	}
	if ev.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: missing start time", ErrInvalidSeries)
	}

	uid := ev.ID
	if uid == "" {
		uid = uuid.NewString()
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, ProductID)

	master := goical.NewEvent()
	setEventProps(master.Props, uid, ev.CalendarEvent, stamp)

	rrule := goical.NewProp(goical.PropRecurrenceRule)
	rrule.Value = recurrence.FormatRRule(ev.RecurrenceRule)
	master.Props.Set(rrule)

	cal.Children = append(cal.Children, master.Component)

	for _, ex := range ev.Exceptions.All() {
		recurrenceID := datemath.WithClock(ev.InSeriesZone(ex.OriginalDate), ev.StartTime)

		switch ex.Type {
		case event.ExceptionDeleted:
			exdate := goical.NewProp(goical.PropExceptionDates)
			setTime(exdate, recurrenceID, ev.AllDay)
			master.Props.Add(exdate)

		case event.ExceptionModified:
			occ := overrideOccurrence(ev, recurrenceID)
			override := goical.NewEvent()
			setEventProps(override.Props, uid, occ, stamp)

			rid := goical.NewProp(propRecurrenceID)
			setTime(rid, recurrenceID, ev.AllDay)
			override.Props.Set(rid)

			cal.Children = append(cal.Children, override.Component)
		}
	}

	return cal, nil
}

// overrideOccurrence merges the exception for recurrenceID over the
// instance generated on that day.
func overrideOccurrence(ev event.RecurrentEvent, recurrenceID time.Time) event.CalendarEvent {
	raw := recurrence.Instance{
		StartDate:         recurrenceID,
		EndDate:           recurrenceID.Add(ev.Duration()),
		OriginalStartDate: ev.StartTime,
	}
	merged := exception.Reconcile(ev, []recurrence.Instance{raw})
	if len(merged) == 0 {
		return ev.CalendarEvent.Clone()
	}
	return merged[0].Event()
}

func setEventProps(props goical.Props, uid string, ev event.CalendarEvent, stamp time.Time) {
	props.SetText(goical.PropUID, uid)
	props.SetDateTime(goical.PropDateTimeStamp, stamp.UTC())

	start := goical.NewProp(goical.PropDateTimeStart)
	setTime(start, ev.StartTime, ev.AllDay)
	props.Set(start)

	if !ev.EndTime.IsZero() {
		end := goical.NewProp(goical.PropDateTimeEnd)
		setTime(end, ev.EndTime, ev.AllDay)
		props.Set(end)
	}

	if ev.Title != "" {
		props.SetText(goical.PropSummary, ev.Title)
	}
	if ev.Description != "" {
		props.SetText(goical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		props.SetText(goical.PropLocation, ev.Location)
	}
	if ev.Coordinates != nil {
		geo := goical.NewProp(propGeo)
		geo.Value = fmt.Sprintf("%f;%f", ev.Coordinates.Latitude, ev.Coordinates.Longitude)
		props.Set(geo)
	}
}

func setTime(prop *goical.Prop, t time.Time, allDay bool) {
	if allDay {
		prop.SetDate(t)
		return
	}
	prop.SetDateTime(t)
}

// Marshal encodes cal as iCalendar text.
func Marshal(cal *goical.Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := goical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalSeries is EncodeSeries followed by Marshal.
func MarshalSeries(ev event.RecurrentEvent, stamp time.Time) ([]byte, error) {
	cal, err := EncodeSeries(ev, stamp)
	if err != nil {
		return nil, err
	}
	return Marshal(cal)
}
