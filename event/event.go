// Package event holds the calendar event and recurring series values shared
// by the exception manager and the reminder engine.
package event

import (
	"time"

	"github.com/cyp0633/calrecur/recurrence"
)

// GeoPoint is a WGS84 coordinate
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// CalendarEvent is a single, concrete event
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Location    string
	// Coordinates of Location, when known. Used for travel time estimates.
	Coordinates *GeoPoint
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	IsRecurrent bool
}

// Duration returns EndTime - StartTime.
func (e CalendarEvent) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Clone returns a deep copy of e.
func (e CalendarEvent) Clone() CalendarEvent {
	out := e
	if e.Coordinates != nil {
		c := *e.Coordinates
		out.Coordinates = &c
	}
	return out
}

// RecurrentEvent is the root of a series. Its base timing anchors the rule
// and defines the duration of every instance. Instances are always derived
// from it and never stored.
type RecurrentEvent struct {
	CalendarEvent
	RecurrenceRule recurrence.RecurrenceRule
	Exceptions     ExceptionSet
}

// InSeriesZone returns t in the location of the series start. Exception
// days are always taken in that location, so the same instant selects the
// same occurrence whatever zone the caller used.
func (e RecurrentEvent) InSeriesZone(t time.Time) time.Time {
	return t.In(e.StartTime.Location())
}

// Clone returns a deep copy of e.
func (e RecurrentEvent) Clone() RecurrentEvent {
	return RecurrentEvent{
		CalendarEvent:  e.CalendarEvent.Clone(),
		RecurrenceRule: e.RecurrenceRule.Clone(),
		Exceptions:     e.Exceptions.clone(),
	}
}

// Patch is a partial event update. Nil fields are left unchanged.
type Patch struct {
	// ID is only honoured when a patch seeds a new event.
	ID          *string
	Title       *string
	Description *string
	Location    *string
	Coordinates *GeoPoint
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
}

// Apply returns e with every non-nil field of p copied over it. ID is not
// touched; see ApplyWithID.
func (p Patch) Apply(e CalendarEvent) CalendarEvent {
	out := e.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		out.Coordinates = &c
	}
	if p.StartTime != nil {
		out.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		out.EndTime = *p.EndTime
	}
	if p.AllDay != nil {
		out.AllDay = *p.AllDay
	}
	return out
}

// ApplyWithID is Apply plus the ID field.
func (p Patch) ApplyWithID(e CalendarEvent) CalendarEvent {
	out := p.Apply(e)
	if p.ID != nil {
		out.ID = *p.ID
	}
	return out
}

// Clone returns a deep copy of p.
func (p Patch) Clone() Patch {
	out := Patch{}
	if p.ID != nil {
		v := *p.ID
		out.ID = &v
	}
	if p.Title != nil {
		v := *p.Title
		out.Title = &v
	}
	if p.Description != nil {
		v := *p.Description
		out.Description = &v
	}
	if p.Location != nil {
		v := *p.Location
		out.Location = &v
	}
	if p.Coordinates != nil {
		v := *p.Coordinates
		out.Coordinates = &v
	}
	if p.StartTime != nil {
		v := *p.StartTime
		out.StartTime = &v
	}
	if p.EndTime != nil {
		v := *p.EndTime
		out.EndTime = &v
	}
	if p.AllDay != nil {
		v := *p.AllDay
		out.AllDay = &v
	}
	return out
}
