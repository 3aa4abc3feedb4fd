package exception

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/recurrence"
)

// Occurrence is an instance of a series after exceptions were applied.
type Occurrence struct {
	recurrence.Instance
	// RecurrenceDate is the generated start before any modification; its
	// calendar day is the key of the exception that applies to it.
	RecurrenceDate time.Time
	SeriesID       string
	Title          string
	Description    string
	Location       string
	Coordinates    *event.GeoPoint
	AllDay         bool
	// Modified is true when a MODIFIED exception was merged in.
	Modified bool
}

// Event returns the occurrence as a standalone, non-recurring event.
func (o Occurrence) Event() event.CalendarEvent {
	ev := event.CalendarEvent{
		ID:          o.SeriesID,
		Title:       o.Title,
		Description: o.Description,
		Location:    o.Location,
		StartTime:   o.StartDate,
		EndTime:     o.EndDate,
		AllDay:      o.AllDay,
	}
	if o.Coordinates != nil {
		c := *o.Coordinates
		ev.Coordinates = &c
	}
	return ev
}

// Reconcile applies the exceptions of ev to raw, the instances generated
// from its rule. An instance whose day has a DELETED exception is dropped,
// one with a MODIFIED exception gets the patch merged over it, and the
// rest pass through unchanged. Order is preserved.
func Reconcile(ev event.RecurrentEvent, raw []recurrence.Instance) []Occurrence {
	out := make([]Occurrence, 0, len(raw))
	for _, inst := range raw {
		ex, ok := ev.Exceptions.Get(ev.InSeriesZone(inst.StartDate))
		if ok && ex.Type == event.ExceptionDeleted {
			continue
		}

		base := ev.CalendarEvent.Clone()
		base.StartTime = inst.StartDate
		base.EndTime = inst.EndDate
		modified := false
		if ok && ex.Type == event.ExceptionModified && ex.Patch != nil {
			base = mergePatch(*ex.Patch, base, false)
			modified = true
		}

		out = append(out, Occurrence{
			Instance: recurrence.Instance{
				StartDate:         base.StartTime,
				EndDate:           base.EndTime,
				OriginalStartDate: inst.OriginalStartDate,
			},
			RecurrenceDate: inst.StartDate,
			SeriesID:       ev.ID,
			Title:          base.Title,
			Description:    base.Description,
			Location:       base.Location,
			Coordinates:    base.Coordinates,
			AllDay:         base.AllDay,
			Modified:       modified,
		})
	}
	return out
}

// EffectiveInstances validates the series rule, expands it inside
// [rangeStart, rangeEnd) with the default engine and reconciles the
// exceptions. An invalid rule yields an error wrapping ErrInvalidRule.
func EffectiveInstances(ev event.RecurrentEvent, rangeStart, rangeEnd time.Time, maxInstances int) ([]Occurrence, error) {
	return EffectiveInstancesWith(recurrence.NewEngine(), ev, rangeStart, rangeEnd, maxInstances)
}

// EffectiveInstancesWith is EffectiveInstances with a caller supplied engine.
func EffectiveInstancesWith(engine *recurrence.Engine, ev event.RecurrentEvent, rangeStart, rangeEnd time.Time, maxInstances int) ([]Occurrence, error) {
	if res := recurrence.ValidateRule(ev.RecurrenceRule); !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRule, strings.Join(res.Errors, "; "))
	}
	raw := engine.GenerateInstances(ev.RecurrenceRule, ev.StartTime, rangeStart, rangeEnd, ev.Duration(), maxInstances)
	return Reconcile(ev, raw), nil
}
