package exception

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/internal/datemath"
)

// ModifyInstance stores patch as a MODIFIED exception for originalDate's
// calendar day in the series' location. An existing exception for that day is replaced in place.
func ModifyInstance(ev event.RecurrentEvent, originalDate time.Time, patch event.Patch) Result {
	return guard("modify instance", func() Result {
		if originalDate.IsZero() {
			return failed("modify instance", ErrInvalidDate)
		}
		originalDate = ev.InSeriesZone(originalDate)
		p := patch.Clone()
		updated := ev.Clone()
		updated.Exceptions = updated.Exceptions.Upsert(event.Exception{
			OriginalDate: originalDate,
			Type:         event.ExceptionModified,
			Patch:        &p,
		})
		return succeeded(fmt.Sprintf("instance on %s modified", dayLabel(originalDate)), updated)
	})
}

// DeleteInstance stores a DELETED exception for originalDate's calendar day.
func DeleteInstance(ev event.RecurrentEvent, originalDate time.Time) Result {
	return guard("delete instance", func() Result {
		if originalDate.IsZero() {
			return failed("delete instance", ErrInvalidDate)
		}
		originalDate = ev.InSeriesZone(originalDate)
		updated := ev.Clone()
		updated.Exceptions = updated.Exceptions.Upsert(event.Exception{
			OriginalDate: originalDate,
			Type:         event.ExceptionDeleted,
		})
		return succeeded(fmt.Sprintf("instance on %s deleted", dayLabel(originalDate)), updated)
	})
}

// RemoveException restores the generated instance for originalDate's day.
// It fails with ErrNoException when the day has no exception.
func RemoveException(ev event.RecurrentEvent, originalDate time.Time) Result {
	return guard("remove exception", func() Result {
		if originalDate.IsZero() {
			return failed("remove exception", ErrInvalidDate)
		}
		originalDate = ev.InSeriesZone(originalDate)
		updated := ev.Clone()
		set, removed := updated.Exceptions.Remove(originalDate)
		if !removed {
			return failed("remove exception", fmt.Errorf("%w %s", ErrNoException, dayLabel(originalDate)))
		}
		updated.Exceptions = set
		return succeeded(fmt.Sprintf("exception for %s removed", dayLabel(originalDate)), updated)
	})
}

// ConvertToIndependentEvent detaches one occurrence from the series: the
// day is deleted from the series and a new non-recurring event is returned.
// The new event copies the series fields, starts on originalDate's day at
// the series' wall-clock start and lasts as long as the series. Fields set
// in newEventData override those defaults.
func ConvertToIndependentEvent(ev event.RecurrentEvent, originalDate time.Time, newEventData event.Patch) Result {
	const op = "convert instance to independent event"
	return guard(op, func() Result {
		if originalDate.IsZero() {
			return failed(op, ErrInvalidDate)
		}
		originalDate = ev.InSeriesZone(originalDate)

		base := ev.CalendarEvent.Clone()
		base.ID = uuid.NewString()
		base.IsRecurrent = false
		base.StartTime = datemath.WithClock(originalDate, ev.StartTime)
		base.EndTime = base.StartTime.Add(ev.Duration())

		detached := mergePatch(newEventData, base, true)
		if detached.EndTime.Before(detached.StartTime) {
			return failed(op, ErrInvalidTiming)
		}

		deleted := DeleteInstance(ev, originalDate)
		if !deleted.Success {
			return deleted
		}

		return Result{
			Success:      true,
			Message:      fmt.Sprintf("instance on %s converted to independent event %s", dayLabel(originalDate), detached.ID),
			UpdatedEvent: deleted.UpdatedEvent,
			NewEvent:     &detached,
		}
	})
}

// CanApplyException is an advisory check. Past dates are always allowed so
// history can be corrected; dates after the rule's Until day are not.
func CanApplyException(ev event.RecurrentEvent, targetDate time.Time) (bool, string) {
	if targetDate.IsZero() {
		return false, "invalid date"
	}
	targetDate = ev.InSeriesZone(targetDate)
	if until := ev.RecurrenceRule.Until; until != nil {
		last := ev.InSeriesZone(*until)
		if datemath.DaysBetween(last, targetDate) > 0 {
			return false, fmt.Sprintf("%s is after the end of the series (%s)", dayLabel(targetDate), dayLabel(last))
		}
	}
	return true, ""
}

// Summary partitions the exceptions of a series.
type Summary struct {
	Modified []event.Exception
	Deleted  []event.Exception
	Total    int
}

// ListExceptions returns the exceptions of ev grouped by type, each group
// in insertion order.
func ListExceptions(ev event.RecurrentEvent) Summary {
	s := Summary{
		Modified: make([]event.Exception, 0),
		Deleted:  make([]event.Exception, 0),
	}
	for _, ex := range ev.Exceptions.All() {
		switch ex.Type {
		case event.ExceptionModified:
			s.Modified = append(s.Modified, ex)
		case event.ExceptionDeleted:
			s.Deleted = append(s.Deleted, ex)
		}
		s.Total++
	}
	return s
}

// mergePatch applies p to e. A patch that moves StartTime without an
// EndTime keeps the event's duration.
func mergePatch(p event.Patch, e event.CalendarEvent, withID bool) event.CalendarEvent {
	duration := e.Duration()
	var out event.CalendarEvent
	if withID {
		out = p.ApplyWithID(e)
	} else {
		out = p.Apply(e)
	}
	if p.StartTime != nil && p.EndTime == nil {
		out.EndTime = out.StartTime.Add(duration)
	}
	return out
}
