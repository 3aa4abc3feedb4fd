package event

import (
	"time"

	"github.com/cyp0633/calrecur/internal/datemath"
)

// ExceptionType tells whether an exception changes or cancels an instance
type ExceptionType string

const (
	ExceptionModified ExceptionType = "MODIFIED"
	ExceptionDeleted  ExceptionType = "DELETED"
)

// Exception overrides the instance that would occur on OriginalDate.
// Only the calendar day of OriginalDate is significant.
type Exception struct {
	OriginalDate time.Time
	Type         ExceptionType
	// Patch is set for ExceptionModified and nil for ExceptionDeleted.
	Patch *Patch
}

func (ex Exception) clone() Exception {
	out := ex
	if ex.Patch != nil {
		p := ex.Patch.Clone()
		out.Patch = &p
	}
	return out
}

// ExceptionSet holds at most one exception per calendar day, in insertion
// order. Writing a day that already has an exception replaces it in place.
// The zero value is an empty set. Mutating methods return a new set.
type ExceptionSet struct {
	order []datemath.DayKey
	byDay map[datemath.DayKey]Exception
}

// NewExceptionSet builds a set from excs. Later entries win per day.
func NewExceptionSet(excs ...Exception) ExceptionSet {
	s := ExceptionSet{}
	for _, ex := range excs {
		s = s.Upsert(ex)
	}
	return s
}

// Len returns the number of exceptions.
func (s ExceptionSet) Len() int {
	return len(s.order)
}

// Get returns the exception for date's calendar day.
func (s ExceptionSet) Get(date time.Time) (Exception, bool) {
	ex, ok := s.byDay[datemath.DayKeyOf(date)]
	if !ok {
		return Exception{}, false
	}
	return ex.clone(), true
}

// Has reports whether date's calendar day has an exception.
func (s ExceptionSet) Has(date time.Time) bool {
	_, ok := s.byDay[datemath.DayKeyOf(date)]
	return ok
}

// Upsert returns a copy of s with ex stored under its day, replacing any
// existing exception for that day at its original position.
func (s ExceptionSet) Upsert(ex Exception) ExceptionSet {
	out := s.clone()
	key := datemath.DayKeyOf(ex.OriginalDate)
	if _, exists := out.byDay[key]; !exists {
		out.order = append(out.order, key)
	}
	out.byDay[key] = ex.clone()
	return out
}

// Remove returns a copy of s without date's exception. removed is false when
// there was nothing to remove.
func (s ExceptionSet) Remove(date time.Time) (out ExceptionSet, removed bool) {
	key := datemath.DayKeyOf(date)
	if _, ok := s.byDay[key]; !ok {
		return s.clone(), false
	}
	out = s.clone()
	delete(out.byDay, key)
	for i, k := range out.order {
		if k == key {
			out.order = append(out.order[:i], out.order[i+1:]...)
			break
		}
	}
	return out, true
}

// All returns the exceptions in insertion order.
func (s ExceptionSet) All() []Exception {
	out := make([]Exception, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byDay[key].clone())
	}
	return out
}

func (s ExceptionSet) clone() ExceptionSet {
	out := ExceptionSet{
		order: make([]datemath.DayKey, len(s.order)),
		byDay: make(map[datemath.DayKey]Exception, len(s.byDay)),
	}
	copy(out.order, s.order)
	for k, v := range s.byDay {
		out.byDay[k] = v.clone()
	}
	return out
}
