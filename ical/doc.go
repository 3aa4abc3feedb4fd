// Package ical converts recurring series to and from RFC 5545 calendars
// using go-ical. A series maps to a master VEVENT with RRULE and EXDATE,
// plus one override VEVENT with RECURRENCE-ID per modified instance.
package ical
