package ical

import (
	"strings"
	"testing"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/exception"
	"github.com/cyp0633/calrecur/recurrence"
)

var stamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func day(d int) time.Time {
	return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC)
}

func weeklySync() event.RecurrentEvent {
	count := 8
	return event.RecurrentEvent{
		CalendarEvent: event.CalendarEvent{
			ID:          "sync-42",
			Title:       "Team sync",
			Description: "Weekly status, blockers, next steps",
			Location:    "Room 4",
			Coordinates: &event.GeoPoint{Latitude: -23.55, Longitude: -46.63},
			StartTime:   day(1),
			EndTime:     day(1).Add(time.Hour),
			IsRecurrent: true,
		},
		RecurrenceRule: recurrence.RecurrenceRule{
			Frequency: recurrence.Weekly,
			Interval:  1,
			Count:     &count,
			ByWeekDay: []recurrence.Weekday{recurrence.MO, recurrence.TH},
		},
	}
}

func withExceptions(t *testing.T) event.RecurrentEvent {
	t.Helper()
	series := weeklySync()

	res := exception.DeleteInstance(series, day(4))
	require.True(t, res.Success)
	moved := time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC)
	res = exception.ModifyInstance(*res.UpdatedEvent, day(8), event.Patch{
		Title:     strPtr("Team sync (moved)"),
		StartTime: &moved,
	})
	require.True(t, res.Success)
	return *res.UpdatedEvent
}

func TestEncodeSeries(t *testing.T) {
	cal, err := EncodeSeries(withExceptions(t), stamp)
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	master := events[0]
	uid, err := master.Props.Text(goical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "sync-42", uid)
	rule, err := recurrence.ParseRRule(master.Props.Get(goical.PropRecurrenceRule).Value)
	require.NoError(t, err)
	assert.Equal(t, recurrence.Weekly, rule.Frequency)
	require.NotNil(t, rule.Count)
	assert.Equal(t, 8, *rule.Count)
	assert.Equal(t, []recurrence.Weekday{recurrence.MO, recurrence.TH}, rule.ByWeekDay)

	exdates := master.Props.Values(goical.PropExceptionDates)
	require.Len(t, exdates, 1)
	assert.Equal(t, "20240104T090000Z", exdates[0].Value)
	assert.Equal(t, "-23.550000;-46.630000", master.Props.Get(propGeo).Value)

	override := events[1]
	assert.Equal(t, "20240108T090000Z", override.Props.Get(propRecurrenceID).Value)
	summary, _ := override.Props.Text(goical.PropSummary)
	assert.Equal(t, "Team sync (moved)", summary)
	start, err := override.Props.DateTime(goical.PropDateTimeStart, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC), start)
	end, err := override.Props.DateTime(goical.PropDateTimeEnd, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), end)
	location, _ := override.Props.Text(goical.PropLocation)
	assert.Equal(t, "Room 4", location)
}

func TestEncodeSeries_Invalid(t *testing.T) {
	series := weeklySync()
	series.RecurrenceRule.ByMonthDay = []int{3}

	_, err := EncodeSeries(series, stamp)
	assert.ErrorIs(t, err, ErrInvalidSeries)
	assert.Contains(t, err.Error(), recurrence.MsgWeeklyByMonthDay)
}

func TestEncodeSeries_GeneratesUID(t *testing.T) {
	series := weeklySync()
	series.ID = ""

	cal, err := EncodeSeries(series, stamp)
	require.NoError(t, err)
	uid, _ := cal.Events()[0].Props.Text(goical.PropUID)
	assert.Len(t, uid, 36)
}

func TestRoundTrip(t *testing.T) {
	original := withExceptions(t)

	data, err := MarshalSeries(original, stamp)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))

	decoded, err := UnmarshalSeries(data)
	require.NoError(t, err)

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Title, decoded.Title)
	assert.Equal(t, original.Description, decoded.Description)
	assert.Equal(t, original.Location, decoded.Location)
	assert.Equal(t, *original.Coordinates, *decoded.Coordinates)
	assert.True(t, original.StartTime.Equal(decoded.StartTime))
	assert.Equal(t, original.Duration(), decoded.Duration())
	assert.True(t, decoded.IsRecurrent)
	assert.Equal(t, recurrence.FormatRRule(original.RecurrenceRule), recurrence.FormatRRule(decoded.RecurrenceRule))

	require.Equal(t, 2, decoded.Exceptions.Len())
	deleted, ok := decoded.Exceptions.Get(day(4))
	require.True(t, ok)
	assert.Equal(t, event.ExceptionDeleted, deleted.Type)

	modified, ok := decoded.Exceptions.Get(day(8))
	require.True(t, ok)
	require.NotNil(t, modified.Patch)
	assert.Equal(t, "Team sync (moved)", *modified.Patch.Title)
	assert.Nil(t, modified.Patch.Location)
	assert.Nil(t, modified.Patch.EndTime)

	from, to := day(1), day(31)
	want, err := exception.EffectiveInstances(original, from, to, 0)
	require.NoError(t, err)
	got, err := exception.EffectiveInstances(decoded, from, to, 0)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].StartDate.Equal(got[i].StartDate), "instance %d", i)
		assert.True(t, want[i].EndDate.Equal(got[i].EndDate), "instance %d", i)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Modified, got[i].Modified)
	}
}

func TestDecodeSeries_CancelledOverrideAndExdateList(t *testing.T) {
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:yoga",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240102T070000Z",
		"DURATION:PT45M",
		"SUMMARY:Yoga",
		"RRULE:FREQ=DAILY;INTERVAL=2",
		"EXDATE:20240104T070000Z,20240106T070000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:yoga",
		"DTSTAMP:20240101T000000Z",
		"RECURRENCE-ID:20240108T070000Z",
		"DTSTART:20240108T070000Z",
		"DTEND:20240108T074500Z",
		"STATUS:CANCELLED",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:someone-else",
		"DTSTAMP:20240101T000000Z",
		"RECURRENCE-ID:20240110T070000Z",
		"DTSTART:20240110T080000Z",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	series, err := UnmarshalSeries([]byte(ics))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, series.Duration())
	assert.Equal(t, recurrence.Daily, series.RecurrenceRule.Frequency)
	assert.Equal(t, 2, series.RecurrenceRule.Interval)

	summary := exception.ListExceptions(series)
	assert.Equal(t, 3, summary.Total)
	assert.Len(t, summary.Deleted, 3)

	occ, err := exception.EffectiveInstances(series, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	require.Len(t, occ, 2)
	assert.Equal(t, 2, occ[0].StartDate.Day())
	assert.Equal(t, 10, occ[1].StartDate.Day())
}

func TestDecodeSeries_NoSeries(t *testing.T) {
	cal := goical.NewCalendar()
	single := goical.NewEvent()
	single.Props.SetText(goical.PropUID, "one-off")
	single.Props.SetDateTime(goical.PropDateTimeStart, day(1))
	cal.Children = append(cal.Children, single.Component)

	_, err := DecodeSeries(cal)
	assert.ErrorIs(t, err, ErrNoSeries)
}

func TestDecodeSeries_UnsupportedRule(t *testing.T) {
	cal := goical.NewCalendar()
	ev := goical.NewEvent()
	ev.Props.SetText(goical.PropUID, "hourly")
	ev.Props.SetDateTime(goical.PropDateTimeStart, day(1))
	rule := goical.NewProp(goical.PropRecurrenceRule)
	rule.Value = "FREQ=HOURLY"
	ev.Props.Set(rule)
	cal.Children = append(cal.Children, ev.Component)

	_, err := DecodeSeries(cal)
	assert.ErrorIs(t, err, recurrence.ErrUnsupportedRRule)
}

func TestDecodeSeries_UTCExceptionsOfZonedSeries(t *testing.T) {
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:late-call",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;TZID=America/Sao_Paulo:20240101T220000",
		"DTEND;TZID=America/Sao_Paulo:20240101T230000",
		"SUMMARY:Late call",
		"RRULE:FREQ=DAILY;COUNT=5",
		"EXDATE:20240104T010000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:late-call",
		"DTSTAMP:20240101T000000Z",
		"RECURRENCE-ID:20240103T010000Z",
		"DTSTART;TZID=America/Sao_Paulo:20240102T220000",
		"DTEND;TZID=America/Sao_Paulo:20240102T230000",
		"SUMMARY:Late call (short agenda)",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	series, err := UnmarshalSeries([]byte(ics))
	require.NoError(t, err)
	loc := series.StartTime.Location()
	require.Equal(t, "America/Sao_Paulo", loc.String())

	occ, err := exception.EffectiveInstances(series, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), time.Date(2024, 1, 6, 0, 0, 0, 0, loc), 0)
	require.NoError(t, err)
	require.Len(t, occ, 4)

	days := make([]int, 0, len(occ))
	for _, o := range occ {
		days = append(days, o.StartDate.In(loc).Day())
	}
	assert.Equal(t, []int{1, 2, 4, 5}, days)
	assert.Equal(t, "Late call (short agenda)", occ[1].Title)
	assert.True(t, occ[1].Modified)
}
