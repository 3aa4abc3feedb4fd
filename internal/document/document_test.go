package document

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cyp0633/calrecur/event"
	"github.com/cyp0633/calrecur/recurrence"
	"github.com/cyp0633/calrecur/reminder"
)

const seriesYAML = `
id: standup
title: Standup
location: Room 4
coordinates: {latitude: -23.55, longitude: -46.63}
start: 2024-01-01T09:00
end: 2024-01-01T09:30
rule:
  frequency: weekly
  by_week_day: [mo, we, fr]
  count: 9
exceptions:
  - date: 2024-01-03
    type: deleted
  - date: 2024-01-05
    type: MODIFIED
    patch:
      title: Standup (remote)
      start: 2024-01-05T10:00
reminder:
  value: 1
  unit: hours
  description: 1 hour before
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseTime(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	tests := []struct {
		in       string
		expected time.Time
	}{
		{"2024-01-05T10:00:00Z", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{"2024-01-05T10:00:00", time.Date(2024, 1, 5, 10, 0, 0, 0, loc)},
		{"2024-01-05T10:00", time.Date(2024, 1, 5, 10, 0, 0, 0, loc)},
		{"2024-01-05 10:00", time.Date(2024, 1, 5, 10, 0, 0, 0, loc)},
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in, loc)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}

	_, err = ParseTime("next tuesday", loc)
	assert.Error(t, err)
}

func TestSeriesToEvent(t *testing.T) {
	doc, err := LoadSeries(writeFile(t, "series.yaml", seriesYAML))
	require.NoError(t, err)

	ev, err := doc.ToEvent(time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "standup", ev.ID)
	assert.Equal(t, 30*time.Minute, ev.Duration())
	assert.True(t, ev.IsRecurrent)
	require.NotNil(t, ev.Coordinates)
	assert.Equal(t, -46.63, ev.Coordinates.Longitude)

	assert.Equal(t, recurrence.Weekly, ev.RecurrenceRule.Frequency)
	assert.Equal(t, 1, ev.RecurrenceRule.Interval)
	assert.Equal(t, []recurrence.Weekday{recurrence.MO, recurrence.WE, recurrence.FR}, ev.RecurrenceRule.ByWeekDay)
	assert.True(t, recurrence.ValidateRule(ev.RecurrenceRule).Valid)

	require.Equal(t, 2, ev.Exceptions.Len())
	deleted, ok := ev.Exceptions.Get(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, event.ExceptionDeleted, deleted.Type)

	modified, ok := ev.Exceptions.Get(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.NotNil(t, modified.Patch)
	assert.Equal(t, "Standup (remote)", *modified.Patch.Title)
	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), *modified.Patch.StartTime)

	timing, err := doc.BaseTiming()
	require.NoError(t, err)
	assert.Equal(t, reminder.Timing{Value: 1, Unit: reminder.Hours, Description: "1 hour before"}, timing)
}

func TestSeriesToEvent_RRule(t *testing.T) {
	doc := Series{
		ID:    "board",
		Start: "2024-01-29T18:00:00Z",
		End:   "2024-01-29T20:00:00Z",
		Rule:  Rule{RRule: "FREQ=MONTHLY;BYDAY=-1MO;COUNT=12"},
	}
	ev, err := doc.ToEvent(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []int{-1}, ev.RecurrenceRule.BySetPos)

	doc.Rule.Frequency = "MONTHLY"
	_, err = doc.ToEvent(time.UTC)
	assert.Error(t, err)
}

func TestSeriesToEvent_Errors(t *testing.T) {
	base := Series{Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:00:00Z", Rule: Rule{Frequency: "DAILY"}}

	bad := base
	bad.Start = "soon"
	_, err := bad.ToEvent(time.UTC)
	assert.Error(t, err)

	bad = base
	bad.End = "2024-01-01T08:00:00Z"
	_, err = bad.ToEvent(time.UTC)
	assert.Error(t, err)

	bad = base
	bad.Exceptions = []Exception{{Date: "2024-01-02", Type: "POSTPONED"}}
	_, err = bad.ToEvent(time.UTC)
	assert.Error(t, err)

	bad = base
	bad.Reminder = &Timing{Value: 5, Unit: "fortnights"}
	_, err = bad.BaseTiming()
	assert.Error(t, err)
}

func TestFromEventRoundTrip(t *testing.T) {
	doc, err := LoadSeries(writeFile(t, "series.yaml", seriesYAML))
	require.NoError(t, err)
	ev, err := doc.ToEvent(time.UTC)
	require.NoError(t, err)

	out, err := yaml.Marshal(FromEvent(ev))
	require.NoError(t, err)

	var again Series
	require.NoError(t, yaml.Unmarshal(out, &again))
	ev2, err := again.ToEvent(time.UTC)
	require.NoError(t, err)

	assert.Equal(t, ev.ID, ev2.ID)
	assert.True(t, ev.StartTime.Equal(ev2.StartTime))
	assert.Equal(t, ev.Duration(), ev2.Duration())
	assert.Equal(t, ev.RecurrenceRule.ByWeekDay, ev2.RecurrenceRule.ByWeekDay)
	assert.Equal(t, *ev.RecurrenceRule.Count, *ev2.RecurrenceRule.Count)
	assert.Equal(t, ev.Exceptions.Len(), ev2.Exceptions.Len())
}

func TestContextToSmartContext(t *testing.T) {
	path := writeFile(t, "ctx.yaml", `
now: 2024-01-05T07:00:00Z
weather: {condition: rain, temperature_c: 3, precipitation_mm: 8, wind_speed_kmh: 30}
traffic: {estimated_minutes: 50, normal_minutes: 30, congestion: severe}
user_location: {latitude: -23.6, longitude: -46.7}
user_status: {active: false, activity: driving}
`)
	doc, err := LoadContext(path)
	require.NoError(t, err)

	now, err := doc.NowOr(time.Time{}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 7, 0, 0, 0, time.UTC), now)

	ctx, err := doc.ToSmartContext(time.UTC)
	require.NoError(t, err)

	w, ok := ctx.Weather.Get()
	require.True(t, ok)
	assert.Equal(t, reminder.Rain, w.Condition)
	assert.Equal(t, 30.0, w.WindSpeedKmh.OrEmpty())
	assert.True(t, w.HumidityPct.IsAbsent())

	tr, ok := ctx.Traffic.Get()
	require.True(t, ok)
	assert.Equal(t, 50*time.Minute, tr.EstimatedTravelTime)
	assert.Equal(t, reminder.CongestionSevere, tr.Congestion)

	assert.True(t, ctx.UserLocation.IsPresent())
	s, ok := ctx.UserStatus.Get()
	require.True(t, ok)
	assert.False(t, s.Active)
	assert.Equal(t, "driving", s.CurrentActivity.OrEmpty())
}

func TestContextToSmartContext_Empty(t *testing.T) {
	ctx, err := Context{}.ToSmartContext(time.UTC)
	require.NoError(t, err)
	assert.True(t, ctx.Weather.IsAbsent())
	assert.True(t, ctx.Traffic.IsAbsent())
	assert.True(t, ctx.UserLocation.IsAbsent())
	assert.True(t, ctx.UserStatus.IsAbsent())

	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now, err := Context{}.NowOr(fallback, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, fallback, now)
}

func TestContextToSmartContext_Unknown(t *testing.T) {
	_, err := Context{Weather: &Weather{Condition: "hail"}}.ToSmartContext(time.UTC)
	assert.Error(t, err)

	_, err = Context{Traffic: &Traffic{Congestion: "gridlock"}}.ToSmartContext(time.UTC)
	assert.Error(t, err)
}
