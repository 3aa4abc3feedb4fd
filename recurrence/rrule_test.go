package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAndParseRRule_RoundTrip(t *testing.T) {
	until := date(2024, 6, 30, 0, 0)

	rules := []RecurrenceRule{
		{Frequency: Daily, Interval: 3, Count: intPtr(10)},
		{Frequency: Weekly, Interval: 2, ByWeekDay: []Weekday{MO, WE, FR}, Until: &until},
		{Frequency: Monthly, Interval: 1, ByWeekDay: []Weekday{MO}, BySetPos: []int{-1}},
		{Frequency: Monthly, Interval: 1, ByMonthDay: []int{1, 15}},
		{Frequency: Yearly, Interval: 4},
	}

	for _, rule := range rules {
		text := FormatRRule(rule)
		assert.Contains(t, text, "FREQ="+string(rule.Frequency))
		assert.NotContains(t, text, "RRULE:")

		parsed, err := ParseRRule(text)
		require.NoError(t, err, text)

		assert.Equal(t, rule.Frequency, parsed.Frequency)
		assert.Equal(t, rule.Interval, parsed.Interval)
		assert.Equal(t, rule.Count, parsed.Count)
		if rule.Until != nil {
			require.NotNil(t, parsed.Until)
			assert.True(t, rule.Until.Equal(*parsed.Until))
		} else {
			assert.Nil(t, parsed.Until)
		}
		assert.ElementsMatch(t, rule.ByWeekDay, parsed.ByWeekDay)
		assert.ElementsMatch(t, rule.ByMonthDay, parsed.ByMonthDay)
		assert.ElementsMatch(t, rule.BySetPos, parsed.BySetPos)
	}
}

func TestParseRRule_OrdinalWeekday(t *testing.T) {
	rule, err := ParseRRule("RRULE:FREQ=MONTHLY;BYDAY=-1MO")
	require.NoError(t, err)

	assert.Equal(t, Monthly, rule.Frequency)
	assert.Equal(t, 1, rule.Interval)
	assert.Equal(t, []Weekday{MO}, rule.ByWeekDay)
	assert.Equal(t, []int{-1}, rule.BySetPos)
	assert.True(t, ValidateRule(rule).Valid)
}

func TestParseRRule_Unsupported(t *testing.T) {
	inputs := []string{
		"FREQ=HOURLY;INTERVAL=2",
		"FREQ=YEARLY;BYMONTH=3",
		"FREQ=MONTHLY;BYDAY=1MO,-1FR",
	}
	for _, in := range inputs {
		_, err := ParseRRule(in)
		assert.ErrorIs(t, err, ErrUnsupportedRRule, in)
	}

	_, err := ParseRRule("FREQ=NOPE")
	assert.Error(t, err)
}
