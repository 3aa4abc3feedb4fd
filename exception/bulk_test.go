package exception

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/calrecur/event"
)

func TestBulkDeleteInstances_PartialFailureKeepsSuccesses(t *testing.T) {
	series := dailyStandup()

	res := BulkDeleteInstances(series, []time.Time{day(2), {}, day(4)})

	assert.False(t, res.Success)
	require.Len(t, res.Items, 3)
	assert.True(t, res.Items[0].Success)
	assert.False(t, res.Items[1].Success)
	assert.ErrorIs(t, res.Items[1].Err, ErrInvalidDate)
	assert.True(t, res.Items[2].Success)

	require.NotNil(t, res.UpdatedEvent)
	assert.Equal(t, 2, res.UpdatedEvent.Exceptions.Len())
	assert.True(t, res.UpdatedEvent.Exceptions.Has(day(2)))
	assert.True(t, res.UpdatedEvent.Exceptions.Has(day(4)))
	assert.Contains(t, res.Message, "2 of 3 instances deleted")
	assert.Contains(t, res.Message, "2024-01-02: ok")

	assert.Equal(t, 0, series.Exceptions.Len())
}

func TestBulkModifyInstances(t *testing.T) {
	series := dailyStandup()

	res := BulkModifyInstances(series, []Modification{
		{Date: day(5), Patch: event.Patch{Title: strPtr("A")}},
		{Date: day(6), Patch: event.Patch{Location: strPtr("Room 9")}},
		{Date: day(5), Patch: event.Patch{Title: strPtr("B")}},
	})

	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "3 of 3 instances modified")
	require.NotNil(t, res.UpdatedEvent)
	assert.Equal(t, 2, res.UpdatedEvent.Exceptions.Len())

	ex, ok := res.UpdatedEvent.Exceptions.Get(day(5))
	require.True(t, ok)
	assert.Equal(t, "B", *ex.Patch.Title)
}

func TestBulkEmpty(t *testing.T) {
	res := BulkDeleteInstances(dailyStandup(), nil)
	assert.True(t, res.Success)
	assert.Empty(t, res.Items)
	assert.Equal(t, "0 of 0 instances deleted", res.Message)
}
