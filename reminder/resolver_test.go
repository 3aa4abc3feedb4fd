package reminder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/calrecur/event"
)

func TestResolver_FillsAndCaches(t *testing.T) {
	ev := officeEvent()
	loc := UserLocation{Latitude: 0, Longitude: 0.1}

	weather := new(MockWeatherProvider)
	weather.On("Weather", mock.Anything, *ev.Coordinates, ev.StartTime).
		Return(Weather{Condition: Rain, TemperatureC: 18}, nil).Once()
	traffic := new(MockTrafficProvider)
	traffic.On("Traffic", mock.Anything, loc.Point(), *ev.Coordinates, ev.StartTime).
		Return(Traffic{
			EstimatedTravelTime: 50 * time.Minute,
			NormalTravelTime:    30 * time.Minute,
			Congestion:          CongestionHigh,
		}, nil).Once()

	r := NewResolver(ResolverConfig{Weather: weather, Traffic: traffic})
	defer r.Close()

	status := mo.Some(UserStatus{Active: true})
	ctx := r.Resolve(context.Background(), ev, mo.Some(loc), status)

	w, ok := ctx.Weather.Get()
	require.True(t, ok)
	assert.Equal(t, Rain, w.Condition)
	assert.True(t, ctx.Traffic.IsPresent())
	assert.Equal(t, mo.Some(loc), ctx.UserLocation)
	assert.Equal(t, status, ctx.UserStatus)

	// Second resolve is served from the caches.
	_ = r.Resolve(context.Background(), ev, mo.Some(loc), status)
	weather.AssertExpectations(t)
	traffic.AssertExpectations(t)
	weather.AssertNumberOfCalls(t, "Weather", 1)
	traffic.AssertNumberOfCalls(t, "Traffic", 1)

	got := CalculateSmartTiming(ev, baseTiming(), ctx)
	assert.InDelta(t, 50, got.Value, 1e-9)
}

func TestResolver_WeatherAtUserWithoutEventCoordinates(t *testing.T) {
	ev := officeEvent()
	ev.Coordinates = nil
	user := UserLocation{Latitude: 1, Longitude: 2}

	weather := new(MockWeatherProvider)
	weather.On("Weather", mock.Anything, event.GeoPoint{Latitude: 1, Longitude: 2}, ev.StartTime).
		Return(Weather{Condition: Clear, TemperatureC: 20}, nil)
	traffic := new(MockTrafficProvider)

	r := NewResolver(ResolverConfig{Weather: weather, Traffic: traffic})
	defer r.Close()

	ctx := r.Resolve(context.Background(), ev, mo.Some(user), mo.None[UserStatus]())
	assert.True(t, ctx.Weather.IsPresent())
	assert.True(t, ctx.Traffic.IsAbsent())

	weather.AssertExpectations(t)
	traffic.AssertNotCalled(t, "Traffic", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_ProviderFailureLeavesFieldAbsent(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	weather := new(MockWeatherProvider)
	weather.On("Weather", mock.Anything, mock.Anything, mock.Anything).
		Return(Weather{}, errors.New("upstream timeout"))
	traffic := new(MockTrafficProvider)
	traffic.On("Traffic", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(Traffic{}, errors.New("no route"))

	r := NewResolver(ResolverConfig{Weather: weather, Traffic: traffic, Logger: logger})
	defer r.Close()

	ctx := r.Resolve(context.Background(), officeEvent(), mo.Some(UserLocation{Latitude: 0, Longitude: 0.1}), mo.None[UserStatus]())
	assert.True(t, ctx.Weather.IsAbsent())
	assert.True(t, ctx.Traffic.IsAbsent())
	assert.True(t, ctx.UserLocation.IsPresent())

	assert.Contains(t, logs.String(), "weather lookup failed")
	assert.Contains(t, logs.String(), "upstream timeout")
	assert.Contains(t, logs.String(), "traffic lookup failed")

	// Failures are not cached.
	_ = r.Resolve(context.Background(), officeEvent(), mo.None[UserLocation](), mo.None[UserStatus]())
	weather.AssertNumberOfCalls(t, "Weather", 2)
}

func TestResolver_NoProviders(t *testing.T) {
	r := NewResolver(ResolverConfig{})
	defer r.Close()

	ctx := r.Resolve(context.Background(), officeEvent(), mo.Some(UserLocation{}), mo.None[UserStatus]())
	assert.True(t, ctx.Weather.IsAbsent())
	assert.True(t, ctx.Traffic.IsAbsent())
	assert.Equal(t, 0, r.ClearOldCache())
}
