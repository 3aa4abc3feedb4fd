package reminder

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cyp0633/calrecur/event"
)

// MockWeatherProvider implements WeatherProvider for testing
type MockWeatherProvider struct {
	mock.Mock
}

// Weather implements WeatherProvider
func (m *MockWeatherProvider) Weather(ctx context.Context, at event.GeoPoint, when time.Time) (Weather, error) {
	args := m.Called(ctx, at, when)
	return args.Get(0).(Weather), args.Error(1)
}

// MockTrafficProvider implements TrafficProvider for testing
type MockTrafficProvider struct {
	mock.Mock
}

// Traffic implements TrafficProvider
func (m *MockTrafficProvider) Traffic(ctx context.Context, from, to event.GeoPoint, departAt time.Time) (Traffic, error) {
	args := m.Called(ctx, from, to, departAt)
	return args.Get(0).(Traffic), args.Error(1)
}
