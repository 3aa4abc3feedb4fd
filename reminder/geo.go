package reminder

import (
	"math"
	"time"

	"github.com/cyp0633/calrecur/event"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b event.GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Point converts the user location to a GeoPoint.
func (l UserLocation) Point() event.GeoPoint {
	return event.GeoPoint{Latitude: l.Latitude, Longitude: l.Longitude}
}

// travelTime estimates the trip to the event at the policy average speed.
// ok is false when the event has no coordinates.
func (e *Engine) travelTime(loc UserLocation, ev event.CalendarEvent) (time.Duration, bool) {
	if ev.Coordinates == nil {
		return 0, false
	}
	km := DistanceKm(loc.Point(), *ev.Coordinates)
	hours := km / e.policy.AverageSpeedKmh
	return time.Duration(hours * float64(time.Hour)), true
}

// EstimateTravelTime estimates the trip from loc to the event with
// DefaultPolicy.
func EstimateTravelTime(loc UserLocation, ev event.CalendarEvent) (time.Duration, bool) {
	return defaultEngine.travelTime(loc, ev)
}
