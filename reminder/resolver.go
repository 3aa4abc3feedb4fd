package reminder

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/calrecur/event"
)

// WeatherProvider fetches the forecast for a point at a time.
type WeatherProvider interface {
	Weather(ctx context.Context, at event.GeoPoint, when time.Time) (Weather, error)
}

// TrafficProvider estimates a trip departing at departAt.
type TrafficProvider interface {
	Traffic(ctx context.Context, from, to event.GeoPoint, departAt time.Time) (Traffic, error)
}

// ResolverConfig wires providers and caches into a Resolver. Nil providers
// leave the matching context field absent. Nil caches are replaced by
// fresh ones using DefaultCacheConfig.
type ResolverConfig struct {
	Weather      WeatherProvider
	Traffic      TrafficProvider
	WeatherCache *ContextCache[Weather]
	TrafficCache *ContextCache[Traffic]
	Logger       *slog.Logger
}

// Resolver fills a SmartContext from external providers. It is the only
// part of the package that performs I/O.
type Resolver struct {
	weather      WeatherProvider
	traffic      TrafficProvider
	weatherCache *ContextCache[Weather]
	trafficCache *ContextCache[Traffic]
	logger       *slog.Logger
}

// NewResolver creates a resolver
func NewResolver(config ResolverConfig) *Resolver {
	r := &Resolver{
		weather:      config.Weather,
		traffic:      config.Traffic,
		weatherCache: config.WeatherCache,
		trafficCache: config.TrafficCache,
		logger:       config.Logger,
	}
	if r.weatherCache == nil {
		r.weatherCache = NewContextCache[Weather](DefaultCacheConfig)
	}
	if r.trafficCache == nil {
		r.trafficCache = NewContextCache[Traffic](DefaultCacheConfig)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Resolve builds the context for ev. Weather is looked up at the event
// coordinates, or at the user's location when the event has none. Traffic
// needs both. Provider failures are logged and leave the field absent.
func (r *Resolver) Resolve(ctx context.Context, ev event.CalendarEvent, loc mo.Option[UserLocation], status mo.Option[UserStatus]) SmartContext {
	out := SmartContext{
		UserLocation: loc,
		UserStatus:   status,
	}

	var weatherAt mo.Option[event.GeoPoint]
	if ev.Coordinates != nil {
		weatherAt = mo.Some(*ev.Coordinates)
	} else if l, ok := loc.Get(); ok {
		weatherAt = mo.Some(l.Point())
	}

	if p, ok := weatherAt.Get(); ok && r.weather != nil {
		if w, err := r.fetchWeather(ctx, p, ev.StartTime).Get(); err == nil {
			out.Weather = mo.Some(w)
		}
	}

	if l, ok := loc.Get(); ok && ev.Coordinates != nil && r.traffic != nil {
		if t, err := r.fetchTraffic(ctx, l.Point(), *ev.Coordinates, ev.StartTime).Get(); err == nil {
			out.Traffic = mo.Some(t)
		}
	}

	return out
}

func (r *Resolver) fetchWeather(ctx context.Context, at event.GeoPoint, when time.Time) mo.Result[Weather] {
	key := LocationKey(at)
	if w, ok := r.weatherCache.Get(key); ok {
		return mo.Ok(w)
	}

	res := mo.TupleToResult(r.weather.Weather(ctx, at, when))
	if res.IsError() {
		r.logger.Warn("weather lookup failed",
			"latitude", at.Latitude,
			"longitude", at.Longitude,
			"error", res.Error())
		return res
	}

	r.weatherCache.Set(key, res.MustGet())
	return res
}

func (r *Resolver) fetchTraffic(ctx context.Context, from, to event.GeoPoint, departAt time.Time) mo.Result[Traffic] {
	key := RouteKey(from, to, departAt)
	if t, ok := r.trafficCache.Get(key); ok {
		return mo.Ok(t)
	}

	res := mo.TupleToResult(r.traffic.Traffic(ctx, from, to, departAt))
	if res.IsError() {
		r.logger.Warn("traffic lookup failed",
			"from", from,
			"to", to,
			"error", res.Error())
		return res
	}

	r.trafficCache.Set(key, res.MustGet())
	return res
}

// ClearOldCache drops expired entries from both caches.
func (r *Resolver) ClearOldCache() int {
	return r.weatherCache.ClearOldCache() + r.trafficCache.ClearOldCache()
}

// Close releases both caches.
func (r *Resolver) Close() {
	r.weatherCache.Close()
	r.trafficCache.Close()
}
