package reminder

import (
	"time"

	"github.com/samber/mo"
)

// TimingUnit is the unit of a reminder lead time
type TimingUnit string

const (
	Minutes TimingUnit = "MINUTES"
	Hours   TimingUnit = "HOURS"
	Days    TimingUnit = "DAYS"
	Weeks   TimingUnit = "WEEKS"
)

// IsValid reports whether u is one of the four supported units.
func (u TimingUnit) IsValid() bool {
	switch u {
	case Minutes, Hours, Days, Weeks:
		return true
	default:
		return false
	}
}

// Timing is a reminder lead time, e.g. 15 MINUTES before the event.
// Value may be fractional after adjustment (1.25 HOURS).
type Timing struct {
	Value       float64
	Unit        TimingUnit
	Description string
}

// Lead returns the timing as a duration.
func (t Timing) Lead() time.Duration {
	return time.Duration(ToMinutes(t) * float64(time.Minute))
}

// WeatherCondition is a coarse weather classification
type WeatherCondition string

const (
	Clear  WeatherCondition = "CLEAR"
	Cloudy WeatherCondition = "CLOUDY"
	Rain   WeatherCondition = "RAIN"
	Storm  WeatherCondition = "STORM"
	Snow   WeatherCondition = "SNOW"
	Fog    WeatherCondition = "FOG"
)

// Weather is the forecast at the event location
type Weather struct {
	Condition       WeatherCondition
	TemperatureC    float64
	PrecipitationMM float64
	WindSpeedKmh    mo.Option[float64]
	HumidityPct     mo.Option[float64]
}

// CongestionLevel grades current traffic
type CongestionLevel string

const (
	CongestionLow      CongestionLevel = "LOW"
	CongestionModerate CongestionLevel = "MODERATE"
	CongestionHigh     CongestionLevel = "HIGH"
	CongestionSevere   CongestionLevel = "SEVERE"
)

// Route is an alternative path suggested by a traffic provider.
type Route struct {
	Name                string
	EstimatedTravelTime time.Duration
}

// Traffic compares the current estimate to the usual travel time.
type Traffic struct {
	EstimatedTravelTime time.Duration
	NormalTravelTime    time.Duration
	Congestion          CongestionLevel
	AlternativeRoutes   []Route
}

// UserLocation is the last known position of the user.
type UserLocation struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
}

// UserStatus describes the user's presence.
type UserStatus struct {
	Active          bool
	LastSeen        time.Time
	CurrentActivity mo.Option[string]
}

// SmartContext bundles the optional signals used to adjust reminders.
// Every field may be absent independently.
type SmartContext struct {
	Weather      mo.Option[Weather]
	Traffic      mo.Option[Traffic]
	UserLocation mo.Option[UserLocation]
	UserStatus   mo.Option[UserStatus]
}

// ScheduledReminder is a reminder already placed on the timeline.
type ScheduledReminder struct {
	EventID      string
	ScheduledFor time.Time
	Timing       Timing
}

// Decision is the outcome of EvaluateSmartConditions. When AdjustedTime is
// present the reminder should go out at that time instead.
type Decision struct {
	ShouldSend   bool
	Reason       string
	AdjustedTime mo.Option[time.Time]
}

// RecommendationKind tags the heuristic behind a recommendation.
type RecommendationKind string

const (
	RecommendMeetingPrep  RecommendationKind = "MEETING_PREPARATION"
	RecommendTravel       RecommendationKind = "TRAVEL"
	RecommendEarlyMorning RecommendationKind = "EARLY_MORNING"
)

// Recommendation is a suggested lead time with its reason. It is advisory;
// callers decide whether to apply it.
type Recommendation struct {
	Kind     RecommendationKind
	LeadTime time.Duration
	Reason   string
}

// Timing converts the recommendation into a minutes based Timing.
func (r Recommendation) Timing() Timing {
	return Timing{
		Value:       r.LeadTime.Minutes(),
		Unit:        Minutes,
		Description: r.Reason,
	}
}
