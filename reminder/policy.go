package reminder

import "time"

// Policy holds every threshold and buffer used by the engine
type Policy struct {
	// Weather
	BadWeatherBuffer         time.Duration
	SevereWeatherBuffer      time.Duration // storm, snow
	HeavyPrecipitationMM     float64
	HeavyPrecipitationBuffer time.Duration
	ComfortMinC              float64
	ComfortMaxC              float64
	TemperatureBuffer        time.Duration

	// Traffic
	TrafficRatioThreshold float64
	MaxTrafficBuffer      time.Duration

	// Travel
	AverageSpeedKmh     float64
	LongTravelThreshold time.Duration
	TravelBufferRatio   float64
	MaxTravelBuffer     time.Duration

	// User status
	InactiveUserBuffer time.Duration
	BusyUserBuffer     time.Duration
	BusyActivities     []string

	// Gating
	SuppressPrecipitationMM float64
	ExtremeColdC            float64
	ExtremeHeatC            float64
	SevereTrafficAdvance    time.Duration

	// Recommendations
	MeetingKeywords          []string
	MeetingPrepLead          time.Duration
	RecommendTravelThreshold time.Duration
	TravelSlack              time.Duration
	EarlyMorningHour         int
	EarlyMorningLead         time.Duration
}

// DefaultPolicy provides the standard reminder adjustments
var DefaultPolicy = Policy{
	BadWeatherBuffer:         15 * time.Minute,
	SevereWeatherBuffer:      30 * time.Minute,
	HeavyPrecipitationMM:     5,
	HeavyPrecipitationBuffer: 20 * time.Minute,
	ComfortMinC:              5,
	ComfortMaxC:              35,
	TemperatureBuffer:        10 * time.Minute,

	TrafficRatioThreshold: 1.2,
	MaxTrafficBuffer:      60 * time.Minute,

	AverageSpeedKmh:     40,
	LongTravelThreshold: 30 * time.Minute,
	TravelBufferRatio:   0.2,
	MaxTravelBuffer:     30 * time.Minute,

	InactiveUserBuffer: 10 * time.Minute,
	BusyUserBuffer:     15 * time.Minute,
	BusyActivities:     []string{"meeting", "call", "driving", "workout"},

	SuppressPrecipitationMM: 20,
	ExtremeColdC:            -10,
	ExtremeHeatC:            40,
	SevereTrafficAdvance:    30 * time.Minute,

	MeetingKeywords:          []string{"reunião", "reuniao", "meeting"},
	MeetingPrepLead:          15 * time.Minute,
	RecommendTravelThreshold: 15 * time.Minute,
	TravelSlack:              15 * time.Minute,
	EarlyMorningHour:         9,
	EarlyMorningLead:         time.Hour,
}

// Engine applies a Policy. It holds no mutable state.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine with DefaultPolicy
func NewEngine() *Engine {
	return NewEngineWithPolicy(DefaultPolicy)
}

// NewEngineWithPolicy creates an engine with a custom policy
func NewEngineWithPolicy(policy Policy) *Engine {
	if policy.AverageSpeedKmh <= 0 {
		policy.AverageSpeedKmh = DefaultPolicy.AverageSpeedKmh
	}
	return &Engine{policy: policy}
}

// Policy returns the policy in use.
func (e *Engine) Policy() Policy {
	return e.policy
}

var defaultEngine = NewEngine()
