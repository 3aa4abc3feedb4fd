package document

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/mo"
	"gopkg.in/yaml.v3"

	"github.com/cyp0633/calrecur/reminder"
)

// Weather is the weather section of a context file.
type Weather struct {
	Condition       string   `yaml:"condition"`
	TemperatureC    float64  `yaml:"temperature_c"`
	PrecipitationMM float64  `yaml:"precipitation_mm"`
	WindSpeedKmh    *float64 `yaml:"wind_speed_kmh,omitempty"`
	HumidityPct     *float64 `yaml:"humidity_pct,omitempty"`
}

// Traffic is the traffic section of a context file. Times are in minutes.
type Traffic struct {
	EstimatedMinutes float64 `yaml:"estimated_minutes"`
	NormalMinutes    float64 `yaml:"normal_minutes"`
	Congestion       string  `yaml:"congestion"`
}

// Location is the user location section of a context file.
type Location struct {
	Latitude       float64 `yaml:"latitude"`
	Longitude      float64 `yaml:"longitude"`
	AccuracyMeters float64 `yaml:"accuracy_m,omitempty"`
}

// Status is the user status section of a context file.
type Status struct {
	Active   bool   `yaml:"active"`
	LastSeen string `yaml:"last_seen,omitempty"`
	Activity string `yaml:"activity,omitempty"`
}

// Context is a reminder context file. Every section is optional.
type Context struct {
	Now          string    `yaml:"now,omitempty"`
	Weather      *Weather  `yaml:"weather,omitempty"`
	Traffic      *Traffic  `yaml:"traffic,omitempty"`
	UserLocation *Location `yaml:"user_location,omitempty"`
	UserStatus   *Status   `yaml:"user_status,omitempty"`
}

// LoadContext reads a context file.
func LoadContext(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Context
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse context %s: %w", path, err)
	}
	return &c, nil
}

// NowOr returns the file's evaluation time, or fallback when unset.
func (c Context) NowOr(fallback time.Time, loc *time.Location) (time.Time, error) {
	if c.Now == "" {
		return fallback, nil
	}
	return ParseTime(c.Now, loc)
}

var weatherConditions = map[reminder.WeatherCondition]bool{
	reminder.Clear: true, reminder.Cloudy: true, reminder.Rain: true,
	reminder.Storm: true, reminder.Snow: true, reminder.Fog: true,
}

var congestionLevels = map[reminder.CongestionLevel]bool{
	reminder.CongestionLow: true, reminder.CongestionModerate: true,
	reminder.CongestionHigh: true, reminder.CongestionSevere: true,
}

func optional(v *float64) mo.Option[float64] {
	if v == nil {
		return mo.None[float64]()
	}
	return mo.Some(*v)
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// ToSmartContext converts the file into engine input.
func (c Context) ToSmartContext(loc *time.Location) (reminder.SmartContext, error) {
	var out reminder.SmartContext

	if w := c.Weather; w != nil {
		cond := reminder.WeatherCondition(strings.ToUpper(w.Condition))
		if !weatherConditions[cond] {
			return out, fmt.Errorf("weather: unknown condition %q", w.Condition)
		}
		out.Weather = mo.Some(reminder.Weather{
			Condition:       cond,
			TemperatureC:    w.TemperatureC,
			PrecipitationMM: w.PrecipitationMM,
			WindSpeedKmh:    optional(w.WindSpeedKmh),
			HumidityPct:     optional(w.HumidityPct),
		})
	}

	if t := c.Traffic; t != nil {
		level := reminder.CongestionLevel(strings.ToUpper(t.Congestion))
		if t.Congestion == "" {
			level = reminder.CongestionLow
		}
		if !congestionLevels[level] {
			return out, fmt.Errorf("traffic: unknown congestion %q", t.Congestion)
		}
		out.Traffic = mo.Some(reminder.Traffic{
			EstimatedTravelTime: minutes(t.EstimatedMinutes),
			NormalTravelTime:    minutes(t.NormalMinutes),
			Congestion:          level,
		})
	}

	if l := c.UserLocation; l != nil {
		out.UserLocation = mo.Some(reminder.UserLocation{
			Latitude:       l.Latitude,
			Longitude:      l.Longitude,
			AccuracyMeters: l.AccuracyMeters,
		})
	}

	if s := c.UserStatus; s != nil {
		status := reminder.UserStatus{Active: s.Active}
		if s.LastSeen != "" {
			seen, err := ParseTime(s.LastSeen, loc)
			if err != nil {
				return out, fmt.Errorf("user status last_seen: %w", err)
			}
			status.LastSeen = seen
		}
		if s.Activity != "" {
			status.CurrentActivity = mo.Some(s.Activity)
		}
		out.UserStatus = mo.Some(status)
	}

	return out, nil
}
