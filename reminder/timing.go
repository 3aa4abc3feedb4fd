package reminder

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cyp0633/calrecur/event"
)

// adjustment is one additive step of the timing pipeline.
type adjustment struct {
	minutes float64
	note    string
}

// CalculateSmartTiming adjusts base with DefaultPolicy.
func CalculateSmartTiming(ev event.CalendarEvent, base Timing, ctx SmartContext) Timing {
	return defaultEngine.CalculateSmartTiming(ev, base, ctx)
}

// CalculateSmartTiming returns a new timing with weather, traffic, travel
// and user status buffers added to base. The result keeps base's unit and
// is never shorter than base. Absent context fields are skipped.
func (e *Engine) CalculateSmartTiming(ev event.CalendarEvent, base Timing, ctx SmartContext) Timing {
	var steps []adjustment

	if w, ok := ctx.Weather.Get(); ok {
		steps = append(steps, e.weatherAdjustments(w)...)
	}
	if t, ok := ctx.Traffic.Get(); ok {
		steps = append(steps, e.trafficAdjustments(t)...)
	}
	if loc, ok := ctx.UserLocation.Get(); ok {
		steps = append(steps, e.travelAdjustments(loc, ev)...)
	}
	if s, ok := ctx.UserStatus.Get(); ok {
		steps = append(steps, e.statusAdjustments(s)...)
	}

	if len(steps) == 0 {
		return base
	}

	total := ToMinutes(base)
	notes := make([]string, 0, len(steps))
	for _, s := range steps {
		total += s.minutes
		notes = append(notes, s.note)
	}

	value := math.Max(FromMinutes(total, base.Unit), base.Value)
	return Timing{
		Value:       value,
		Unit:        base.Unit,
		Description: describeAdjusted(base.Description, notes),
	}
}

func (e *Engine) weatherAdjustments(w Weather) []adjustment {
	var out []adjustment

	switch w.Condition {
	case Storm, Snow:
		out = append(out, minutesStep(e.policy.SevereWeatherBuffer, "%s: +%s", strings.ToLower(string(w.Condition))))
	case Rain, Fog:
		if w.PrecipitationMM > e.policy.HeavyPrecipitationMM {
			out = append(out, minutesStep(e.policy.HeavyPrecipitationBuffer, "heavy precipitation: +%s"))
		} else {
			out = append(out, minutesStep(e.policy.BadWeatherBuffer, "%s: +%s", strings.ToLower(string(w.Condition))))
		}
	}

	if w.TemperatureC < e.policy.ComfortMinC || w.TemperatureC > e.policy.ComfortMaxC {
		out = append(out, minutesStep(e.policy.TemperatureBuffer, "temperature %.0f°C: +%s", w.TemperatureC))
	}
	return out
}

func (e *Engine) trafficAdjustments(t Traffic) []adjustment {
	if t.NormalTravelTime <= 0 || t.EstimatedTravelTime <= t.NormalTravelTime {
		return nil
	}
	ratio := float64(t.EstimatedTravelTime) / float64(t.NormalTravelTime)
	if ratio <= e.policy.TrafficRatioThreshold {
		return nil
	}
	delta := min(t.EstimatedTravelTime-t.NormalTravelTime, e.policy.MaxTrafficBuffer)
	return []adjustment{minutesStep(delta, "traffic delay: +%s")}
}

func (e *Engine) travelAdjustments(loc UserLocation, ev event.CalendarEvent) []adjustment {
	travel, ok := e.travelTime(loc, ev)
	if !ok || travel <= e.policy.LongTravelThreshold {
		return nil
	}
	buffer := time.Duration(float64(travel) * e.policy.TravelBufferRatio)
	buffer = min(buffer, e.policy.MaxTravelBuffer)
	return []adjustment{minutesStep(buffer, "travel %s: +%s", roundMinutes(travel))}
}

func (e *Engine) statusAdjustments(s UserStatus) []adjustment {
	var out []adjustment
	if !s.Active {
		out = append(out, minutesStep(e.policy.InactiveUserBuffer, "user inactive: +%s"))
	}
	if activity, ok := s.CurrentActivity.Get(); ok && e.isBusy(activity) {
		out = append(out, minutesStep(e.policy.BusyUserBuffer, "user busy (%s): +%s", strings.ToLower(activity)))
	}
	return out
}

func (e *Engine) isBusy(activity string) bool {
	activity = strings.ToLower(strings.TrimSpace(activity))
	for _, busy := range e.policy.BusyActivities {
		if activity == strings.ToLower(busy) {
			return true
		}
	}
	return false
}

// minutesStep builds an adjustment of d. The formatted lead is appended to
// args as the last verb.
func minutesStep(d time.Duration, format string, args ...any) adjustment {
	if d < 0 {
		d = 0
	}
	args = append(args, roundMinutes(d))
	return adjustment{minutes: d.Minutes(), note: fmt.Sprintf(format, args...)}
}

func roundMinutes(d time.Duration) string {
	return fmt.Sprintf("%d min", int(math.Round(d.Minutes())))
}

func describeAdjusted(base string, notes []string) string {
	joined := strings.Join(notes, "; ")
	if base == "" {
		return joined
	}
	return base + " (" + joined + ")"
}
