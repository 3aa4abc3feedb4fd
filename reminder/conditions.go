package reminder

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// EvaluateSmartConditions gates rem with DefaultPolicy.
func EvaluateSmartConditions(rem ScheduledReminder, ctx SmartContext, now time.Time) Decision {
	return defaultEngine.EvaluateSmartConditions(rem, ctx, now)
}

// EvaluateSmartConditions decides whether rem should go out. Severe weather
// suppresses it. Severe congestion moves it earlier by
// Policy.SevereTrafficAdvance, or sends it right away when that time is
// already past at now. Timing is not touched here.
func (e *Engine) EvaluateSmartConditions(rem ScheduledReminder, ctx SmartContext, now time.Time) Decision {
	if w, ok := ctx.Weather.Get(); ok {
		if reason, severe := e.severeWeather(w); severe {
			return Decision{ShouldSend: false, Reason: reason}
		}
	}

	if t, ok := ctx.Traffic.Get(); ok && t.Congestion == CongestionSevere {
		adjusted := rem.ScheduledFor.Add(-e.policy.SevereTrafficAdvance)
		if !adjusted.After(now) {
			return Decision{ShouldSend: true, Reason: "severe traffic: send now"}
		}
		return Decision{
			ShouldSend:   true,
			Reason:       fmt.Sprintf("severe traffic: send %s earlier", roundMinutes(e.policy.SevereTrafficAdvance)),
			AdjustedTime: mo.Some(adjusted),
		}
	}

	return Decision{ShouldSend: true}
}

func (e *Engine) severeWeather(w Weather) (string, bool) {
	switch {
	case w.Condition == Storm:
		return "severe weather: storm", true
	case w.TemperatureC < e.policy.ExtremeColdC || w.TemperatureC > e.policy.ExtremeHeatC:
		return fmt.Sprintf("severe weather: extreme temperature %.0f°C", w.TemperatureC), true
	case w.PrecipitationMM > e.policy.SuppressPrecipitationMM:
		return fmt.Sprintf("severe weather: %.0fmm precipitation", w.PrecipitationMM), true
	}
	return "", false
}
