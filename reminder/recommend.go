package reminder

import (
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/cyp0633/calrecur/event"
)

// GenerateSmartRecommendations suggests lead times with DefaultPolicy.
func GenerateSmartRecommendations(ev event.CalendarEvent, loc mo.Option[UserLocation]) []Recommendation {
	return defaultEngine.GenerateSmartRecommendations(ev, loc)
}

// GenerateSmartRecommendations returns advisory lead times for ev: meeting
// preparation by title keyword, travel time when loc and the event
// coordinates are known, and an early buffer for morning events that are
// not all-day.
func (e *Engine) GenerateSmartRecommendations(ev event.CalendarEvent, loc mo.Option[UserLocation]) []Recommendation {
	var recs []Recommendation

	title := strings.ToLower(ev.Title)
	for _, kw := range e.policy.MeetingKeywords {
		if strings.Contains(title, strings.ToLower(kw)) {
			recs = append(recs, Recommendation{
				Kind:     RecommendMeetingPrep,
				LeadTime: e.policy.MeetingPrepLead,
				Reason:   fmt.Sprintf("meeting: %s to prepare", roundMinutes(e.policy.MeetingPrepLead)),
			})
			break
		}
	}

	if l, ok := loc.Get(); ok {
		if travel, known := e.travelTime(l, ev); known && travel > e.policy.RecommendTravelThreshold {
			recs = append(recs, Recommendation{
				Kind:     RecommendTravel,
				LeadTime: travel + e.policy.TravelSlack,
				Reason:   fmt.Sprintf("travel takes about %s plus %s slack", roundMinutes(travel), roundMinutes(e.policy.TravelSlack)),
			})
		}
	}

	if !ev.AllDay && ev.StartTime.Hour() < e.policy.EarlyMorningHour {
		recs = append(recs, Recommendation{
			Kind:     RecommendEarlyMorning,
			LeadTime: e.policy.EarlyMorningLead,
			Reason:   fmt.Sprintf("starts before %02d:00", e.policy.EarlyMorningHour),
		})
	}

	return recs
}
