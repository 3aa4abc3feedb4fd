package exception

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyp0633/calrecur/event"
)

// Modification pairs a date with the patch to store for it.
type Modification struct {
	Date  time.Time
	Patch event.Patch
}

// ItemResult is the outcome for one date of a bulk operation.
type ItemResult struct {
	Date    time.Time
	Success bool
	Message string
	Err     error
}

// BulkResult reports a best-effort batch. Items are independent: a failed
// item does not undo the items before it, and UpdatedEvent carries every
// successful change. Success is true only if every item succeeded.
//
// Callers that need all-or-nothing semantics must check Success and discard
// UpdatedEvent themselves.
type BulkResult struct {
	Success      bool
	Message      string
	UpdatedEvent *event.RecurrentEvent
	Items        []ItemResult
}

// BulkModifyInstances folds ModifyInstance over mods.
func BulkModifyInstances(ev event.RecurrentEvent, mods []Modification) BulkResult {
	steps := make([]bulkStep, 0, len(mods))
	for _, m := range mods {
		steps = append(steps, bulkStep{
			date: m.Date,
			apply: func(cur event.RecurrentEvent) Result {
				return ModifyInstance(cur, m.Date, m.Patch)
			},
		})
	}
	return runBulk(ev, "modified", steps)
}

// BulkDeleteInstances folds DeleteInstance over dates.
func BulkDeleteInstances(ev event.RecurrentEvent, dates []time.Time) BulkResult {
	steps := make([]bulkStep, 0, len(dates))
	for _, d := range dates {
		steps = append(steps, bulkStep{
			date: d,
			apply: func(cur event.RecurrentEvent) Result {
				return DeleteInstance(cur, d)
			},
		})
	}
	return runBulk(ev, "deleted", steps)
}

type bulkStep struct {
	date  time.Time
	apply func(event.RecurrentEvent) Result
}

func runBulk(ev event.RecurrentEvent, verb string, steps []bulkStep) BulkResult {
	current := ev.Clone()
	items := make([]ItemResult, 0, len(steps))
	lines := make([]string, 0, len(steps))
	ok := 0

	for _, step := range steps {
		res := step.apply(current)
		items = append(items, ItemResult{
			Date:    step.date,
			Success: res.Success,
			Message: res.Message,
			Err:     res.Err,
		})
		if res.Success {
			current = *res.UpdatedEvent
			ok++
			lines = append(lines, fmt.Sprintf("%s: ok", dayLabel(step.date)))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", dayLabel(step.date), res.Message))
		}
	}

	summary := fmt.Sprintf("%d of %d instances %s", ok, len(steps), verb)
	if len(lines) > 0 {
		summary += "\n" + strings.Join(lines, "\n")
	}

	return BulkResult{
		Success:      ok == len(steps),
		Message:      summary,
		UpdatedEvent: &current,
		Items:        items,
	}
}
