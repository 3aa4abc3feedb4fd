package exception

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyp0633/calrecur/event"
)

var (
	ErrInvalidDate   = errors.New("exception: invalid original date")
	ErrNoException   = errors.New("exception: no exception for date")
	ErrInvalidTiming = errors.New("exception: event ends before it starts")
	ErrInvalidRule   = errors.New("exception: invalid recurrence rule")
	ErrUnexpected    = errors.New("exception: unexpected failure")
)

// Result is the envelope returned by every exception operation. Expected
// failures (nothing to remove, bad input) are reported with Success=false,
// never as panics. Err carries the cause for errors.Is.
type Result struct {
	Success      bool
	Message      string
	Err          error
	UpdatedEvent *event.RecurrentEvent
	// NewEvent is set by ConvertToIndependentEvent.
	NewEvent *event.CalendarEvent
}

func succeeded(msg string, updated event.RecurrentEvent) Result {
	return Result{
		Success:      true,
		Message:      msg,
		UpdatedEvent: &updated,
	}
}

func failed(op string, err error) Result {
	return Result{
		Success: false,
		Message: fmt.Sprintf("failed to %s: %v", op, err),
		Err:     err,
	}
}

// guard turns a panic inside an operation into a failed Result so nothing
// escapes the package boundary.
func guard(op string, fn func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(op, fmt.Errorf("%w: %v", ErrUnexpected, r))
		}
	}()
	return fn()
}

func dayLabel(t time.Time) string {
	return t.Format(time.DateOnly)
}
