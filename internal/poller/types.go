// internal/poller/types.go
package poller

import (
	"fmt"
	"time"

	"github.com/tamzrod/bench-digitizer/internal/status"
)

// Limits are the optional overrides of the unbounded wait.
// Zero values mean: no interval, no deadline, no poll cap.
type Limits struct {
	Interval time.Duration
	MaxWait  time.Duration
	MaxPolls int
}

// Progress is reported once per poll.
// Acquired never decreases and never exceeds the target.
type Progress struct {
	Acquired int
	Delta    int
}

// Reporter receives progress on every poll.
type Reporter interface {
	Progress(p Progress)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(p Progress)

func (f ReporterFunc) Progress(p Progress) { f(p) }

// PollResult is the raw result of a single fill-count query.
type PollResult struct {
	Fill int
	At   time.Time
	Err  error // non-nil means the query failed
}

// Outcome summarises a finished wait.
type Outcome struct {
	Polls    int
	Observed int // highest fill count seen
	Elapsed  time.Duration
}

// TimeoutError is returned when MaxWait or MaxPolls is exceeded.
type TimeoutError struct {
	Target   int
	Observed int
	Polls    int
	Elapsed  time.Duration
	MaxWait  time.Duration
	MaxPolls int
}

func (e *TimeoutError) Error() string {
	if e.MaxPolls > 0 && e.Polls >= e.MaxPolls {
		return fmt.Sprintf(
			"poller: timeout after %d polls (max_polls=%d): fill=%d target=%d",
			e.Polls, e.MaxPolls, e.Observed, e.Target,
		)
	}
	return fmt.Sprintf(
		"poller: timeout after %s (max_wait=%s): fill=%d target=%d",
		e.Elapsed, e.MaxWait, e.Observed, e.Target,
	)
}

// Code maps the timeout onto the status block error code.
func (e *TimeoutError) Code() uint16 { return status.ErrorCodeTimeout }
