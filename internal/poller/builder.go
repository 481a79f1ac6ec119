// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/bench-digitizer/internal/config"
)

// LimitsFromConfig converts the poll section of the acquisition config.
// Assumes config has already passed validation.
func LimitsFromConfig(pc cfg.PollConfig) Limits {
	return Limits{
		Interval: time.Duration(pc.IntervalMs) * time.Millisecond,
		MaxWait:  time.Duration(pc.MaxWaitMs) * time.Millisecond,
		MaxPolls: pc.MaxPolls,
	}
}
