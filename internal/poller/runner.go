// internal/poller/runner.go
package poller

import (
	"context"
	"fmt"
	"time"
)

// Run blocks until the fill count reaches the target.
// The next query is issued as soon as the previous one returns unless
// an Interval is configured. No retries: a failed query ends the wait.
// Without MaxWait / MaxPolls the wait is unbounded; only ctx ends it.
func (p *Poller) Run(ctx context.Context, rep Reporter) (Outcome, error) {
	var (
		out      Outcome
		reported int
	)

	start := p.now()

	for {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("poller: cancelled after %d polls: %w", out.Polls, err)
		}

		res := p.PollOnce()
		out.Polls++
		out.Elapsed = res.At.Sub(start)

		if res.Err != nil {
			return out, res.Err
		}

		if res.Fill > out.Observed {
			out.Observed = res.Fill
		}

		// Progress is clamped so the final report equals the target.
		acquired := min(out.Observed, p.cfg.Target)
		if rep != nil {
			rep.Progress(Progress{Acquired: acquired, Delta: acquired - reported})
		}
		reported = acquired

		if res.Fill >= p.cfg.Target {
			return out, nil
		}

		if p.cfg.MaxPolls > 0 && out.Polls >= p.cfg.MaxPolls {
			return out, p.timeout(out)
		}
		if p.cfg.MaxWait > 0 {
			out.Elapsed = p.now().Sub(start)
			if out.Elapsed >= p.cfg.MaxWait {
				return out, p.timeout(out)
			}
		}

		if p.cfg.Interval > 0 {
			if err := sleep(ctx, p.cfg.Interval); err != nil {
				return out, fmt.Errorf("poller: cancelled after %d polls: %w", out.Polls, err)
			}
		}
	}
}

func (p *Poller) timeout(out Outcome) error {
	return &TimeoutError{
		Target:   p.cfg.Target,
		Observed: out.Observed,
		Polls:    out.Polls,
		Elapsed:  out.Elapsed,
		MaxWait:  p.cfg.MaxWait,
		MaxPolls: p.cfg.MaxPolls,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
