// internal/acquisition/acquire.go
package acquisition

import (
	"context"
	"fmt"
)

// Acquire drives one full run: configure, arm, poll, drain, parse.
// ctx is checked between steps and inside the poll loop; a step that has
// started is never interrupted. The returned Run is terminal.
func (o *Orchestrator) Acquire(ctx context.Context, req Request) (*Run, error) {
	r, err := o.NewRun(req)
	if err != nil {
		return nil, err
	}

	steps := []func() error{
		r.Configure,
		r.Arm,
		func() error { return r.Poll(ctx) },
		r.Drain,
		r.Parse,
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return r, r.Fail(fmt.Errorf("acquisition: cancelled in state %s: %w", r.state, err))
		}
		if err := step(); err != nil {
			return r, err
		}
	}

	return r, nil
}
