// internal/acquisition/run.go
package acquisition

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tamzrod/bench-digitizer/internal/parser"
	"github.com/tamzrod/bench-digitizer/internal/poller"
)

// Run is one pass through the acquisition state machine.
// A Run is not safe for concurrent use.
type Run struct {
	o   *Orchestrator
	req Request

	state  State
	polled bool // poll completed successfully

	id      string
	started time.Time
	polls   int
	blob    string
	record  RunRecord
	err     error
}

func (r *Run) State() State      { return r.state }
func (r *Run) ID() string        { return r.id }
func (r *Run) Request() Request  { return r.req }
func (r *Run) Err() error        { return r.err }
func (r *Run) Record() RunRecord { return r.record }

// ------------------------------------------------------------
// steps
// ------------------------------------------------------------

// Configure programs the instrument: Idle -> Configured.
func (r *Run) Configure() error {
	if err := r.expect(Idle, Configured); err != nil {
		return err
	}

	for _, cmd := range ConfigureCommands(r.req) {
		if err := r.o.dev.Send(cmd); err != nil {
			return r.Fail(&TransportError{Op: "configure", Command: cmd, Err: err})
		}
	}

	r.state = Configured
	return nil
}

// Arm starts the trigger model: Configured -> Armed.
func (r *Run) Arm() error {
	if err := r.expect(Configured, Armed); err != nil {
		return err
	}

	if err := r.o.dev.Send(ArmCommand); err != nil {
		return r.Fail(&TransportError{Op: "arm", Command: ArmCommand, Err: err})
	}

	r.state = Armed
	return nil
}

// Poll waits for the buffer to hold SampleCount readings: Armed -> Polling.
// This is the only blocking step and the only one that honours ctx.
func (r *Run) Poll(ctx context.Context) error {
	if err := r.expect(Armed, Polling); err != nil {
		return err
	}
	r.state = Polling

	p, err := poller.New(poller.Config{Target: r.req.SampleCount, Limits: r.o.limits}, fillCounter{r})
	if err != nil {
		return r.Fail(err)
	}

	out, err := p.Run(ctx, r.o.progress)
	r.polls = out.Polls
	if err != nil {
		return r.Fail(fmt.Errorf("acquisition: poll: %w", err))
	}

	r.polled = true
	return nil
}

// Drain reads the raw buffer blob: Polling -> Draining.
func (r *Run) Drain() error {
	if r.state != Polling || !r.polled {
		return r.invalid(Draining)
	}

	q := DrainQuery(r.req)
	blob, err := r.o.dev.Query(q)
	if err != nil {
		return r.Fail(&TransportError{Op: "drain", Command: q, Err: err})
	}

	r.blob = blob
	r.state = Draining
	return nil
}

// Parse converts the blob, reserves a run number and emits the artifact:
// Draining -> Parsed. The counter only advances if the artifact was written.
func (r *Run) Parse() error {
	if err := r.expect(Draining, Parsed); err != nil {
		return err
	}

	res := parser.Parse(r.blob)
	r.blob = ""

	rec := RunRecord{
		AcquisitionID: r.id,
		Quantity:      r.req.Quantity,
		SampleRate:    r.req.SampleRate,
		SampleCount:   r.req.SampleCount,
		Samples:       res.Samples,
		Skipped:       res.Skipped,
	}
	r.record = rec

	if f := r.o.minFraction; f > 0 && float64(len(res.Samples)) < f*float64(r.req.SampleCount) {
		return r.Fail(&InsufficientSamplesError{
			Parsed:      len(res.Samples),
			Requested:   r.req.SampleCount,
			MinFraction: f,
		})
	}

	n, err := r.o.counter.Next(func(run uint64) error {
		rec.RunNumber = run
		rec.CompletedAt = r.o.now()
		return r.o.sink.WriteRun(rec)
	})
	if err != nil {
		r.record.RunNumber = n
		return r.Fail(&ArtifactError{Run: n, Err: err})
	}

	r.record = rec
	r.state = Parsed
	r.finish()
	return nil
}

// Fail moves any non-terminal run to Failed and returns reason.
func (r *Run) Fail(reason error) error {
	if r.state.Terminal() {
		return r.invalid(Failed)
	}
	if reason == nil {
		reason = fmt.Errorf("acquisition: run failed in state %s", r.state)
	}

	r.err = reason
	failedIn := r.state
	r.state = Failed
	r.finishFailed(failedIn)
	return reason
}

// ------------------------------------------------------------
// helpers
// ------------------------------------------------------------

func (r *Run) expect(from, to State) error {
	if r.state != from {
		return r.invalid(to)
	}
	return nil
}

func (r *Run) invalid(to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, to)
}

func (r *Run) finish() {
	r.report(Result{Record: r.record, State: r.state})
}

func (r *Run) finishFailed(in State) {
	r.report(Result{Record: r.record, State: Failed, Failed: in, Err: r.err})
}

func (r *Run) report(res Result) {
	if r.o.observer == nil {
		return
	}
	res.Elapsed = r.o.now().Sub(r.started)
	res.Polls = r.polls
	r.o.observer.RunFinished(res)
}

// fillCounter adapts the run's device to poller.FillCounter.
type fillCounter struct{ r *Run }

func (f fillCounter) FillCount() (int, error) {
	q := FillQuery(f.r.req)

	reply, err := f.r.o.dev.Query(q)
	if err != nil {
		return 0, &TransportError{Op: "poll", Command: q, Err: err}
	}

	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", poller.ErrBadFillCount, reply)
	}

	if f.r.o.observer != nil {
		f.r.o.observer.FillPolled(n)
	}
	return n, nil
}
