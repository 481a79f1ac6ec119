// internal/acquisition/orchestrator.go
package acquisition

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/bench-digitizer/internal/poller"
)

// Device is the command/response capability the orchestrator drives.
type Device interface {
	Send(cmd string) error
	Query(cmd string) (string, error)
}

// RunCounter reserves a run number, calls emit and commits only on success.
type RunCounter interface {
	Next(emit func(run uint64) error) (uint64, error)
}

// ArtifactWriter persists one successful run.
type ArtifactWriter interface {
	WriteRun(rec RunRecord) error
}

// Observer receives per-poll fill counts and one Result per run.
// Implementations must not block.
type Observer interface {
	FillPolled(fill int)
	RunFinished(res Result)
}

// Orchestrator owns the device, counter and sink shared by successive runs.
// Runs are strictly sequential; no state is carried between them.
type Orchestrator struct {
	dev     Device
	counter RunCounter
	sink    ArtifactWriter

	limits      poller.Limits
	progress    poller.Reporter
	observer    Observer
	minFraction float64

	now   func() time.Time
	newID func() string
}

type Option func(*Orchestrator)

// WithPollLimits bounds the otherwise unbounded buffer-fill wait.
func WithPollLimits(l poller.Limits) Option {
	return func(o *Orchestrator) { o.limits = l }
}

// WithProgress receives one progress report per poll.
func WithProgress(rep poller.Reporter) Option {
	return func(o *Orchestrator) { o.progress = rep }
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithMinSampleFraction fails runs whose parsed length is below
// f * SampleCount. Zero (default) always emits, even short runs.
func WithMinSampleFraction(f float64) Option {
	return func(o *Orchestrator) { o.minFraction = f }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides the acquisition ID source (uuid by default).
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) { o.newID = gen }
}

// New wires an orchestrator. All three collaborators are required.
func New(dev Device, counter RunCounter, sink ArtifactWriter, opts ...Option) (*Orchestrator, error) {
	if dev == nil {
		return nil, errors.New("acquisition: device required")
	}
	if counter == nil {
		return nil, errors.New("acquisition: run counter required")
	}
	if sink == nil {
		return nil, errors.New("acquisition: artifact writer required")
	}

	o := &Orchestrator{
		dev:     dev,
		counter: counter,
		sink:    sink,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.minFraction < 0 || o.minFraction > 1 {
		return nil, errors.New("acquisition: min sample fraction must be within [0, 1]")
	}
	return o, nil
}

// NewRun validates req and returns a fresh run in Idle.
func (o *Orchestrator) NewRun(req Request) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &Run{
		o:       o,
		req:     req,
		state:   Idle,
		id:      o.newID(),
		started: o.now(),
	}, nil
}
