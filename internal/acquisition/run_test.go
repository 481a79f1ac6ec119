// internal/acquisition/run_test.go
package acquisition

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/tamzrod/bench-digitizer/internal/poller"
	"github.com/tamzrod/bench-digitizer/internal/status"
)

// ------------------------------------------------------------
// fakes
// ------------------------------------------------------------

// scriptedDevice answers fill queries from fills and drain queries with blob.
type scriptedDevice struct {
	fills   []int
	blob    string
	sent    []string
	queries []string

	failSend  string // command prefix that fails
	failQuery string // query prefix that fails
}

func (d *scriptedDevice) Send(cmd string) error {
	if d.failSend != "" && strings.HasPrefix(cmd, d.failSend) {
		return errors.New("usb pipe error")
	}
	d.sent = append(d.sent, cmd)
	return nil
}

func (d *scriptedDevice) Query(cmd string) (string, error) {
	d.queries = append(d.queries, cmd)
	if d.failQuery != "" && strings.HasPrefix(cmd, d.failQuery) {
		return "", errors.New("usb read timeout")
	}
	switch {
	case strings.HasPrefix(cmd, ":TRAC:ACT?"):
		n, polls := 0, 0
		for _, q := range d.queries {
			if strings.HasPrefix(q, ":TRAC:ACT?") {
				polls++
			}
		}
		if len(d.fills) > 0 {
			n = d.fills[min(polls, len(d.fills))-1]
		}
		return strconv.Itoa(n), nil
	case strings.HasPrefix(cmd, ":TRAC:DATA?"):
		return d.blob, nil
	}
	return "", errors.New("unexpected query " + cmd)
}

type memCounter struct {
	next      uint64
	mutations int
}

func (c *memCounter) Next(emit func(uint64) error) (uint64, error) {
	n := c.next
	if err := emit(n); err != nil {
		return n, err
	}
	c.next++
	c.mutations++
	return n, nil
}

type memSink struct {
	recs []RunRecord
	err  error
}

func (s *memSink) WriteRun(rec RunRecord) error {
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, rec)
	return nil
}

type memObserver struct {
	fills   []int
	results []Result
}

func (o *memObserver) FillPolled(fill int)    { o.fills = append(o.fills, fill) }
func (o *memObserver) RunFinished(res Result) { o.results = append(o.results, res) }

func newTestOrchestrator(t *testing.T, dev Device, opts ...Option) (*Orchestrator, *memCounter, *memSink) {
	t.Helper()
	c := &memCounter{next: 1}
	s := &memSink{}
	opts = append([]Option{WithIDGenerator(func() string { return "acq-1" })}, opts...)
	o, err := New(dev, c, s, opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return o, c, s
}

var e2eRequest = Request{SampleRate: 1000, SampleCount: 5, BufferMargin: 5, Quantity: Voltage}

// ------------------------------------------------------------
// tests
// ------------------------------------------------------------

func TestAcquire_HappyPath(t *testing.T) {
	dev := &scriptedDevice{fills: []int{0, 2, 5}, blob: "1.23,4.5,-,6.78E-1,.E,9.0"}
	obs := &memObserver{}
	o, c, s := newTestOrchestrator(t, dev, WithObserver(obs))

	r, err := o.Acquire(context.Background(), e2eRequest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State() != Parsed {
		t.Fatalf("expected Parsed, got %s", r.State())
	}

	rec := r.Record()
	if rec.RunNumber != 1 || rec.AcquisitionID != "acq-1" {
		t.Fatalf("unexpected record identity: %+v", rec)
	}
	want := []float64{1.23, 4.5, 0.678, 9.0}
	if len(rec.Samples) != len(want) {
		t.Fatalf("expected %v, got %v", want, rec.Samples)
	}
	for i := range want {
		if rec.Samples[i] != want[i] {
			t.Fatalf("sample %d: expected %v, got %v", i, want[i], rec.Samples[i])
		}
	}
	if rec.Skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", rec.Skipped)
	}

	if len(s.recs) != 1 || c.mutations != 1 {
		t.Fatalf("expected one artifact and one counter mutation, got %d/%d", len(s.recs), c.mutations)
	}
	if got := len(obs.fills); got != 3 {
		t.Fatalf("expected 3 fill polls, got %d", got)
	}
	if len(obs.results) != 1 || obs.results[0].State != Parsed || obs.results[0].Polls != 3 {
		t.Fatalf("unexpected observer results: %+v", obs.results)
	}
}

func TestAcquire_ProgressSumsToSampleCount(t *testing.T) {
	dev := &scriptedDevice{fills: []int{0, 2, 5}, blob: "1,2,3,4,5"}

	var sum, last int
	rep := poller.ReporterFunc(func(p poller.Progress) {
		sum += p.Delta
		last = p.Acquired
	})
	o, _, _ := newTestOrchestrator(t, dev, WithProgress(rep))

	if _, err := o.Acquire(context.Background(), e2eRequest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 5 || last != 5 {
		t.Fatalf("expected progress to reach 5, got sum=%d last=%d", sum, last)
	}
}

func TestAcquire_CommandSequence(t *testing.T) {
	dev := &scriptedDevice{fills: []int{5}, blob: "1,2,3,4,5"}
	o, _, _ := newTestOrchestrator(t, dev)

	if _, err := o.Acquire(context.Background(), e2eRequest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := append(ConfigureCommands(e2eRequest), ArmCommand)
	if strings.Join(dev.sent, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected commands:\n%s", strings.Join(dev.sent, "\n"))
	}
	if last := dev.queries[len(dev.queries)-1]; last != ":TRAC:DATA? 1, 5, 'vDataBuffer', READ" {
		t.Fatalf("unexpected drain query %q", last)
	}
}

func TestAcquire_TransportFailureDuringConfigure(t *testing.T) {
	dev := &scriptedDevice{failSend: ":DIG:COUN"}
	obs := &memObserver{}
	o, c, s := newTestOrchestrator(t, dev, WithObserver(obs))

	r, err := o.Acquire(context.Background(), e2eRequest)

	var te *TransportError
	if !errors.As(err, &te) || te.Op != "configure" {
		t.Fatalf("expected configure TransportError, got %v", err)
	}
	if r.State() != Failed {
		t.Fatalf("expected Failed, got %s", r.State())
	}
	if c.mutations != 0 || len(s.recs) != 0 {
		t.Fatalf("failed run must not emit or advance the counter")
	}
	if len(obs.results) != 1 || obs.results[0].Failed != Idle {
		t.Fatalf("expected failure reported from idle, got %+v", obs.results)
	}
	if ErrorCode(err) != status.ErrorCodeTransport {
		t.Fatalf("expected transport code, got %d", ErrorCode(err))
	}
}

func TestAcquire_FillQueryFailure(t *testing.T) {
	dev := &scriptedDevice{failQuery: ":TRAC:ACT?"}
	o, c, _ := newTestOrchestrator(t, dev)

	r, err := o.Acquire(context.Background(), e2eRequest)

	var te *TransportError
	if !errors.As(err, &te) || te.Op != "poll" {
		t.Fatalf("expected poll TransportError, got %v", err)
	}
	if r.State() != Failed || c.mutations != 0 {
		t.Fatalf("expected Failed without counter mutation")
	}
}

func TestAcquire_BadFillReply(t *testing.T) {
	dev := &badFillDevice{}
	o, _, _ := newTestOrchestrator(t, dev)

	_, err := o.Acquire(context.Background(), e2eRequest)
	if !errors.Is(err, poller.ErrBadFillCount) {
		t.Fatalf("expected ErrBadFillCount, got %v", err)
	}
}

type badFillDevice struct{ scriptedDevice }

func (d *badFillDevice) Query(cmd string) (string, error) { return "NaN", nil }

func TestAcquire_PollTimeout(t *testing.T) {
	dev := &scriptedDevice{fills: []int{1}}
	o, c, _ := newTestOrchestrator(t, dev, WithPollLimits(poller.Limits{MaxPolls: 3}))

	r, err := o.Acquire(context.Background(), e2eRequest)

	var te *poller.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if r.State() != Failed || c.mutations != 0 {
		t.Fatalf("expected Failed without counter mutation")
	}
	if ErrorCode(err) != status.ErrorCodeTimeout {
		t.Fatalf("expected timeout code, got %d", ErrorCode(err))
	}
}

func TestAcquire_CancelledBeforeStart(t *testing.T) {
	dev := &scriptedDevice{fills: []int{5}}
	o, _, _ := newTestOrchestrator(t, dev)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := o.Acquire(ctx, e2eRequest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.State() != Failed || len(dev.sent) != 0 {
		t.Fatalf("expected Failed with no commands sent, got %s / %v", r.State(), dev.sent)
	}
	if ErrorCode(err) != status.ErrorCodeCancelled {
		t.Fatalf("expected cancelled code, got %d", ErrorCode(err))
	}
}

func TestAcquire_CancelledWhilePolling(t *testing.T) {
	dev := &scriptedDevice{fills: []int{0}}

	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	rep := poller.ReporterFunc(func(poller.Progress) {
		polls++
		if polls == 2 {
			cancel()
		}
	})
	o, c, _ := newTestOrchestrator(t, dev, WithProgress(rep))

	r, err := o.Acquire(ctx, e2eRequest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.State() != Failed || c.mutations != 0 {
		t.Fatalf("expected Failed without counter mutation")
	}
}

func TestAcquire_ShortRunEmitsByDefault(t *testing.T) {
	dev := &scriptedDevice{fills: []int{5}, blob: "1,-,.,E,5"}
	o, c, _ := newTestOrchestrator(t, dev)

	r, err := o.Acquire(context.Background(), e2eRequest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Record().Samples) != 2 || c.mutations != 1 {
		t.Fatalf("expected short artifact emitted, got %d samples / %d mutations", len(r.Record().Samples), c.mutations)
	}
}

func TestAcquire_MinSampleFractionPolicy(t *testing.T) {
	dev := &scriptedDevice{fills: []int{5}, blob: "1,-,.,E,5"}
	o, c, s := newTestOrchestrator(t, dev, WithMinSampleFraction(0.8))

	r, err := o.Acquire(context.Background(), e2eRequest)

	var ie *InsufficientSamplesError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InsufficientSamplesError, got %v", err)
	}
	if ie.Parsed != 2 || ie.Requested != 5 {
		t.Fatalf("unexpected error fields: %+v", ie)
	}
	if r.State() != Failed || c.mutations != 0 || len(s.recs) != 0 {
		t.Fatalf("policy failure must not emit or advance the counter")
	}
}

func TestAcquire_SinkFailureDoesNotAdvance(t *testing.T) {
	dev := &scriptedDevice{fills: []int{5}, blob: "1,2,3,4,5"}
	o, c, s := newTestOrchestrator(t, dev)
	s.err = errors.New("read-only file system")

	r, err := o.Acquire(context.Background(), e2eRequest)

	var ae *ArtifactError
	if !errors.As(err, &ae) || ae.Run != 1 {
		t.Fatalf("expected ArtifactError for run 1, got %v", err)
	}
	if r.State() != Failed || c.next != 1 {
		t.Fatalf("expected Failed and counter still at 1, got %s / %d", r.State(), c.next)
	}
}

func TestRun_OutOfOrderStepsRejected(t *testing.T) {
	dev := &scriptedDevice{fills: []int{5}, blob: "1"}
	o, _, _ := newTestOrchestrator(t, dev)

	r, err := o.NewRun(e2eRequest)
	if err != nil {
		t.Fatalf("new run: %v", err)
	}

	if err := r.Arm(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for Arm in Idle, got %v", err)
	}
	if err := r.Drain(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for Drain in Idle, got %v", err)
	}
	if r.State() != Idle {
		t.Fatalf("invalid transition must leave state unchanged, got %s", r.State())
	}
	if len(dev.sent) != 0 {
		t.Fatalf("invalid transition must not touch the device")
	}
}

func TestRun_StepByStep(t *testing.T) {
	dev := &scriptedDevice{fills: []int{5}, blob: "1,2,3,4,5"}
	o, _, _ := newTestOrchestrator(t, dev)

	r, _ := o.NewRun(e2eRequest)

	steps := []struct {
		do   func() error
		want State
	}{
		{r.Configure, Configured},
		{r.Arm, Armed},
		{func() error { return r.Poll(context.Background()) }, Polling},
		{r.Drain, Draining},
		{r.Parse, Parsed},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("step to %s: %v", s.want, err)
		}
		if r.State() != s.want {
			t.Fatalf("expected %s, got %s", s.want, r.State())
		}
	}

	if err := r.Fail(errors.New("late")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal run must reject Fail, got %v", err)
	}
	if r.State() != Parsed {
		t.Fatalf("terminal state changed to %s", r.State())
	}
}

func TestRun_ExplicitFail(t *testing.T) {
	dev := &scriptedDevice{}
	o, _, _ := newTestOrchestrator(t, dev)

	r, _ := o.NewRun(e2eRequest)
	if err := r.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}

	reason := errors.New("operator abort")
	if err := r.Fail(reason); !errors.Is(err, reason) {
		t.Fatalf("expected reason back, got %v", err)
	}
	if r.State() != Failed || !errors.Is(r.Err(), reason) {
		t.Fatalf("expected Failed with reason, got %s / %v", r.State(), r.Err())
	}
	if err := r.Arm(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("failed run must reject further steps, got %v", err)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	dev, c, s := &scriptedDevice{}, &memCounter{}, &memSink{}

	if _, err := New(nil, c, s); err == nil {
		t.Fatalf("expected error for nil device")
	}
	if _, err := New(dev, nil, s); err == nil {
		t.Fatalf("expected error for nil counter")
	}
	if _, err := New(dev, c, nil); err == nil {
		t.Fatalf("expected error for nil sink")
	}
	if _, err := New(dev, c, s, WithMinSampleFraction(2)); err == nil {
		t.Fatalf("expected error for fraction > 1")
	}
}

func TestNewRun_RejectsInvalidRequest(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, &scriptedDevice{})

	if _, err := o.NewRun(Request{SampleRate: 0, SampleCount: 5}); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
	if _, err := o.NewRun(Request{SampleRate: 1, SampleCount: 5, BufferMargin: -1}); err == nil {
		t.Fatalf("expected error for negative margin")
	}
}
