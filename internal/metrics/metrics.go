// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/bench-digitizer/internal/acquisition"
	"github.com/tamzrod/bench-digitizer/internal/status"
)

const namespace = "digitizer"

// Metrics is an acquisition.Observer backed by Prometheus collectors.
type Metrics struct {
	runs        *prometheus.CounterVec
	samples     prometheus.Counter
	malformed   prometheus.Counter
	polls       prometheus.Counter
	bufferFill  prometheus.Gauge
	duration    prometheus.Histogram
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished acquisition runs by result.",
		}, []string{"result"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_parsed_total",
			Help:      "Samples parsed from drained buffers.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_tokens_total",
			Help:      "Tokens discarded by the numeric stream parser.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_polls_total",
			Help:      "Buffer fill-count queries answered by the instrument.",
		}),
		bufferFill: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_fill",
			Help:      "Last reported buffer fill count.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time from run start to terminal state, trigger wait included.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_number",
			Help:      "Run number of the last successful run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Completion time of the last successful run.",
		}),
	}

	reg.MustRegister(
		m.runs,
		m.samples,
		m.malformed,
		m.polls,
		m.bufferFill,
		m.duration,
		m.lastRun,
		m.lastSuccess,
	)
	return m
}

// FillPolled implements acquisition.Observer.
func (m *Metrics) FillPolled(fill int) {
	m.polls.Inc()
	m.bufferFill.Set(float64(fill))
}

// RunFinished implements acquisition.Observer.
func (m *Metrics) RunFinished(res acquisition.Result) {
	m.runs.WithLabelValues(Result(res.Err)).Inc()
	m.duration.Observe(res.Elapsed.Seconds())

	// Parse may have run even if the artifact failed.
	m.samples.Add(float64(len(res.Record.Samples)))
	m.malformed.Add(float64(res.Record.Skipped))

	if res.State == acquisition.Parsed {
		m.lastRun.Set(float64(res.Record.RunNumber))
		m.lastSuccess.Set(float64(res.Record.CompletedAt.Unix()))
	}
}

// Result is the runs_total label for an outcome.
func Result(err error) string {
	switch acquisition.ErrorCode(err) {
	case status.ErrorCodeNone:
		return "ok"
	case status.ErrorCodeTransport:
		return "transport"
	case status.ErrorCodeTimeout:
		return "timeout"
	case status.ErrorCodeInsufficientSamples:
		return "insufficient_samples"
	case status.ErrorCodeCancelled:
		return "cancelled"
	case status.ErrorCodeArtifact:
		return "artifact"
	default:
		return "error"
	}
}

var _ acquisition.Observer = (*Metrics)(nil)
