// cmd/digitizer/cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	// run index drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tamzrod/bench-digitizer/internal/acquisition"
	"github.com/tamzrod/bench-digitizer/internal/config"
	"github.com/tamzrod/bench-digitizer/internal/counter"
	"github.com/tamzrod/bench-digitizer/internal/metrics"
	"github.com/tamzrod/bench-digitizer/internal/poller"
	"github.com/tamzrod/bench-digitizer/internal/session"
	"github.com/tamzrod/bench-digitizer/internal/status"
	"github.com/tamzrod/bench-digitizer/internal/writer"
)

var (
	runCount  int
	keepGoing bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Capture triggered acquisitions",
	Long: `Configures and arms the instrument, waits for the external trigger to fill
the buffer, drains it and writes one numbered CSV artifact per run.
The session is reopened for every run.

Examples:
  digitizer run -c bench.yaml                 # Capture until interrupted
  digitizer run -c bench.yaml --runs 1        # Capture a single run
  digitizer run -c bench.yaml --keep-going    # Log failed runs and continue`,
	Args: cobra.NoArgs,
	RunE: runAcquire,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runCount, "runs", "n", 0,
		"number of runs to capture (0 = until interrupted)")
	runCmd.Flags().BoolVar(&keepGoing, "keep-going", false,
		"continue with the next run after a failed run")
}

func runAcquire(cmd *cobra.Command, args []string) error {
	if runCount < 0 {
		return fmt.Errorf("--runs must be >= 0, got %d", runCount)
	}

	c, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := acquisition.RequestFromConfig(c.Acquisition)
	if err != nil {
		return fmt.Errorf("acquisition request failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Build shared pipeline
	// --------------------

	store, err := counter.Open(c.Counter.Path)
	if err != nil {
		return err
	}

	sink, csvw, closeWriters, err := writer.BuildRunWriters(c)
	if err != nil {
		return fmt.Errorf("run writers build failed: %w", err)
	}
	defer closeWriters()

	statusWriter, closeStatus, err := writer.BuildStatusWriter(c)
	if err != nil {
		return fmt.Errorf("status writer build failed (endpoint=%s): %w", c.Status.Endpoint, err)
	}
	defer closeStatus()

	var observer acquisition.Observer
	if c.Metrics.Addr != "" {
		observer = metrics.New(prometheus.DefaultRegisterer)
		shutdown := serveMetrics(c.Metrics.Addr)
		defer shutdown()
	}

	tracker := &statusTracker{}
	publish := func(snap status.Snapshot) {
		if statusWriter == nil {
			return
		}
		if err := statusWriter.WriteStatus(snap); err != nil {
			log.Printf("status write failed (unit=%d): %v", c.Status.UnitID, err)
		}
	}

	// --------------------
	// Run loop
	// --------------------

	for i := 1; runCount == 0 || i <= runCount; i++ {
		if ctx.Err() != nil {
			break
		}

		publish(tracker.starting())

		r, err := acquireOnce(ctx, c, req, store, sink, observer)
		publish(tracker.finished(r, err))

		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("run interrupted (state=%s)", stateOf(r))
				break
			}
			log.Printf("run failed (state=%s, code=%d): %v", stateOf(r), acquisition.ErrorCode(err), err)
			if !keepGoing {
				return err
			}
			continue
		}

		rec := r.Record()
		log.Printf("run %d complete (id=%s, samples=%d, malformed=%d): %s",
			rec.RunNumber, rec.AcquisitionID, len(rec.Samples), rec.Skipped, csvw.PathFor(rec.RunNumber))
	}

	return nil
}

// acquireOnce opens a fresh session, drives one run and closes the session.
func acquireOnce(
	ctx context.Context,
	c *config.Config,
	req acquisition.Request,
	store *counter.Store,
	sink writer.Fanout,
	observer acquisition.Observer,
) (*acquisition.Run, error) {
	s, err := session.Open(c.Instrument)
	if err != nil {
		return nil, fmt.Errorf("session open failed (transport=%s, address=%s): %w",
			c.Instrument.Transport, c.Instrument.Address, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("session close failed (address=%s): %v", c.Instrument.Address, err)
		}
	}()

	opts := []acquisition.Option{
		acquisition.WithPollLimits(poller.LimitsFromConfig(c.Acquisition.Poll)),
		acquisition.WithMinSampleFraction(c.Acquisition.MinSampleFraction),
	}
	if verbose {
		opts = append(opts, acquisition.WithProgress(progressLog(req.SampleCount, log.Printf)))
	}
	if observer != nil {
		opts = append(opts, acquisition.WithObserver(observer))
	}

	o, err := acquisition.New(s, store, sink, opts...)
	if err != nil {
		return nil, err
	}

	log.Printf("armed, waiting for trigger (samples=%d, rate=%d, buffer=%s)",
		req.SampleCount, req.SampleRate, req.Buffer())
	return o.Acquire(ctx, req)
}

// serveMetrics exposes the default registry on addr until shutdown is called.
func serveMetrics(addr string) (shutdown func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server failed (addr=%s): %v", addr, err)
		}
	}()
	log.Printf("metrics listening (addr=%s)", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func stateOf(r *acquisition.Run) acquisition.State {
	if r == nil {
		return acquisition.Idle
	}
	return r.State()
}
