// cmd/digitizer/cmd/report.go
package cmd

import (
	"github.com/tamzrod/bench-digitizer/internal/acquisition"
	"github.com/tamzrod/bench-digitizer/internal/poller"
	"github.com/tamzrod/bench-digitizer/internal/status"
)

// progressLog emits one line each time acquisition crosses another 10%
// of target. The final 100% line is always emitted.
func progressLog(target int, logf func(format string, args ...any)) poller.Reporter {
	next := 10
	return poller.ReporterFunc(func(p poller.Progress) {
		if target <= 0 {
			return
		}
		pct := p.Acquired * 100 / target
		if pct < next {
			return
		}
		logf("acquired %d/%d samples (%d%%)", p.Acquired, target, pct)
		next = (pct/10 + 1) * 10
	})
}

// statusTracker keeps the status snapshot across runs.
// Run number and sample counts only move on a successful run.
type statusTracker struct {
	snap status.Snapshot
}

func (t *statusTracker) starting() status.Snapshot {
	t.snap.Health = status.HealthAcquiring
	t.snap.RunState = uint16(acquisition.Idle)
	return t.snap
}

func (t *statusTracker) finished(r *acquisition.Run, err error) status.Snapshot {
	t.snap.LastErrorCode = acquisition.ErrorCode(err)

	if r != nil {
		t.snap.RunState = uint16(r.State())
	} else {
		t.snap.RunState = uint16(acquisition.Failed)
	}

	if err != nil {
		t.snap.Health = status.HealthError
		return t.snap
	}

	rec := r.Record()
	t.snap.Health = status.HealthOK
	t.snap.RunNumber = status.Saturate32(rec.RunNumber)
	t.snap.SamplesParsed = status.Saturate32(uint64(len(rec.Samples)))
	t.snap.MalformedTokens = status.Saturate16(rec.Skipped)
	return t.snap
}
