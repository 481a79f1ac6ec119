// internal/writer/fanout.go
package writer

import (
	"errors"
	"strings"

	"github.com/tamzrod/bench-digitizer/internal/acquisition"
)

// Fanout delivers a run to every writer in order.
// The first writer is the primary artifact; any failure fails the run so
// the counter does not advance. Writers must tolerate a repeated run
// number after such a failure.
type Fanout []RunWriter

func (f Fanout) WriteRun(rec acquisition.RunRecord) error {
	if len(f) == 0 {
		return errors.New("writer: no run writers")
	}

	var errs []string
	for i, w := range f {
		if w == nil {
			continue
		}
		if err := w.WriteRun(rec); err != nil {
			errs = append(errs, err.Error())
			if i == 0 {
				break // no primary artifact, secondaries are skipped
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("writer: " + strings.Join(errs, " | "))
	}
	return nil
}
