// internal/acquisition/types.go
package acquisition

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ---- QUANTITY ----

// Quantity selects what the digitizer measures.
type Quantity uint8

const (
	Voltage Quantity = iota
	Current
)

// ParseQuantity accepts "voltage" or "current".
func ParseQuantity(s string) (Quantity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "voltage":
		return Voltage, nil
	case "current":
		return Current, nil
	}
	return 0, fmt.Errorf("acquisition: unknown quantity %q", s)
}

func (q Quantity) String() string {
	if q == Current {
		return "current"
	}
	return "voltage"
}

// SCPI is the digitize function mnemonic.
func (q Quantity) SCPI() string {
	if q == Current {
		return "CURR"
	}
	return "VOLT"
}

// Header is the artifact column header.
func (q Quantity) Header() string {
	if q == Current {
		return "Current (A)"
	}
	return "Voltage (V)"
}

// DefaultBuffer is the reading buffer created when none is named.
func (q Quantity) DefaultBuffer() string {
	if q == Current {
		return "cDataBuffer"
	}
	return "vDataBuffer"
}

// ---- REQUEST ----

// Request describes one digitize run.
// Capacity = SampleCount + BufferMargin.
type Request struct {
	SampleRate   int
	SampleCount  int
	BufferMargin int
	Quantity     Quantity
	Range        float64 // 0 => instrument default
	BufferName   string  // "" => Quantity.DefaultBuffer()
	TriggerOut   bool    // pulse external trigger-out when the capture completes
}

// Capacity is the buffer size reserved on the instrument.
func (r Request) Capacity() int { return r.SampleCount + r.BufferMargin }

// Buffer returns the effective reading buffer name.
func (r Request) Buffer() string {
	if r.BufferName != "" {
		return r.BufferName
	}
	return r.Quantity.DefaultBuffer()
}

// Validate checks the request invariants.
func (r Request) Validate() error {
	var errs []string

	if r.SampleRate <= 0 {
		errs = append(errs, fmt.Sprintf("sample_rate must be > 0, got %d", r.SampleRate))
	}
	if r.SampleCount <= 0 {
		errs = append(errs, fmt.Sprintf("sample_count must be > 0, got %d", r.SampleCount))
	}
	if r.BufferMargin < 0 {
		errs = append(errs, fmt.Sprintf("buffer_margin must be >= 0, got %d", r.BufferMargin))
	}
	if r.Range < 0 {
		errs = append(errs, fmt.Sprintf("range must be >= 0, got %g", r.Range))
	}
	if r.Quantity != Voltage && r.Quantity != Current {
		errs = append(errs, fmt.Sprintf("unknown quantity %d", r.Quantity))
	}
	if strings.ContainsAny(r.BufferName, "'\"\n") {
		errs = append(errs, "buffer name must not contain quotes or newlines")
	}

	if len(errs) > 0 {
		return errors.New("acquisition: invalid request: " + strings.Join(errs, " | "))
	}
	return nil
}

// ---- RECORD ----

// RunRecord is what a successful run hands to the artifact writers.
type RunRecord struct {
	RunNumber     uint64
	AcquisitionID string
	Quantity      Quantity
	SampleRate    int
	SampleCount   int
	Samples       []float64
	Skipped       int // malformed tokens discarded by the parser
	CompletedAt   time.Time
}

// Result is reported to the Observer once per run, on its terminal transition.
type Result struct {
	Record  RunRecord // partially filled on failure
	State   State     // Parsed or Failed
	Failed  State     // state the run was in when it failed
	Err     error
	Elapsed time.Duration
	Polls   int
}
