// internal/acquisition/errors.go
package acquisition

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamzrod/bench-digitizer/internal/status"
)

// ErrInvalidTransition is returned when a step is called out of order.
// The run state is left unchanged.
var ErrInvalidTransition = errors.New("acquisition: invalid state transition")

// TransportError is any device command or query failure. No retry.
type TransportError struct {
	Op      string // configure | arm | poll | drain
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("acquisition: %s: %q: %v", e.Op, e.Command, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Code() uint16 { return status.ErrorCodeTransport }

// InsufficientSamplesError is raised by the optional minimum-fraction policy.
type InsufficientSamplesError struct {
	Parsed      int
	Requested   int
	MinFraction float64
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf(
		"acquisition: insufficient samples: parsed=%d requested=%d min_fraction=%g",
		e.Parsed, e.Requested, e.MinFraction,
	)
}

func (e *InsufficientSamplesError) Code() uint16 { return status.ErrorCodeInsufficientSamples }

// ArtifactError is a sink or run counter persistence failure.
// Run is the number that was reserved but not committed.
type ArtifactError struct {
	Run uint64
	Err error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("acquisition: artifact for run %d: %v", e.Run, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

func (e *ArtifactError) Code() uint16 { return status.ErrorCodeArtifact }

// ErrorCode maps an error onto the status block error code.
// Errors exposing Code() win; cancellation is recognised; anything else is generic.
func ErrorCode(err error) uint16 {
	if err == nil {
		return status.ErrorCodeNone
	}

	var ce interface{ Code() uint16 }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.ErrorCodeCancelled
	}
	return status.ErrorCodeGeneric
}
