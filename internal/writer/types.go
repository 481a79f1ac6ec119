// internal/writer/types.go
package writer

import (
	"github.com/tamzrod/bench-digitizer/internal/acquisition"
	"github.com/tamzrod/bench-digitizer/internal/status"
)

// RunWriter persists one successful run. Satisfies acquisition.ArtifactWriter.
type RunWriter interface {
	WriteRun(rec acquisition.RunRecord) error
}

// StatusWriter is the delivery-only contract for the status block.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// EndpointClient is the single register-write capability the status writer needs.
type EndpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusPlan is the fully-built status block destination.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}
