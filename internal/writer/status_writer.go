// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/bench-digitizer/internal/status"
)

// DeviceStatusWriter publishes the acquisition status block.
type DeviceStatusWriter struct {
	plan StatusPlan
	cli  EndpointClient

	needFull bool
	last     []uint16
	nameRegs []uint16
}

// NewDeviceStatusWriter builds a status writer for one block.
func NewDeviceStatusWriter(plan StatusPlan, cli EndpointClient) (*DeviceStatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if int(plan.BaseSlot)*status.SlotsPerDevice+status.SlotsPerDevice > 0x10000 {
		return nil, fmt.Errorf("status writer: base slot %d out of range", plan.BaseSlot)
	}

	return &DeviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}, nil
}

// WriteStatus delivers a snapshot into status memory.
// The first call (and the first call after any failure) writes the whole
// block including the name; later calls write only changed live slots.
func (sw *DeviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil {
		return errors.New("status writer: disabled")
	}

	regs := status.Encode(s)
	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		copy(regs[status.SlotDeviceNameStart:], sw.nameRegs)

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, regs); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write per contiguous run of changed live slots.
	// Hi/lo word pairs stay together when both change.
	// ------------------------------------------------------------
	var errs []string

	for start := 0; start < status.LiveSlots; {
		if regs[start] == sw.last[start] {
			start++
			continue
		}

		end := start + 1
		for end < status.LiveSlots && regs[end] != sw.last[end] {
			end++
		}

		if err := sw.cli.WriteRegisters(
			sw.plan.UnitID,
			baseAddr+uint16(start),
			regs[start:end],
		); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d-%d write failed: %v", start, end-1, err))
		} else {
			copy(sw.last[start:end], regs[start:end])
		}

		start = end
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *DeviceStatusWriter) baseAddr() uint16 {
	// Each instrument owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < status.DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
