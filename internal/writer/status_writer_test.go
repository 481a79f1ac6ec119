// internal/writer/status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/bench-digitizer/internal/status"
)

type regWrite struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []regWrite
	fail   error
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	cp := make([]uint16, len(regs))
	copy(cp, regs)
	f.writes = append(f.writes, regWrite{unitID: unitID, addr: addr, regs: cp})
	return nil
}

func (f *fakeEndpointClient) last() regWrite { return f.writes[len(f.writes)-1] }

func newTestStatusWriter(t *testing.T, cli *fakeEndpointClient, baseSlot uint16) *DeviceStatusWriter {
	t.Helper()
	sw, err := NewDeviceStatusWriter(StatusPlan{
		Endpoint:   "status-endpoint",
		UnitID:     1,
		BaseSlot:   baseSlot,
		DeviceName: "DMM6500",
	}, cli)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sw
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(t, cli, 2)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK, RunNumber: 1}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	w := cli.last()
	if len(w.regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(w.regs))
	}
	if w.addr != 2*status.SlotsPerDevice || w.unitID != 1 {
		t.Fatalf("unexpected destination: addr=%d unit=%d", w.addr, w.unitID)
	}

	// Verify device name encoding EXACTLY
	expected := encodeDeviceNameRegs("DMM6500")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if w.regs[slot] != expected[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, w.regs[slot], expected[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: status.ErrorCodeTimeout, RunNumber: 1}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	w = cli.last()
	if len(w.regs) == status.SlotsPerDevice {
		t.Fatalf("device name should not be rewritten on incremental update")
	}
	if w.addr != 2*status.SlotsPerDevice+status.SlotHealthCode || len(w.regs) != 2 {
		t.Fatalf("expected slots 0-1 in one write, got addr=%d regs=%v", w.addr, w.regs)
	}
}

func TestIncrementalWritesOnlyChangedSlots(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(t, cli, 0)

	base := status.Snapshot{Health: status.HealthOK, RunNumber: 7, SamplesParsed: 100}
	if err := sw.WriteStatus(base); err != nil {
		t.Fatalf("full write failed: %v", err)
	}
	cli.writes = nil

	next := base
	next.RunNumber = 8
	next.MalformedTokens = 2

	if err := sw.WriteStatus(next); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.writes) != 2 {
		t.Fatalf("expected 2 writes (run number lo, malformed), got %d: %+v", len(cli.writes), cli.writes)
	}
	if cli.writes[0].addr != status.SlotRunNumberLo || cli.writes[0].regs[0] != 8 {
		t.Fatalf("unexpected run number write: %+v", cli.writes[0])
	}
	if cli.writes[1].addr != status.SlotMalformedTokens || cli.writes[1].regs[0] != 2 {
		t.Fatalf("unexpected malformed write: %+v", cli.writes[1])
	}

	// unchanged snapshot -> no writes
	cli.writes = nil
	if err := sw.WriteStatus(next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cli.writes) != 0 {
		t.Fatalf("expected no writes, got %d", len(cli.writes))
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(t, cli, 0)

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("full write failed: %v", err)
	}

	cli.fail = errors.New("broken pipe")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatalf("expected write error")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(cli.last().regs); got != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert after failure, got %d regs", got)
	}
}

func TestNewDeviceStatusWriter_Rejects(t *testing.T) {
	if _, err := NewDeviceStatusWriter(StatusPlan{Endpoint: "x"}, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewDeviceStatusWriter(StatusPlan{BaseSlot: 4000}, &fakeEndpointClient{}); err == nil {
		t.Fatalf("expected error for out of range base slot")
	}
}

func TestEncodeDeviceNameRegs_SanitizesAndTruncates(t *testing.T) {
	regs := encodeDeviceNameRegs("AB\x01CDEFGHIJKLMNOPQRSTU")

	if regs[0] != uint16('A')<<8|uint16('B') {
		t.Fatalf("unexpected first reg %04x", regs[0])
	}
	if regs[1] != uint16('?')<<8|uint16('C') {
		t.Fatalf("control char not sanitized: %04x", regs[1])
	}
	if regs[7] != uint16('N')<<8|uint16('O') {
		t.Fatalf("expected truncation at 16 chars, last reg %04x", regs[7])
	}
}
