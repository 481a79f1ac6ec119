// internal/status/encode_test.go
package status

import "testing"

func TestEncode_SplitsWideFields(t *testing.T) {
	regs := Encode(Snapshot{
		Health:          HealthOK,
		LastErrorCode:   ErrorCodeNone,
		RunState:        5,
		RunNumber:       0x0001_0002,
		SamplesParsed:   100_000,
		MalformedTokens: 3,
	})

	if len(regs) != SlotsPerDevice {
		t.Fatalf("expected %d regs, got %d", SlotsPerDevice, len(regs))
	}
	if regs[SlotRunNumberHi] != 1 || regs[SlotRunNumberLo] != 2 {
		t.Fatalf("run number words mismatch: hi=%d lo=%d", regs[SlotRunNumberHi], regs[SlotRunNumberLo])
	}
	if got := uint32(regs[SlotSamplesHi])<<16 | uint32(regs[SlotSamplesLo]); got != 100_000 {
		t.Fatalf("samples mismatch: got=%d want=100000", got)
	}
	if regs[SlotMalformedTokens] != 3 {
		t.Fatalf("malformed mismatch: got=%d want=3", regs[SlotMalformedTokens])
	}
	for i := SlotDeviceNameStart; i <= SlotDeviceNameEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("name slot %d should be zero, got %d", i, regs[i])
		}
	}
}

func TestSaturate(t *testing.T) {
	if Saturate16(-4) != 0 || Saturate16(70000) != 0xFFFF || Saturate16(12) != 12 {
		t.Fatalf("Saturate16 did not clamp")
	}
	if Saturate32(1<<40) != 0xFFFFFFFF || Saturate32(9) != 9 {
		t.Fatalf("Saturate32 did not clamp")
	}
}
