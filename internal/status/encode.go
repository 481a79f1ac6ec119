// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block.
// Layout is protocol-locked; name slots are left zero.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotRunState] = s.RunState
	regs[SlotRunNumberHi] = uint16(s.RunNumber >> 16)
	regs[SlotRunNumberLo] = uint16(s.RunNumber)
	regs[SlotSamplesHi] = uint16(s.SamplesParsed >> 16)
	regs[SlotSamplesLo] = uint16(s.SamplesParsed)
	regs[SlotMalformedTokens] = s.MalformedTokens

	return regs
}

// Saturate16 clamps n into the uint16 range.
func Saturate16(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > 0xFFFF {
		return 0xFFFF
	}
	return uint16(n)
}

// Saturate32 clamps n into the uint32 range.
func Saturate32(n uint64) uint32 {
	if n > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(n)
}
