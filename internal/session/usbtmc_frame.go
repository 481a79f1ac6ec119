// internal/session/usbtmc_frame.go
package session

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// USBTMC bulk message layout (USB Test & Measurement Class 1.0).
// These values define the protocol and MUST NOT be configurable.

// ---- MESSAGE IDS ----

const (
	msgDevDepMsgOut       byte = 1
	msgRequestDevDepMsgIn byte = 2
)

// ---- HEADER ----

// headerLen is the fixed bulk header size.
const headerLen = 12

// attrEOM marks the last transfer of a message.
const attrEOM byte = 0x01

// ------------------------------------------------------------
// encoding
// ------------------------------------------------------------

// encodeOut builds a DEV_DEP_MSG_OUT transfer, padded to 4 bytes.
func encodeOut(tag byte, payload []byte, eom bool) []byte {
	total := headerLen + len(payload)
	total += (4 - total%4) % 4

	b := make([]byte, total)
	b[0] = msgDevDepMsgOut
	b[1] = tag
	b[2] = ^tag
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(payload)))
	if eom {
		b[8] = attrEOM
	}
	copy(b[headerLen:], payload)

	return b
}

// encodeRequestIn builds a REQUEST_DEV_DEP_MSG_IN transfer.
func encodeRequestIn(tag byte, maxSize uint32) []byte {
	b := make([]byte, headerLen)
	b[0] = msgRequestDevDepMsgIn
	b[1] = tag
	b[2] = ^tag
	binary.LittleEndian.PutUint32(b[4:8], maxSize)
	return b
}

// ------------------------------------------------------------
// decoding
// ------------------------------------------------------------

type inHeader struct {
	Tag  byte
	Size uint32
	EOM  bool
}

// decodeInHeader parses the header of a DEV_DEP_MSG_IN transfer.
func decodeInHeader(b []byte) (inHeader, error) {
	if len(b) < headerLen {
		return inHeader{}, fmt.Errorf("usbtmc: short header: %d bytes", len(b))
	}
	if b[0] != msgRequestDevDepMsgIn {
		return inHeader{}, fmt.Errorf("usbtmc: unexpected msg id %d", b[0])
	}
	if b[2] != ^b[1] {
		return inHeader{}, fmt.Errorf("usbtmc: tag mismatch: tag=%d inverse=%d", b[1], b[2])
	}

	return inHeader{
		Tag:  b[1],
		Size: binary.LittleEndian.Uint32(b[4:8]),
		EOM:  b[8]&attrEOM != 0,
	}, nil
}

// nextTag cycles 1..255; zero is not a valid bTag.
func nextTag(t byte) byte {
	if t == 255 {
		return 1
	}
	return t + 1
}

// ------------------------------------------------------------
// VISA resource strings
// ------------------------------------------------------------

// usbResource is a parsed "USB[board]::VID::PID[::serial][::INSTR]" string.
type usbResource struct {
	VID    uint16
	PID    uint16
	Serial string // empty = first match
}

func parseUSBResource(s string) (usbResource, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) < 3 || !strings.HasPrefix(strings.ToUpper(parts[0]), "USB") {
		return usbResource{}, fmt.Errorf("usbtmc: bad resource %q", s)
	}
	if last := strings.ToUpper(parts[len(parts)-1]); last == "INSTR" {
		parts = parts[:len(parts)-1]
	}

	vid, err := strconv.ParseUint(parts[1], 0, 16)
	if err != nil {
		return usbResource{}, fmt.Errorf("usbtmc: bad vendor id in %q: %w", s, err)
	}
	pid, err := strconv.ParseUint(parts[2], 0, 16)
	if err != nil {
		return usbResource{}, fmt.Errorf("usbtmc: bad product id in %q: %w", s, err)
	}

	r := usbResource{VID: uint16(vid), PID: uint16(pid)}
	if len(parts) > 3 {
		r.Serial = parts[3]
	}
	return r, nil
}
