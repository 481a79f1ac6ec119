// internal/session/session.go
package session

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/bench-digitizer/internal/config"
)

// Device is the command/response capability the acquisition needs.
// Implementations are synchronous; one call = one exchange.
type Device interface {
	Send(cmd string) error
	Query(cmd string) (string, error)
}

// Session is a Device with an owned lifecycle.
type Session interface {
	Device
	Close() error
}

// Open builds a session for the configured transport.
// Assumes config has already passed validation and normalization.
func Open(ic cfg.InstrumentConfig) (Session, error) {
	timeout := time.Duration(ic.TimeoutMs) * time.Millisecond

	switch ic.Transport {
	case cfg.TransportUSBTMC:
		return OpenUSBTMC(ic.Address, timeout)
	case cfg.TransportSocket:
		return DialSocket(ic.Address, timeout)
	case cfg.TransportSerial:
		return OpenSerial(ic.Address, ic.BaudRate, timeout)
	case cfg.TransportSim:
		return NewSim(SimConfig{}), nil
	default:
		return nil, fmt.Errorf("session: unsupported transport %q", ic.Transport)
	}
}
