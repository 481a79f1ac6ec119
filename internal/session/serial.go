// internal/session/serial.go
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/serial"
)

// OpenSerial opens a newline-terminated session on an RS-232 port (8N1).
func OpenSerial(port string, baud int, timeout time.Duration) (Session, error) {
	if port == "" {
		return nil, errors.New("session: serial port required")
	}

	p, err := serial.Open(&serial.Config{
		Address:  port,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("session: open serial %s: %w", port, err)
	}

	return newLineSession(p, nil), nil
}
