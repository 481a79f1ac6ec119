// internal/session/socket.go
package session

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultSocketPort is the raw SCPI port on LAN instruments.
const DefaultSocketPort = "5025"

// DialSocket opens a raw SCPI session over TCP.
// An address without a port gets DefaultSocketPort.
func DialSocket(addr string, timeout time.Duration) (Session, error) {
	if addr == "" {
		return nil, errors.New("session: socket address required")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, DefaultSocketPort)
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("session: dial %s: %w", addr, err)
	}

	var arm func() error
	if timeout > 0 {
		arm = func() error { return conn.SetDeadline(time.Now().Add(timeout)) }
	}
	return newLineSession(conn, arm), nil
}
