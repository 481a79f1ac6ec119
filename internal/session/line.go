// internal/session/line.go
package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Terminator ends every command and every response line.
const Terminator = "\n"

// lineSession speaks newline-terminated commands over a byte stream.
// Used by the socket and serial transports.
type lineSession struct {
	mu  sync.Mutex
	rw  io.ReadWriteCloser
	rd  *bufio.Reader
	arm func() error // per-exchange deadline hook (optional)
}

func newLineSession(rw io.ReadWriteCloser, arm func() error) *lineSession {
	return &lineSession{
		rw:  rw,
		rd:  bufio.NewReaderSize(rw, 64*1024),
		arm: arm,
	}
}

func (s *lineSession) Send(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(cmd)
}

func (s *lineSession) Query(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(cmd); err != nil {
		return "", err
	}

	line, err := s.rd.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("session: read reply to %q: %w", cmd, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *lineSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rw.Close()
}

func (s *lineSession) write(cmd string) error {
	if s.arm != nil {
		if err := s.arm(); err != nil {
			return fmt.Errorf("session: set deadline: %w", err)
		}
	}
	if _, err := io.WriteString(s.rw, cmd+Terminator); err != nil {
		return fmt.Errorf("session: write %q: %w", cmd, err)
	}
	return nil
}
