// internal/session/sim.go
package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// SimConfig shapes the simulated digitizer.
type SimConfig struct {
	FillStep      int    // samples added per fill query; 0 => count/4
	FragmentEvery int    // inject a fragment token after every N samples; 0 => 7, <0 => never
	IDN           string // *IDN? reply
}

// Sim is a deterministic in-process digitizing multimeter.
// It accepts every command, answers the handful of queries an
// external-trigger digitize run needs and records what it was sent.
type Sim struct {
	mu  sync.Mutex
	cfg SimConfig

	count int
	armed bool
	fill  int
	sent  []string
}

// NewSim returns a simulator in its reset state.
func NewSim(c SimConfig) *Sim {
	if c.FragmentEvery == 0 {
		c.FragmentEvery = 7
	}
	if c.IDN == "" {
		c.IDN = "KEITHLEY INSTRUMENTS,MODEL DMM6500,SIM0001,1.7.12b"
	}
	return &Sim{cfg: c}
}

// Commands returns every command and query received so far.
func (s *Sim) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *Sim) Send(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, cmd)

	switch {
	case cmd == "*RST":
		s.count, s.armed, s.fill = 0, false, 0
	case strings.HasPrefix(cmd, ":DIG:COUN "):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(cmd, ":DIG:COUN ")))
		if err != nil || n <= 0 {
			return fmt.Errorf("sim: bad sample count in %q", cmd)
		}
		s.count = n
	case cmd == "INIT":
		s.armed, s.fill = true, 0
	case cmd == "ABOR":
		s.armed = false
	}
	return nil
}

func (s *Sim) Query(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, cmd)

	switch {
	case cmd == "*IDN?":
		return s.cfg.IDN, nil

	case strings.HasPrefix(cmd, ":TRAC:ACT?"):
		if s.armed {
			s.fill = min(s.fill+s.step(), s.count)
		}
		return strconv.Itoa(s.fill), nil

	case strings.HasPrefix(cmd, ":TRAC:DATA?"):
		n, err := dataCount(cmd)
		if err != nil {
			return "", err
		}
		return s.blob(min(n, s.fill)), nil
	}

	return "", fmt.Errorf("sim: unsupported query %q", cmd)
}

func (s *Sim) Close() error { return nil }

func (s *Sim) step() int {
	if s.cfg.FillStep > 0 {
		return s.cfg.FillStep
	}
	return max(1, s.count/4)
}

// blob renders n samples of a 50-point sine in instrument exponent format,
// with fragment tokens injected between samples.
func (s *Sim) blob(n int) string {
	frags := [...]string{"-", ".E"}

	toks := make([]string, 0, n+n/7+1)
	for i := 0; i < n; i++ {
		v := math.Sin(2 * math.Pi * float64(i) / 50)
		toks = append(toks, strconv.FormatFloat(v, 'E', 6, 64))

		if s.cfg.FragmentEvery > 0 && (i+1)%s.cfg.FragmentEvery == 0 && i+1 < n {
			toks = append(toks, frags[(i/s.cfg.FragmentEvery)%len(frags)])
		}
	}
	return strings.Join(toks, ",")
}

// dataCount extracts the end index from ":TRAC:DATA? 1, <n>, '<buf>', READ".
func dataCount(cmd string) (int, error) {
	args := strings.Split(strings.TrimPrefix(cmd, ":TRAC:DATA?"), ",")
	if len(args) < 2 {
		return 0, fmt.Errorf("sim: malformed data query %q", cmd)
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("sim: malformed data query %q", cmd)
	}
	return n, nil
}
