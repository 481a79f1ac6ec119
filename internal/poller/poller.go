// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"
)

// ErrBadFillCount is returned when the instrument answers the fill query
// with something that is not an integer.
var ErrBadFillCount = errors.New("poller: unparseable fill count")

// FillCounter abstracts the single query the poller needs.
// One call = one synchronous device round trip.
type FillCounter interface {
	FillCount() (int, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Target int
	Limits
}

// Poller is a dumb, query-driven waiter.
type Poller struct {
	cfg     Config
	counter FillCounter
	now     func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, counter FillCounter) (*Poller, error) {
	if counter == nil {
		return nil, errors.New("poller: fill counter required")
	}
	if cfg.Target <= 0 {
		return nil, errors.New("poller: target must be > 0")
	}
	if cfg.Interval < 0 || cfg.MaxWait < 0 || cfg.MaxPolls < 0 {
		return nil, errors.New("poller: limits must be >= 0")
	}
	return &Poller{cfg: cfg, counter: counter, now: time.Now}, nil
}

// PollOnce performs exactly one fill-count query.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{At: p.now()}

	n, err := p.counter.FillCount()
	if err != nil {
		res.Err = fmt.Errorf("poller: fill query: %w", err)
		return res
	}
	if n < 0 {
		res.Err = fmt.Errorf("%w: %d", ErrBadFillCount, n)
		return res
	}

	res.Fill = n
	return res
}
