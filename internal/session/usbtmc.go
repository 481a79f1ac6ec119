// internal/session/usbtmc.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
)

const (
	// USBTMC interface: application-specific class, subclass 3.
	usbtmcClass    = gousb.Class(0xFE)
	usbtmcSubClass = gousb.Class(0x03)

	// maxTransfer bounds a single REQUEST_DEV_DEP_MSG_IN.
	maxTransfer = 1 << 20

	defaultUSBTimeout = 5 * time.Second
)

// usbtmcSession talks to one instrument over USBTMC bulk endpoints.
type usbtmcSession struct {
	mu sync.Mutex

	ctx  *gousb.Context
	dev  *gousb.Device
	conf *gousb.Config
	intf *gousb.Interface

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	tag     byte
	timeout time.Duration
}

// OpenUSBTMC opens the instrument named by a VISA USB resource string.
func OpenUSBTMC(resource string, timeout time.Duration) (Session, error) {
	res, err := parseUSBResource(resource)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultUSBTimeout
	}

	ctx := gousb.NewContext()

	dev, err := openMatching(ctx, res)
	if err != nil {
		ctx.Close()
		return nil, err
	}

	// Kernel usbtmc driver may own the interface (Linux).
	_ = dev.SetAutoDetach(true)

	s := &usbtmcSession{
		ctx:     ctx,
		dev:     dev,
		timeout: timeout,
	}

	if err := s.claimInterface(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func openMatching(ctx *gousb.Context, res usbResource) (*gousb.Device, error) {
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(res.VID) && desc.Product == gousb.ID(res.PID)
	})
	if len(devs) == 0 {
		if err != nil {
			return nil, fmt.Errorf("usbtmc: enumerate: %w", err)
		}
		return nil, fmt.Errorf("usbtmc: device not found (VID:0x%04X PID:0x%04X)", res.VID, res.PID)
	}

	var picked *gousb.Device
	for _, d := range devs {
		if picked != nil {
			d.Close()
			continue
		}
		if res.Serial == "" {
			picked = d
			continue
		}
		sn, err := d.SerialNumber()
		if err == nil && strings.EqualFold(sn, res.Serial) {
			picked = d
			continue
		}
		d.Close()
	}

	if picked == nil {
		return nil, fmt.Errorf("usbtmc: no device with serial %q (VID:0x%04X PID:0x%04X)", res.Serial, res.VID, res.PID)
	}
	return picked, nil
}

// claimInterface finds and claims the USBTMC interface and its bulk endpoints.
func (s *usbtmcSession) claimInterface() error {
	conf, err := s.dev.Config(1)
	if err != nil {
		return fmt.Errorf("usbtmc: get config: %w", err)
	}
	s.conf = conf

	num, alt := -1, 0
	for _, intf := range conf.Desc.Interfaces {
		for _, as := range intf.AltSettings {
			if as.Class == usbtmcClass && as.SubClass == usbtmcSubClass {
				num, alt = intf.Number, as.Alternate
				break
			}
		}
		if num >= 0 {
			break
		}
	}
	if num < 0 {
		return errors.New("usbtmc: no USBTMC interface on device")
	}

	intf, err := conf.Interface(num, alt)
	if err != nil {
		return fmt.Errorf("usbtmc: claim interface %d: %w", num, err)
	}
	s.intf = intf

	var outNum, inNum int
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionOut:
			if outNum == 0 {
				outNum = ep.Number
			}
		case gousb.EndpointDirectionIn:
			if inNum == 0 {
				inNum = ep.Number
			}
		}
	}
	if outNum == 0 || inNum == 0 {
		return errors.New("usbtmc: bulk endpoints not found")
	}

	if s.epOut, err = intf.OutEndpoint(outNum); err != nil {
		return fmt.Errorf("usbtmc: open OUT endpoint: %w", err)
	}
	if s.epIn, err = intf.InEndpoint(inNum); err != nil {
		return fmt.Errorf("usbtmc: open IN endpoint: %w", err)
	}
	return nil
}

// ------------------------------------------------------------
// Device
// ------------------------------------------------------------

func (s *usbtmcSession) Send(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.send(cmd)
}

func (s *usbtmcSession) Query(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.send(cmd); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		chunk, eom, err := s.readTransfer()
		if err != nil {
			return "", fmt.Errorf("session: read reply to %q: %w", cmd, err)
		}
		sb.Write(chunk)
		if eom {
			break
		}
	}

	return strings.TrimRight(sb.String(), "\r\n"), nil
}

func (s *usbtmcSession) Close() error {
	if s.intf != nil {
		s.intf.Close()
		s.intf = nil
	}
	if s.conf != nil {
		_ = s.conf.Close()
		s.conf = nil
	}
	if s.dev != nil {
		_ = s.dev.Close()
		s.dev = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Close()
		s.ctx = nil
	}
	return nil
}

// ------------------------------------------------------------
// transfers
// ------------------------------------------------------------

func (s *usbtmcSession) send(cmd string) error {
	s.tag = nextTag(s.tag)
	frame := encodeOut(s.tag, []byte(cmd+Terminator), true)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.epOut.WriteContext(ctx, frame); err != nil {
		return fmt.Errorf("session: write %q: %w", cmd, err)
	}
	return nil
}

// readTransfer requests and reads one DEV_DEP_MSG_IN transfer.
// The payload may span several bulk reads.
func (s *usbtmcSession) readTransfer() ([]byte, bool, error) {
	s.tag = nextTag(s.tag)
	tag := s.tag

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.epOut.WriteContext(ctx, encodeRequestIn(tag, maxTransfer)); err != nil {
		return nil, false, fmt.Errorf("request in: %w", err)
	}

	buf := make([]byte, headerLen+maxTransfer+3)
	n, err := s.epIn.ReadContext(ctx, buf)
	if err != nil {
		return nil, false, err
	}

	h, err := decodeInHeader(buf[:n])
	if err != nil {
		return nil, false, err
	}
	if h.Tag != tag {
		return nil, false, fmt.Errorf("usbtmc: reply tag %d, want %d", h.Tag, tag)
	}
	if h.Size > maxTransfer {
		return nil, false, fmt.Errorf("usbtmc: transfer size %d exceeds request", h.Size)
	}

	want := headerLen + int(h.Size)
	for n < want {
		m, err := s.epIn.ReadContext(ctx, buf[n:])
		if err != nil {
			return nil, false, err
		}
		if m == 0 {
			return nil, false, errors.New("usbtmc: short transfer")
		}
		n += m
	}

	out := make([]byte, h.Size)
	copy(out, buf[headerLen:want])
	return out, h.EOM, nil
}
