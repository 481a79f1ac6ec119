// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// All problems are reported at once.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	// ------------------------------------------------------------
	// INSTRUMENT
	// ------------------------------------------------------------

	in := cfg.Instrument

	switch in.Transport {
	case TransportUSBTMC, TransportSocket, TransportSerial:
		if in.Address == "" {
			add("instrument: address is required for transport %q", in.Transport)
		}
	case TransportSim:
	case "":
		add("instrument: transport is required")
	default:
		add("instrument: unknown transport %q", in.Transport)
	}

	if in.Transport == TransportSerial && in.BaudRate < 0 {
		add("instrument: baud_rate must be >= 0")
	}
	if in.TimeoutMs < 0 {
		add("instrument: timeout_ms must be >= 0")
	}

	// device_name sanity (ASCII only)
	for i := 0; i < len(in.Name); i++ {
		if in.Name[i] > 0x7F {
			add("instrument: name must contain ASCII characters only")
			break
		}
	}

	// ------------------------------------------------------------
	// ACQUISITION
	// ------------------------------------------------------------

	a := cfg.Acquisition

	switch a.Quantity {
	case QuantityVoltage, QuantityCurrent:
	case "":
		add("acquisition: quantity is required")
	default:
		add("acquisition: unknown quantity %q", a.Quantity)
	}

	if a.SampleRate <= 0 {
		add("acquisition: sample_rate must be > 0")
	}
	if a.SampleCount <= 0 {
		add("acquisition: sample_count must be > 0")
	}
	if a.BufferMargin != nil && *a.BufferMargin < 0 {
		add("acquisition: buffer_margin must be >= 0")
	}
	if strings.ContainsAny(a.BufferName, "'\"\n") {
		add("acquisition: buffer_name must not contain quotes or newlines")
	}
	if a.Range < 0 {
		add("acquisition: range must be >= 0")
	}
	if a.MinSampleFraction < 0 || a.MinSampleFraction > 1 {
		add("acquisition: min_sample_fraction must be within [0, 1]")
	}
	if a.Poll.IntervalMs < 0 || a.Poll.MaxWaitMs < 0 || a.Poll.MaxPolls < 0 {
		add("acquisition: poll limits must be >= 0")
	}

	// ------------------------------------------------------------
	// OUTPUT / COUNTER
	// ------------------------------------------------------------

	if strings.ContainsAny(cfg.Output.Prefix, `/\`) {
		add("output: prefix must not contain path separators")
	}

	// ------------------------------------------------------------
	// RUN INDEX (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Index.Enabled() {
		switch cfg.Index.Driver {
		case DriverSQLite, DriverPostgres:
		default:
			add("index: unknown driver %q", cfg.Index.Driver)
		}
		if cfg.Index.DSN == "" {
			add("index: dsn is required when driver is set")
		}
		if cfg.Index.Table != "" && !isIdent(cfg.Index.Table) {
			add("index: table %q is not a plain identifier", cfg.Index.Table)
		}
	}

	// ------------------------------------------------------------
	// STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Status.Enabled() {
		if cfg.Status.TimeoutMs < 0 {
			add("status: timeout_ms must be >= 0")
		}
		// the block must fit in the 16-bit register space
		if int(cfg.Status.BaseSlot)*statusSlots+statusSlots > 0x10000 {
			add("status: base_slot %d is out of range", cfg.Status.BaseSlot)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, " | "))
	}
	return nil
}

// statusSlots mirrors status.SlotsPerDevice without importing runtime packages.
const statusSlots = 20

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
