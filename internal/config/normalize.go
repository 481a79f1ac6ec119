// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultTimeoutMs       = 5000
	DefaultBaudRate        = 9600
	DefaultBufferMargin    = 5
	DefaultCounterPath     = "test_number.txt"
	DefaultOutputDir       = "."
	DefaultIndexTable      = "runs"
	DefaultStatusTimeoutMs = 1000
	DefaultInstrumentName  = "DMM6500"
	DeviceNameMaxChars     = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// INSTRUMENT
	// ------------------------------------------------------------

	in := &cfg.Instrument

	if in.TimeoutMs == 0 {
		in.TimeoutMs = DefaultTimeoutMs
	}
	if in.Transport == TransportSerial && in.BaudRate == 0 {
		in.BaudRate = DefaultBaudRate
	}
	if in.Name == "" {
		in.Name = DefaultInstrumentName
	}

	// Normalize name:
	// - ASCII already validated
	// - Truncate to max 16 characters
	if len(in.Name) > DeviceNameMaxChars {
		in.Name = in.Name[:DeviceNameMaxChars]
	}

	// ------------------------------------------------------------
	// ACQUISITION
	// ------------------------------------------------------------

	a := &cfg.Acquisition

	if a.BufferMargin == nil {
		m := DefaultBufferMargin
		a.BufferMargin = &m
	}
	if a.BufferName == "" {
		if a.Quantity == QuantityCurrent {
			a.BufferName = "cDataBuffer"
		} else {
			a.BufferName = "vDataBuffer"
		}
	}

	// ------------------------------------------------------------
	// OUTPUT / COUNTER
	// ------------------------------------------------------------

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.Prefix == "" {
		if a.Quantity == QuantityCurrent {
			cfg.Output.Prefix = "C_DMM6500_c"
		} else {
			cfg.Output.Prefix = "V_DMM6500_v"
		}
	}
	if cfg.Counter.Path == "" {
		cfg.Counter.Path = DefaultCounterPath
	}

	// ------------------------------------------------------------
	// OPT-IN SINKS
	// ------------------------------------------------------------

	if cfg.Index.Enabled() && cfg.Index.Table == "" {
		cfg.Index.Table = DefaultIndexTable
	}
	if cfg.Status.Enabled() && cfg.Status.TimeoutMs == 0 {
		cfg.Status.TimeoutMs = DefaultStatusTimeoutMs
	}

	// No other normalization is performed here.
	// Command building and runtime writes belong to later stages.
}
