// internal/config/config.go
package config

type Config struct {
	Instrument  InstrumentConfig  `yaml:"instrument"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Output      OutputConfig      `yaml:"output"`
	Counter     CounterConfig     `yaml:"counter"`
	Index       IndexConfig       `yaml:"index"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Status      StatusConfig      `yaml:"status"`
}

// ---- INSTRUMENT ----

type InstrumentConfig struct {
	Name      string `yaml:"name"`      // status block device name (ASCII)
	Transport string `yaml:"transport"` // usbtmc | socket | serial | sim
	Address   string `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`
	BaudRate  int    `yaml:"baud_rate"` // serial only
}

const (
	TransportUSBTMC = "usbtmc"
	TransportSocket = "socket"
	TransportSerial = "serial"
	TransportSim    = "sim"
)

// ---- ACQUISITION ----

type AcquisitionConfig struct {
	Quantity          string     `yaml:"quantity"` // voltage | current
	SampleRate        int        `yaml:"sample_rate"`
	SampleCount       int        `yaml:"sample_count"`
	BufferMargin      *int       `yaml:"buffer_margin"` // nil => default
	BufferName        string     `yaml:"buffer_name"`
	Range             float64    `yaml:"range"` // 0 => instrument default
	TriggerOut        bool       `yaml:"trigger_out"`
	MinSampleFraction float64    `yaml:"min_sample_fraction"` // 0 disables the policy
	Poll              PollConfig `yaml:"poll"`
}

const (
	QuantityVoltage = "voltage"
	QuantityCurrent = "current"
)

// ---- POLL ----

// All zero => poll back-to-back until the buffer is full.
type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
	MaxWaitMs  int `yaml:"max_wait_ms"`
	MaxPolls   int `yaml:"max_polls"`
}

// ---- OUTPUT ----

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"` // "" => per-quantity default
}

type CounterConfig struct {
	Path string `yaml:"path"`
}

// ---- RUN INDEX (optional, opt-in) ----

type IndexConfig struct {
	Driver string `yaml:"driver"` // sqlite3 | postgres
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ---- METRICS (optional, opt-in) ----

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// ---- STATUS BLOCK (optional, opt-in) ----

type StatusConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Enabled reports whether a status endpoint was configured.
func (s StatusConfig) Enabled() bool { return s.Endpoint != "" }

// Enabled reports whether a run index was configured.
func (i IndexConfig) Enabled() bool { return i.Driver != "" }
