// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/bench-digitizer/internal/config"
	wmodbus "github.com/tamzrod/bench-digitizer/internal/writer/modbus"
)

// BuildStatusPlan converts the status section into a StatusPlan.
// ok is false when the status block is disabled.
// Assumes config has already passed validation and normalization.
func BuildStatusPlan(c *cfg.Config) (StatusPlan, bool) {
	if !c.Status.Enabled() {
		return StatusPlan{}, false
	}
	return StatusPlan{
		Endpoint:   c.Status.Endpoint,
		UnitID:     c.Status.UnitID,
		BaseSlot:   c.Status.BaseSlot,
		DeviceName: c.Instrument.Name,
	}, true
}

// BuildStatusWriter dials the status endpoint and returns a ready writer.
func BuildStatusWriter(c *cfg.Config) (*DeviceStatusWriter, func() error, error) {
	plan, ok := BuildStatusPlan(c)
	if !ok {
		return nil, func() error { return nil }, nil
	}

	cli, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: plan.Endpoint,
		Timeout:  time.Duration(c.Status.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	sw, err := NewDeviceStatusWriter(plan, cli)
	if err != nil {
		_ = cli.Close()
		return nil, nil, err
	}
	return sw, cli.Close, nil
}

// BuildRunWriters assembles the CSV artifact writer plus the optional run index.
// The CSV writer is always first. The run index driver must be registered.
func BuildRunWriters(c *cfg.Config) (Fanout, *CSVWriter, func() error, error) {
	csvw, err := NewCSVWriter(c.Output.Dir, c.Output.Prefix)
	if err != nil {
		return nil, nil, nil, err
	}

	out := Fanout{csvw}
	closeAll := func() error { return nil }

	if c.Index.Enabled() {
		idx, closeIdx, err := OpenRunIndex(c.Index.Driver, c.Index.DSN, c.Index.Table, csvw.PathFor)
		if err != nil {
			return nil, nil, nil, err
		}
		out = append(out, idx)
		closeAll = closeIdx
	}

	return out, csvw, closeAll, nil
}
