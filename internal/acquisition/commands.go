// internal/acquisition/commands.go
package acquisition

import (
	"fmt"
	"strconv"
)

// ArmCommand starts the trigger model; the capture waits for the external edge.
const ArmCommand = "INIT"

// ConfigureCommands returns the command sequence that programs a DMM6500
// for an externally triggered digitize of req.SampleCount samples.
// Order matters: *RST first, trigger blocks numbered contiguously.
func ConfigureCommands(req Request) []string {
	q := req.Quantity.SCPI()
	buf := req.Buffer()

	cmds := []string{
		"*RST",
		fmt.Sprintf(":DIG:FUNC '%s'", q),
		fmt.Sprintf(":TRAC:MAKE '%s', %d", buf, req.Capacity()),
		fmt.Sprintf(":DIG:%s:SRAT %d", q, req.SampleRate),
		fmt.Sprintf(":DIG:%s:APER AUTO", q),
		fmt.Sprintf(":DIG:COUN %d", req.SampleCount),
	}

	if req.Range > 0 {
		cmds = append(cmds, fmt.Sprintf(":DIG:%s:RANG %s", q, strconv.FormatFloat(req.Range, 'g', -1, 64)))
	}

	cmds = append(cmds,
		":TRIG:EXT:IN:CLE",
		":TRIG:EXT:IN:EDGE RIS",
		fmt.Sprintf(":TRIG:BLOC:BUFF:CLE 1, '%s'", buf),
		":TRIG:BLOC:WAIT 2, EXT",
		fmt.Sprintf(":TRIG:BLOC:MDIG 3, '%s', %d", buf, req.SampleCount),
	)

	if req.TriggerOut {
		cmds = append(cmds,
			":TRIG:BLOC:NOT 4, 1",
			":TRIG:EXT:OUT:LOG POS",
			":TRIG:EXT:OUT:STIM NOT1",
		)
	}

	return cmds
}

// FillQuery asks for the number of readings stored in the buffer.
func FillQuery(req Request) string {
	return fmt.Sprintf(":TRAC:ACT? '%s'", req.Buffer())
}

// DrainQuery reads exactly SampleCount readings from the buffer.
func DrainQuery(req Request) string {
	return fmt.Sprintf(":TRAC:DATA? 1, %d, '%s', READ", req.SampleCount, req.Buffer())
}
