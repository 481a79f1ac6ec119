// internal/writer/csv.go
package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tamzrod/bench-digitizer/internal/acquisition"
)

// CSVWriter emits one delimited file per run:
//
//	Sample Rate: <rate>
//	No. Samples: <count>
//	<quantity header>
//	<one row per parsed sample>
type CSVWriter struct {
	dir    string
	prefix string
}

// NewCSVWriter writes <dir>/<prefix>_<run>.csv.
func NewCSVWriter(dir, prefix string) (*CSVWriter, error) {
	if prefix == "" {
		return nil, errors.New("writer: csv prefix required")
	}
	if dir == "" {
		dir = "."
	}
	return &CSVWriter{dir: dir, prefix: prefix}, nil
}

// PathFor returns the artifact path for a run number.
func (w *CSVWriter) PathFor(run uint64) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%d.csv", w.prefix, run))
}

// WriteRun writes the artifact to a temp file and renames it into place,
// so a failed run never leaves a truncated file under the final name.
func (w *CSVWriter) WriteRun(rec acquisition.RunRecord) error {
	if rec.RunNumber == 0 {
		return errors.New("writer: csv: run number not assigned")
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("writer: csv: mkdir %s: %w", w.dir, err)
	}

	final := w.PathFor(rec.RunNumber)

	tmp, err := os.CreateTemp(w.dir, "."+filepath.Base(final)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writer: csv: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writer: csv: run %d: %w", rec.RunNumber, err)
	}

	cw := csv.NewWriter(tmp)
	cw.UseCRLF = true

	rows := [][]string{
		{fmt.Sprintf("Sample Rate: %d", rec.SampleRate)},
		{fmt.Sprintf("No. Samples: %d", rec.SampleCount)},
		{rec.Quantity.Header()},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fail(err)
	}
	for _, v := range rec.Samples {
		if err := cw.Write([]string{FormatSample(v)}); err != nil {
			return fail(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fail(err)
	}

	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writer: csv: run %d: %w", rec.RunNumber, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writer: csv: run %d: %w", rec.RunNumber, err)
	}
	return nil
}

// FormatSample renders the shortest exact representation;
// integral values keep a trailing ".0".
func FormatSample(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
