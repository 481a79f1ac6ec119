// internal/writer/index.go
package writer

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/bench-digitizer/internal/acquisition"
)

// RunIndex records one row per successful run in a SQL table.
// The row is upserted on run_number, so a run that is retried after a
// failed commit overwrites its earlier row instead of duplicating it.
type RunIndex struct {
	db      *sql.DB
	table   string
	pathFor func(run uint64) string
}

// NewRunIndex binds an index to an open database.
// pathFor names the artifact stored alongside each row (optional).
func NewRunIndex(db *sql.DB, table string, pathFor func(run uint64) string) (*RunIndex, error) {
	if db == nil {
		return nil, errors.New("writer: index: db required")
	}
	if table == "" {
		return nil, errors.New("writer: index: table required")
	}
	return &RunIndex{db: db, table: table, pathFor: pathFor}, nil
}

// OpenRunIndex opens driver/dsn, checks connectivity and ensures the schema.
// The driver must be registered by the caller (blank import).
func OpenRunIndex(driver, dsn, table string, pathFor func(run uint64) string) (*RunIndex, func() error, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("writer: index: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("writer: index: ping %s: %w", driver, err)
	}

	idx, err := NewRunIndex(db, table, pathFor)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := idx.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return idx, db.Close, nil
}

// EnsureSchema creates the table if missing. Portable across sqlite3 and postgres.
func (x *RunIndex) EnsureSchema() error {
	ddl := "CREATE TABLE IF NOT EXISTS " + x.table + " (" +
		"run_number BIGINT PRIMARY KEY, " +
		"acquisition_id TEXT NOT NULL, " +
		"quantity TEXT NOT NULL, " +
		"sample_rate INTEGER NOT NULL, " +
		"sample_count INTEGER NOT NULL, " +
		"parsed INTEGER NOT NULL, " +
		"skipped INTEGER NOT NULL, " +
		"artifact TEXT NOT NULL, " +
		"completed_at TIMESTAMP NOT NULL)"

	if _, err := x.db.Exec(ddl); err != nil {
		return fmt.Errorf("writer: index: create %s: %w", x.table, err)
	}
	return nil
}

var indexColumns = []string{
	"run_number",
	"acquisition_id",
	"quantity",
	"sample_rate",
	"sample_count",
	"parsed",
	"skipped",
	"artifact",
	"completed_at",
}

// WriteRun upserts the run row.
func (x *RunIndex) WriteRun(rec acquisition.RunRecord) error {
	if rec.RunNumber == 0 {
		return errors.New("writer: index: run number not assigned")
	}

	var artifact string
	if x.pathFor != nil {
		artifact = x.pathFor(rec.RunNumber)
	}

	args := []any{
		int64(rec.RunNumber),
		rec.AcquisitionID,
		rec.Quantity.String(),
		rec.SampleRate,
		rec.SampleCount,
		len(rec.Samples),
		rec.Skipped,
		artifact,
		rec.CompletedAt,
	}

	if _, err := x.db.Exec(x.upsertSQL(), args...); err != nil {
		return fmt.Errorf("writer: index: run %d: %w", rec.RunNumber, err)
	}
	return nil
}

func (x *RunIndex) upsertSQL() string {
	var b strings.Builder

	b.WriteString("INSERT INTO ")
	b.WriteString(x.table)
	b.WriteString(" (")
	b.WriteString(strings.Join(indexColumns, ", "))
	b.WriteString(") VALUES (")
	for i := range indexColumns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("$%d", i+1))
	}
	b.WriteString(") ON CONFLICT (run_number) DO UPDATE SET ")

	for i, c := range indexColumns[1:] {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c + " = excluded." + c)
	}

	return b.String()
}
