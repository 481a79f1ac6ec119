// internal/counter/store.go
package counter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// First is the value a missing counter file is initialised to.
const First uint64 = 1

// ErrCorrupt is returned when the counter file does not hold a positive integer.
// The file is never silently reset.
var ErrCorrupt = errors.New("counter: corrupt counter file")

// Store owns one counter file.
// Read -> emit -> write n+1 is serialised per Store.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open binds a Store to path. The file is created lazily on first use.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("counter: path required")
	}
	return &Store{path: path}, nil
}

// Path returns the counter file location.
func (s *Store) Path() string { return s.path }

// Peek returns the next run number without advancing it.
func (s *Store) Peek() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readOrInit()
}

// Next reserves the current value n, calls emit(n) and, only if emit
// succeeds, persists n+1. The write is the last mutating step: if emit
// fails (or the process dies before the rename) the next call sees n again.
func (s *Store) Next(emit func(run uint64) error) (uint64, error) {
	if emit == nil {
		return 0, errors.New("counter: emit func required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.readOrInit()
	if err != nil {
		return 0, err
	}

	if err := emit(n); err != nil {
		return n, fmt.Errorf("counter: emit run %d: %w", n, err)
	}

	if err := writeAtomic(s.path, n+1); err != nil {
		return n, fmt.Errorf("counter: advance to %d: %w", n+1, err)
	}

	return n, nil
}

// ------------------------------------------------------------
// file helpers
// ------------------------------------------------------------

func (s *Store) readOrInit() (uint64, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeAtomic(s.path, First); err != nil {
			return 0, fmt.Errorf("counter: init %s: %w", s.path, err)
		}
		return First, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counter: read %s: %w", s.path, err)
	}

	return parse(string(raw))
}

func parse(raw string) (uint64, error) {
	txt := strings.TrimSpace(raw)
	if txt == "" {
		return 0, fmt.Errorf("%w: empty", ErrCorrupt)
	}

	n, err := strconv.ParseUint(txt, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrCorrupt, txt)
	}
	return n, nil
}

// writeAtomic replaces path with v via temp file + fsync + rename.
func writeAtomic(path string, v uint64) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.WriteString(strconv.FormatUint(v, 10)); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
