// internal/counter/store_test.go
package counter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_number.txt")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(raw)
}

func ok(uint64) error { return nil }

// ---- tests ----

func TestNext_SequentialFromFreshFile(t *testing.T) {
	s, path := newStore(t)

	for want := uint64(1); want <= 5; want++ {
		got, err := s.Next(ok)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected run %d, got %d", want, got)
		}
	}

	if got := readFile(t, path); got != "6" {
		t.Fatalf("expected file to hold 6, got %q", got)
	}
}

func TestNext_FailedEmitDoesNotAdvance(t *testing.T) {
	s, path := newStore(t)
	boom := errors.New("disk full")

	n, err := s.Next(func(uint64) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected reserved run 1, got %d", n)
	}
	if got := readFile(t, path); got != "1" {
		t.Fatalf("expected file to still hold 1, got %q", got)
	}

	n, err = s.Next(ok)
	if err != nil || n != 1 {
		t.Fatalf("expected run 1 again, got n=%d err=%v", n, err)
	}
}

func TestNext_SurvivesRestart(t *testing.T) {
	s, path := newStore(t)
	if _, err := s.Next(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A new Store over the same file models a process restart.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	n, err := s2.Next(ok)
	if err != nil || n != 2 {
		t.Fatalf("expected run 2 after restart, got n=%d err=%v", n, err)
	}
}

func TestNext_ExistingValue(t *testing.T) {
	s, path := newStore(t)
	if err := os.WriteFile(path, []byte("7\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var emitted uint64
	n, err := s.Next(func(run uint64) error { emitted = run; return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 || emitted != 7 {
		t.Fatalf("expected run 7, got n=%d emitted=%d", n, emitted)
	}
	if got := readFile(t, path); got != "8" {
		t.Fatalf("expected file to hold 8, got %q", got)
	}
}

func TestNext_CorruptFileIsAnError(t *testing.T) {
	for _, content := range []string{"", "abc", "-2", "0", "1.5"} {
		s, path := newStore(t)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}

		called := false
		_, err := s.Next(func(uint64) error { called = true; return nil })
		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("content %q: expected ErrCorrupt, got %v", content, err)
		}
		if called {
			t.Fatalf("content %q: emit must not run on corrupt file", content)
		}
		if got := readFile(t, path); got != content {
			t.Fatalf("content %q: file was rewritten to %q", content, got)
		}
	}
}

func TestPeek_InitialisesWithoutAdvancing(t *testing.T) {
	s, path := newStore(t)

	for i := 0; i < 2; i++ {
		n, err := s.Peek()
		if err != nil || n != 1 {
			t.Fatalf("expected 1, got n=%d err=%v", n, err)
		}
	}
	if got := readFile(t, path); got != "1" {
		t.Fatalf("expected file to hold 1, got %q", got)
	}
}

func TestNext_LeavesNoTempFiles(t *testing.T) {
	s, path := newStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Next(ok); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
