package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/clinicflow/internal/patient"
)

// createTestStore opens a fresh database under t.TempDir().
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testPatients returns n records with distinct names, ages and identifiers.
func testPatients(n int) []patient.Record {
	out := make([]patient.Record, n)
	for i := range out {
		out[i] = patient.New(
			string(rune('A'+i))+"na",
			20+i,
			string(rune('1'+i))+"11",
			patient.Date{Day: 1 + i, Month: 2, Year: 2024},
		)
	}
	return out
}
