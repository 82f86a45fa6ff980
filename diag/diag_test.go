package diag

import (
	"errors"
	"testing"

	"github.com/johncrim/logjam/core"
)

func TestStream_ReportAndQuery(t *testing.T) {
	s := NewStream(Config{Capacity: 8})

	s.Report(core.ErrorLevel, "logjam.writer", "write failed", errors.New("boom"))
	s.Reportf(core.WarnLevel, "logjam.bg", "dropped %d entries", 3)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	entries := s.Entries()
	if entries[0].Message != "write failed" || entries[0].Err == nil {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Message != "dropped 3 entries" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if entries[1].Tracer != "logjam.bg" {
		t.Errorf("Tracer = %q, want logjam.bg", entries[1].Tracer)
	}
}

func TestStream_EvictsOldest(t *testing.T) {
	s := NewStream(Config{Capacity: 4})
	for i := 0; i < 6; i++ {
		s.Reportf(core.InfoLevel, "t", "entry %d", i)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	entries := s.Entries()
	if entries[0].Message != "entry 2" {
		t.Errorf("oldest retained = %q, want entry 2", entries[0].Message)
	}
	if entries[3].Message != "entry 5" {
		t.Errorf("newest retained = %q, want entry 5", entries[3].Message)
	}
}

func TestStream_NilSafe(t *testing.T) {
	var s *Stream
	s.Report(core.ErrorLevel, "t", "ignored", nil)
	s.Reportf(core.ErrorLevel, "t", "ignored %d", 1)
	if s.Len() != 0 || s.Entries() != nil {
		t.Error("nil stream should be inert")
	}
}
