package listwriter

import (
	"errors"
	"testing"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/writer"
)

func TestListWriter_RecordsCopies(t *testing.T) {
	w := New()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	e := core.Entry{Tracer: "App", Level: core.InfoLevel, Message: "first"}
	if err := w.Write(&e); err != nil {
		t.Fatal(err)
	}
	// Mutating the caller's entry after Write must not affect the record.
	e.Message = "mutated"

	got := w.Entries()
	if len(got) != 1 || got[0].Message != "first" {
		t.Errorf("expected recorded copy of first entry, got %+v", got)
	}
}

func TestListWriter_StoppedRejectsWrites(t *testing.T) {
	w := New()
	w.Start()
	w.Stop()

	e := core.Entry{Message: "late"}
	if err := w.Write(&e); !errors.Is(err, writer.ErrStopped) {
		t.Errorf("Write after Stop = %v, want ErrStopped", err)
	}
	if w.Enabled() {
		t.Error("stopped writer should not be enabled")
	}
	if w.Len() != 0 {
		t.Error("no entries should be recorded after stop")
	}
}

func TestListWriter_EntryWriterNegotiation(t *testing.T) {
	w := New()
	w.Start()
	ew, ok := writer.FindEntryWriter[core.Entry](w)
	if !ok {
		t.Fatal("expected core.Entry writer")
	}
	e := core.Entry{Message: "via capability"}
	ew.Write(&e)
	if w.Len() != 1 {
		t.Error("write through negotiated capability should record")
	}
}

func TestConfig_Equality(t *testing.T) {
	target := New()
	a := Config{Target: target}
	b := Config{Target: target}
	if !a.Equal(b) {
		t.Error("configs with the same target should be equal")
	}
	if a.Equal(Config{Target: New()}) {
		t.Error("configs with different targets should differ")
	}
	if a.Equal(Config{Target: target, Dispose: true}) {
		t.Error("dispose flag is part of the descriptor identity")
	}
}
