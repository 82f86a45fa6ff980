package writer

import (
	"errors"
	"testing"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
)

type recordingWriter struct {
	enabled bool
	entries []core.Entry
}

func (r *recordingWriter) Enabled() bool { return r.enabled }

func (r *recordingWriter) Write(e *core.Entry) error {
	r.entries = append(r.entries, *e)
	return nil
}

type failingWriter struct {
	err    error
	panics bool
	calls  int
}

func (f *failingWriter) Enabled() bool { return true }

func (f *failingWriter) Write(*core.Entry) error {
	f.calls++
	if f.panics {
		panic("sink exploded")
	}
	return f.err
}

func TestFanOut_IsolatesFailingChild(t *testing.T) {
	diags := diag.NewStream(diag.Config{Capacity: 16})
	bad := &failingWriter{err: errors.New("disk full")}
	good := &recordingWriter{enabled: true}
	fan := NewFanOut[core.Entry](diags, bad, good)

	for i := 0; i < 5; i++ {
		e := core.Entry{Message: "m", Level: core.InfoLevel}
		if err := fan.Write(&e); err != nil {
			t.Fatalf("fan-out write returned error: %v", err)
		}
	}

	if len(good.entries) != 5 {
		t.Errorf("clean sink recorded %d entries, want 5", len(good.entries))
	}
	if bad.calls != 5 {
		t.Errorf("failing sink should still be retried every call, got %d", bad.calls)
	}
	if diags.Len() != 5 {
		t.Errorf("expected 5 diagnostic reports, got %d", diags.Len())
	}
}

func TestFanOut_IsolatesPanickingChild(t *testing.T) {
	diags := diag.NewStream(diag.Config{Capacity: 16})
	first := &failingWriter{panics: true}
	second := &recordingWriter{enabled: true}
	fan := NewFanOut[core.Entry](diags, first, second)

	e := core.Entry{Message: "survives"}
	fan.Write(&e)

	if len(second.entries) != 1 {
		t.Error("panic in an earlier child must not skip later children")
	}
	if diags.Len() != 1 {
		t.Errorf("panic should be reported once, got %d reports", diags.Len())
	}
}

func TestFanOut_EnabledIsOr(t *testing.T) {
	fan := NewFanOut[core.Entry](nil,
		&recordingWriter{enabled: false},
		&recordingWriter{enabled: true},
	)
	if !fan.Enabled() {
		t.Error("fan-out should be enabled when any child is")
	}

	off := NewFanOut[core.Entry](nil, &recordingWriter{}, &recordingWriter{})
	if off.Enabled() {
		t.Error("fan-out with no enabled children should be disabled")
	}
}

func TestFanOut_SkipsDisabledChildren(t *testing.T) {
	disabled := &recordingWriter{enabled: false}
	enabled := &recordingWriter{enabled: true}
	fan := NewFanOut[core.Entry](nil, disabled, enabled)

	e := core.Entry{Message: "m"}
	fan.Write(&e)

	if len(disabled.entries) != 0 {
		t.Error("disabled child should not receive entries")
	}
	if len(enabled.entries) != 1 {
		t.Error("enabled child should receive the entry")
	}
}
