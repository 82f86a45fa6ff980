package formatter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/johncrim/logjam/core"
)

func testEntry() *core.Entry {
	return &core.Entry{
		Time:    time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Tracer:  "App.Worker",
		Level:   core.WarnLevel,
		Message: "queue nearly full",
		Fields:  []core.Field{core.Int("depth", 480), core.String("queue", "ingest")},
	}
}

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(Config{})
	data, err := f.Format(testEntry())
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"2024-03-01T10:30:00Z",
		"[WARN]",
		"App.Worker:",
		"queue nearly full",
		"depth=480",
		"queue=ingest",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output should end with a newline")
	}
}

func TestTextFormatter_Error(t *testing.T) {
	f := NewTextFormatter(Config{})
	e := testEntry()
	e.Err = errors.New("connection reset")
	data, _ := f.Format(e)
	if !strings.Contains(string(data), "err=connection reset") {
		t.Errorf("expected err field in output, got: %s", data)
	}
}

func TestTextFormatter_FormatTo(t *testing.T) {
	f := NewTextFormatter(Config{TimestampFormat: time.RFC1123})
	var buf bytes.Buffer
	if err := f.FormatTo(testEntry(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Fri, 01 Mar 2024 10:30:00 UTC") {
		t.Errorf("custom timestamp format not applied: %s", buf.String())
	}
}

func TestMsgpackFormatter_RoundTrip(t *testing.T) {
	f := NewMsgpackFormatter()
	e := testEntry()
	e.Err = errors.New("boom")

	data, err := f.Format(e)
	if err != nil {
		t.Fatal(err)
	}
	w, err := DecodeWireEntry(data)
	if err != nil {
		t.Fatal(err)
	}

	if w.Tracer != "App.Worker" || w.Message != "queue nearly full" {
		t.Errorf("unexpected decode: %+v", w)
	}
	if core.Level(w.Level) != core.WarnLevel {
		t.Errorf("Level = %d, want Warn", w.Level)
	}
	if w.TimestampNS != e.Time.UnixNano() {
		t.Error("timestamp did not round-trip")
	}
	if w.Fields["depth"] != "480" || w.Fields["queue"] != "ingest" {
		t.Errorf("fields did not round-trip: %v", w.Fields)
	}
	if w.Error != "boom" {
		t.Errorf("Error = %q, want boom", w.Error)
	}
}
