package zapwriter

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/johncrim/logjam/core"
)

func TestZapWriter_ForwardsEntries(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	w := New(Config{Logger: zap.New(obsCore)})
	w.Start()

	e := core.Entry{
		Time:    time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Tracer:  "App.DB",
		Level:   core.WarnLevel,
		Message: "slow query",
		Fields:  []core.Field{core.Int("rows", 12000), core.String("table", "events")},
	}
	if err := w.Write(&e); err != nil {
		t.Fatal(err)
	}

	all := logs.All()
	if len(all) != 1 {
		t.Fatalf("observed %d entries, want 1", len(all))
	}
	got := all[0]
	if got.Message != "slow query" || got.Level != zap.WarnLevel {
		t.Errorf("unexpected entry: %+v", got.Entry)
	}
	if got.LoggerName != "App.DB" {
		t.Errorf("LoggerName = %q, want App.DB", got.LoggerName)
	}
	ctx := got.ContextMap()
	if ctx["rows"] != int64(12000) || ctx["table"] != "events" {
		t.Errorf("unexpected fields: %v", ctx)
	}
}

func TestZapWriter_SevereMapsToError(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	w := New(Config{Logger: zap.New(obsCore)})
	w.Start()

	e := core.Entry{Level: core.SevereLevel, Message: "fault"}
	w.Write(&e)
	if logs.All()[0].Level != zap.ErrorLevel {
		t.Error("Severe must map to zap Error, never Fatal")
	}
}

func TestConfig_RequiresLogger(t *testing.T) {
	if _, err := (Config{}).CreateWriter(nil); err == nil {
		t.Error("CreateWriter without a logger should fail")
	}
}
