package manager

import (
	"sync"
	"testing"
	"time"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/switches"
	"github.com/johncrim/logjam/writer"
	"github.com/johncrim/logjam/writer/backgroundwriter"
	"github.com/johncrim/logjam/writer/listwriter"
)

// newListManager builds a manager routing everything at or above min
// to a single in-memory sink.
func newListManager(min core.Level) (*TraceManager, *listwriter.ListWriter) {
	lw := listwriter.New()
	tm := NewTraceManager(Config{
		Writers: []TraceWriterConfig{{
			Writer:   listwriter.Config{Target: lw},
			Switches: switches.NewSwitchSet().Add("", switches.NewThresholdSwitch(min)),
		}},
	})
	return tm, lw
}

func TestTraceManager_InfoThresholdScenario(t *testing.T) {
	tm, lw := newListManager(core.InfoLevel)
	defer tm.Stop()

	tracer := tm.GetTracer("App.Worker")
	tracer.Info("a")
	tracer.Debug("b")

	got := lw.Entries()
	if len(got) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(got))
	}
	if got[0].Message != "a" || got[0].Level != core.InfoLevel {
		t.Errorf("entry = %+v, want message a at Info", got[0])
	}
	if got[0].Tracer != "App.Worker" {
		t.Errorf("Tracer = %q, want App.Worker", got[0].Tracer)
	}
}

func TestTraceManager_MostSpecificRuleWins(t *testing.T) {
	lw := listwriter.New()
	tm := NewTraceManager(Config{
		Writers: []TraceWriterConfig{{
			Writer: listwriter.Config{Target: lw},
			Switches: switches.NewSwitchSet().
				Add("App.", switches.NewThresholdSwitch(core.InfoLevel)).
				Add("App.Sub.", switches.NewThresholdSwitch(core.ErrorLevel)),
		}},
	})
	defer tm.Stop()

	tracer := tm.GetTracer("App.Sub.Worker")
	tracer.Warn("suppressed")
	if lw.Len() != 0 {
		t.Error("Warn should be suppressed by the App.Sub Error threshold")
	}
	tracer.Error("delivered")
	if lw.Len() != 1 {
		t.Error("Error should pass the most-specific rule")
	}

	// The broader rule still governs its own subtree.
	tm.GetTracer("App.Other").Warn("allowed")
	if lw.Len() != 2 {
		t.Error("App.Other at Warn should pass the App Info threshold")
	}
}

func TestTraceManager_GetTracerReturnsSameInstance(t *testing.T) {
	tm, _ := newListManager(core.InfoLevel)
	defer tm.Stop()

	a := tm.GetTracer("App.X")
	b := tm.GetTracer("  App.X  ") // normalization trims
	if a != b {
		t.Error("equivalently-normalized names must share one live tracer")
	}
	if a.Name() != "App.X" {
		t.Errorf("Name() = %q, want App.X", a.Name())
	}
	if root := tm.GetTracer(""); root.Name() != "" {
		t.Error("empty string is the root tracer")
	}
}

func TestTraceManager_StopMakesHeldTracersInert(t *testing.T) {
	tm, lw := newListManager(core.DebugLevel)

	tracer := tm.GetTracer("App")
	tracer.Info("before stop")
	if err := tm.Stop(); err != nil {
		t.Fatal(err)
	}

	before := lw.Len()
	// Must not panic, error, or block.
	tracer.Info("after stop")
	tracer.Severe("after stop")
	if lw.Len() != before {
		t.Error("calls after Stop must produce zero entries")
	}
	if tracer.Enabled(core.SevereLevel) {
		t.Error("stopped tracer should report disabled")
	}
	// Stop is idempotent.
	if err := tm.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestTraceManager_RuntimeSwitchMutation(t *testing.T) {
	lw := listwriter.New()
	sw := switches.NewThresholdSwitch(core.InfoLevel)
	tm := NewTraceManager(Config{
		Writers: []TraceWriterConfig{{
			Writer:   listwriter.Config{Target: lw},
			Switches: switches.NewSwitchSet().Add("", sw),
		}},
	})
	defer tm.Stop()

	tracer := tm.GetTracer("App")
	tracer.Debug("dropped")
	if lw.Len() != 0 {
		t.Fatal("Debug should be suppressed at Info threshold")
	}

	// Lowering the threshold takes effect for the held handle without
	// re-acquiring it.
	sw.SetThreshold(core.DebugLevel)
	tracer.Debug("recorded")
	if lw.Len() != 1 {
		t.Error("Debug should pass after the threshold was lowered")
	}
}

func TestTraceManager_ResweepAfterSwitchSetChange(t *testing.T) {
	lw := listwriter.New()
	set := switches.NewSwitchSet().Add("", switches.NewThresholdSwitch(core.ErrorLevel))
	tm := NewTraceManager(Config{
		Writers: []TraceWriterConfig{{
			Writer:   listwriter.Config{Target: lw},
			Switches: set,
		}},
	})
	defer tm.Stop()

	tracer := tm.GetTracer("App.Sub")
	tracer.Info("dropped")
	if lw.Len() != 0 {
		t.Fatal("Info should be suppressed before the resweep")
	}

	// Adding a rule creates no new bindings until the manager resweeps.
	set.Add("App.Sub", switches.NewThresholdSwitch(core.DebugLevel))
	tracer.Info("still dropped")
	if lw.Len() != 0 {
		t.Fatal("new rule must not apply before Start resweeps")
	}

	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	tracer.Info("recorded")
	if lw.Len() != 1 {
		t.Error("held handle should use the new rule after the resweep")
	}
}

func TestTraceManager_FanOutAcrossSinksWithFailureIsolation(t *testing.T) {
	clean := listwriter.New()
	tm := NewTraceManager(Config{
		Writers: []TraceWriterConfig{
			{
				Writer:   panickyConfig{},
				Switches: switches.NewSwitchSet().Add("", switches.NewOnOffSwitch(true)),
			},
			{
				Writer:   listwriter.Config{Target: clean},
				Switches: switches.NewSwitchSet().Add("", switches.NewOnOffSwitch(true)),
			},
		},
	})
	defer tm.Stop()

	tracer := tm.GetTracer("App")
	const calls = 7
	for i := 0; i < calls; i++ {
		tracer.Info("fan")
	}

	if clean.Len() != calls {
		t.Errorf("clean sink recorded %d, want %d despite the failing sink", clean.Len(), calls)
	}
	if tm.Diagnostics().Len() != calls {
		t.Errorf("each failure should be reported, got %d reports", tm.Diagnostics().Len())
	}
}

// panickyConfig builds a sink whose writes always panic.
type panickyConfig struct{}

func (panickyConfig) CreateWriter(*diag.Stream) (writer.LogWriter, error) {
	return &panickySink{}, nil
}

func (c panickyConfig) Equal(other writer.WriterConfig) bool {
	_, ok := other.(panickyConfig)
	return ok
}

func (panickyConfig) DisposeOnStop() bool                        { return false }
func (panickyConfig) Initializers() []writer.PipelineInitializer { return nil }

type panickySink struct {
	writer.Lifecycle
}

func (s *panickySink) Start() error        { s.MarkStarted(); return nil }
func (s *panickySink) Stop() error         { s.MarkStopped(); return nil }
func (s *panickySink) EntryWriters() []any { return []any{s} }
func (s *panickySink) Enabled() bool       { return s.Started() }
func (s *panickySink) Write(*core.Entry) error {
	panic("sink always panics")
}

func TestTraceManager_BackgroundPipelineDrainsOnStop(t *testing.T) {
	lw := listwriter.New()
	tm := NewTraceManager(Config{
		Writers: []TraceWriterConfig{{
			Writer: listwriter.Config{
				Target:   lw,
				Pipeline: []writer.PipelineInitializer{backgroundwriter.Initializer{}},
			},
			Switches: switches.NewSwitchSet().Add("", switches.NewThresholdSwitch(core.DebugLevel)),
		}},
		Background: backgroundwriter.Config{QueueSize: 256, DrainTimeout: 10 * time.Second},
	})

	tracer := tm.GetTracer("App")
	const n = 100
	for i := 0; i < n; i++ {
		tracer.Info("queued", core.Int("i", i))
	}
	if err := tm.Stop(); err != nil {
		t.Fatal(err)
	}

	got := lw.Entries()
	if len(got) != n {
		t.Fatalf("sink received %d entries after drain, want %d", len(got), n)
	}
	for i, e := range got {
		if e.Fields[0].Int64 != int64(i) {
			t.Fatalf("out of FIFO order at %d", i)
		}
	}
	if snap := tm.LogManager().BackgroundDispatch(); snap != nil {
		t.Error("dispatcher should be torn down after Stop")
	}
}

func TestTraceManager_RetainedBackgroundSinkSurvivesRestart(t *testing.T) {
	lw := listwriter.New()
	tm := NewTraceManager(Config{
		Writers: []TraceWriterConfig{{
			Writer: listwriter.Config{
				Target:   lw,
				Pipeline: []writer.PipelineInitializer{backgroundwriter.Initializer{}},
			},
			Switches: switches.NewSwitchSet().Add("", switches.NewThresholdSwitch(core.DebugLevel)),
		}},
	})

	tracer := tm.GetTracer("App")
	tracer.Info("first cycle")
	if err := tm.Stop(); err != nil {
		t.Fatal(err)
	}

	// The next start rewraps the retained sink with a fresh dispatcher.
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	tracer.Info("second cycle")
	if err := tm.Stop(); err != nil {
		t.Fatal(err)
	}

	got := lw.Entries()
	if len(got) != 2 {
		t.Fatalf("sink received %d entries across two cycles, want 2", len(got))
	}
	if got[0].Message != "first cycle" || got[1].Message != "second cycle" {
		t.Errorf("entries = %q, %q", got[0].Message, got[1].Message)
	}
}

func TestTraceManager_ConcurrentLoggingDuringReconfigure(t *testing.T) {
	tm, lw := newListManager(core.DebugLevel)
	defer tm.Stop()

	tracer := tm.GetTracer("App")
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					tracer.Info("concurrent")
				}
			}
		}()
	}
	// Resweeps race the producers; no call may error, panic, or torn-read.
	for i := 0; i < 50; i++ {
		if err := tm.Start(); err != nil {
			t.Error(err)
		}
	}
	close(stop)
	wg.Wait()
	if lw.Len() == 0 {
		t.Error("expected entries recorded while reconfiguring")
	}
}
