package manager

import (
	"strings"
	"sync"

	"github.com/zoobzio/clockz"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/switches"
	"github.com/johncrim/logjam/writer"
	"github.com/johncrim/logjam/writer/backgroundwriter"
)

// TraceWriterConfig pairs one sink descriptor with the switch rules
// deciding which names and levels reach it.
type TraceWriterConfig struct {
	Writer   writer.WriterConfig
	Switches *switches.SwitchSet
}

// Config holds TraceManager configuration.
type Config struct {
	// Writers is the declarative routing configuration.
	Writers []TraceWriterConfig
	// Background is the template for the shared background dispatcher.
	Background backgroundwriter.Config
	// Diags receives failure reports; a stream is created when nil.
	Diags *diag.Stream
	// Clock supplies entry timestamps (default: the real clock).
	Clock clockz.Clock
}

type activePair struct {
	switches *switches.SwitchSet
	ew       writer.EntryWriter[core.Entry]
}

// TraceManager hands out named Tracers and keeps their bound writer
// sets in sync with the configuration. Tracers are owned strongly for
// the process lifetime: GetTracer returns the same instance for the
// same normalized name, and Stop rebinds held handles to an inert set
// instead of invalidating them.
type TraceManager struct {
	mu      sync.Mutex
	cfg     Config
	lm      *LogManager
	clock   clockz.Clock
	tracers map[string]*Tracer
	active  []activePair
	started bool
}

// NewTraceManager creates a TraceManager and its underlying
// LogManager. Nothing starts until the first GetTracer or Start call.
func NewTraceManager(cfg Config) *TraceManager {
	if cfg.Clock == nil {
		cfg.Clock = clockz.RealClock
	}
	return &TraceManager{
		cfg: cfg,
		lm: NewLogManager(LogManagerConfig{
			Background: cfg.Background,
			Diags:      cfg.Diags,
			Clock:      cfg.Clock,
		}),
		clock:   cfg.Clock,
		tracers: map[string]*Tracer{},
	}
}

// LogManager returns the underlying writer manager.
func (tm *TraceManager) LogManager() *LogManager {
	return tm.lm
}

// Diagnostics returns the self-diagnostic stream.
func (tm *TraceManager) Diagnostics() *diag.Stream {
	return tm.lm.Diagnostics()
}

// normalizeName trims the tracer name; the empty string is the root.
func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// GetTracer returns the tracer for name, creating and registering it
// when none is live. The manager lazily starts on first use.
func (tm *TraceManager) GetTracer(name string) *Tracer {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if !tm.started {
		tm.startLocked()
	}

	name = normalizeName(name)
	if t, ok := tm.tracers[name]; ok {
		return t
	}
	t := &Tracer{name: name, clock: tm.clock, diags: tm.lm.Diagnostics()}
	t.bind(tm.computeBindingsLocked(name))
	tm.tracers[name] = t
	return t
}

// Start registers and starts the configured writers and rebinds every
// live tracer against the current switch sets. Idempotent; safe to
// call again after configuration or switch-set changes to resweep.
func (tm *TraceManager) Start() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.startLocked()
}

func (tm *TraceManager) startLocked() error {
	for _, twc := range tm.cfg.Writers {
		tm.lm.AddConfig(twc.Writer)
	}
	// EnsureStarted builds only what is missing, so a resweep does not
	// restart writers that are already running.
	err := tm.lm.EnsureStarted()

	tm.active = tm.active[:0]
	for _, twc := range tm.cfg.Writers {
		if twc.Switches == nil {
			continue
		}
		ew, gerr := GetEntryWriter[core.Entry](tm.lm, twc.Writer)
		if gerr != nil {
			continue
		}
		tm.active = append(tm.active, activePair{switches: twc.Switches, ew: ew})
	}

	for name, t := range tm.tracers {
		t.bind(tm.computeBindingsLocked(name))
	}
	tm.started = true
	return err
}

// Stop makes every held tracer inert, then stops the writer manager,
// draining background queues before sinks stop. Idempotent.
func (tm *TraceManager) Stop() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if !tm.started {
		return nil
	}
	tm.active = nil
	for _, t := range tm.tracers {
		t.bind(nil)
	}
	tm.started = false
	return tm.lm.Stop()
}

// computeBindingsLocked resolves name against every active switch set
// and pairs each match with that set's writer.
func (tm *TraceManager) computeBindingsLocked(name string) []binding {
	var bs []binding
	for _, p := range tm.active {
		sw, ok := p.switches.FindBestMatch(name)
		if !ok {
			continue
		}
		bs = append(bs, binding{sw: sw, ew: p.ew})
	}
	return bs
}
