package manager

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zoobzio/clockz"
	"go.uber.org/multierr"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/writer"
	"github.com/johncrim/logjam/writer/backgroundwriter"
)

const logManagerDiagName = "logjam.manager"

// ErrUnknownConfig is returned when an entry writer is requested for a
// descriptor the manager has never seen. Unlike a broken sink, this is
// a caller error and is not masked with a no-op writer.
var ErrUnknownConfig = errors.New("logjam: writer config not registered with manager")

// LogManagerConfig holds LogManager configuration.
type LogManagerConfig struct {
	// Background is the template for the shared background dispatcher;
	// its Clock and Diags are supplied by the manager.
	Background backgroundwriter.Config
	// Diags receives build and write failure reports. A stream is
	// created when nil.
	Diags *diag.Stream
	// Clock supplies timestamps (default: the real clock).
	Clock clockz.Clock
}

type writerEntry struct {
	config    writer.WriterConfig
	base      writer.LogWriter // sink from CreateWriter; retained across stop unless dispose
	writer    writer.LogWriter // final pipeline-wrapped writer; nil until built or after a failed build
	attempted bool
	dispose   bool
}

// LogManager owns the configured writer descriptors and the runtime
// writers built from them. Each descriptor is built through its
// pipeline initializer chain; a build failure excludes that one
// descriptor and is reported to diagnostics, leaving the manager
// usable with a reduced writer set.
type LogManager struct {
	mu         sync.Mutex
	cfg        LogManagerConfig
	diags      *diag.Stream
	entries    []*writerEntry
	background *backgroundwriter.BackgroundMultiLogWriter
	started    bool
}

// NewLogManager creates a LogManager.
func NewLogManager(cfg LogManagerConfig) *LogManager {
	if cfg.Clock == nil {
		cfg.Clock = clockz.RealClock
	}
	diags := cfg.Diags
	if diags == nil {
		diags = diag.NewStream(diag.Config{Clock: cfg.Clock})
	}
	return &LogManager{cfg: cfg, diags: diags}
}

// Diagnostics returns the manager's self-diagnostic stream.
func (m *LogManager) Diagnostics() *diag.Stream {
	return m.diags
}

// BackgroundDispatch returns the shared background dispatcher for the
// current start cycle, or nil when the manager is stopped.
func (m *LogManager) BackgroundDispatch() *backgroundwriter.BackgroundMultiLogWriter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.background
}

// AddConfig registers a writer descriptor. Descriptors compare by
// structural equality: re-adding an equal descriptor is a no-op that
// keeps the running instance. Reports whether the descriptor was new.
func (m *LogManager) AddConfig(c writer.WriterConfig) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findLocked(c) != nil {
		return false
	}
	m.entries = append(m.entries, &writerEntry{config: c, dispose: c.DisposeOnStop()})
	return true
}

func (m *LogManager) findLocked(c writer.WriterConfig) *writerEntry {
	for _, e := range m.entries {
		if e.config.Equal(c) {
			return e
		}
	}
	return nil
}

// Started reports whether the manager is running.
func (m *LogManager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Start builds and starts every configured writer. Idempotent in
// effect: a running manager is stopped first, then retained sinks are
// rewrapped and restarted and the rest are rebuilt.
func (m *LogManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	if m.started {
		err = m.stopLocked()
	}
	return multierr.Append(err, m.startLocked())
}

// EnsureStarted starts the manager if it is not running; when already
// running it only builds descriptors added since the last start,
// without disturbing running writers.
func (m *LogManager) EnsureStarted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return m.startLocked()
	}
	m.buildMissingLocked()
	return nil
}

func (m *LogManager) startLocked() error {
	bgCfg := m.cfg.Background
	bgCfg.Clock = m.cfg.Clock
	bgCfg.Diags = m.diags
	m.background = backgroundwriter.New(bgCfg)
	m.started = true
	m.buildMissingLocked()
	return m.background.Start()
}

// buildMissingLocked builds every descriptor not yet attempted this
// cycle. A base retained from a previous cycle is reused; only
// descriptors without one call CreateWriter. The pipeline always runs
// fresh because its wrappers reference per-cycle state such as the
// background dispatcher. Failures are contained per descriptor.
func (m *LogManager) buildMissingLocked() {
	for _, e := range m.entries {
		if e.attempted {
			continue
		}
		e.attempted = true

		base := e.base
		if base == nil {
			b, err := m.createBase(e.config)
			if err != nil {
				m.diags.Report(core.ErrorLevel, logManagerDiagName,
					fmt.Sprintf("building writer for %T failed, descriptor skipped", e.config), err)
				continue
			}
			base = b
		}
		w, err := m.runPipeline(base, e.config)
		if err != nil {
			// The base may hold a file or connection; release it rather
			// than abandoning it on the contained-failure path.
			_ = base.Stop()
			m.diags.Report(core.ErrorLevel, logManagerDiagName,
				fmt.Sprintf("building writer for %T failed, descriptor skipped", e.config), err)
			continue
		}
		if err := w.Start(); err != nil {
			_ = w.Stop()
			m.diags.Report(core.ErrorLevel, logManagerDiagName,
				fmt.Sprintf("starting writer for %T failed, descriptor skipped", e.config), err)
			continue
		}
		e.base = base
		e.writer = w
	}
}

// createBase constructs the descriptor's sink. A panic is converted to
// an error.
func (m *LogManager) createBase(cfg writer.WriterConfig) (w writer.LogWriter, err error) {
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("panic building writer: %v", r)
		}
	}()
	base, err := cfg.CreateWriter(m.diags)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, errors.New("descriptor returned a nil writer")
	}
	return base, nil
}

// runPipeline threads base through the descriptor's initializer chain
// against a fresh sealed-after-build registry. A panic anywhere in the
// chain is converted to an error.
func (m *LogManager) runPipeline(base writer.LogWriter, cfg writer.WriterConfig) (w writer.LogWriter, err error) {
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("panic building writer: %v", r)
		}
	}()

	reg := writer.NewDependencyRegistry()
	if err := writer.Register(reg, m); err != nil {
		return nil, err
	}
	if err := writer.Register[writer.WriterConfig](reg, cfg); err != nil {
		return nil, err
	}
	if err := writer.Register(reg, m.background); err != nil {
		return nil, err
	}
	if err := reg.RegisterValue(base); err != nil {
		return nil, err
	}

	w = base
	inits := cfg.Initializers()
	for _, init := range inits {
		w, err = init.InitializeWriter(w, reg)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, errors.New("pipeline initializer returned a nil writer")
		}
		if err := reg.RegisterValue(w); err != nil {
			return nil, err
		}
	}
	reg.Seal()
	for _, init := range inits {
		if imp, ok := init.(writer.ImportInitializer); ok {
			if err := imp.ImportDependencies(reg); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// Stop stops the background dispatcher (draining its queues) and
// stops every running writer. Sinks whose descriptor reports
// DisposeOnStop are torn down; the rest keep their instance for the
// next start, which rewraps and restarts them without calling
// CreateWriter again. Descriptors stay registered either way.
// Idempotent.
func (m *LogManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

func (m *LogManager) stopLocked() error {
	if !m.started {
		return nil
	}
	var err error
	// Drain queued entries before the real sinks go away.
	if m.background != nil {
		err = multierr.Append(err, m.background.Stop())
		m.background = nil
	}
	for _, e := range m.entries {
		if e.writer != nil {
			err = multierr.Append(err, e.writer.Stop())
		}
		e.writer = nil
		if e.dispose {
			e.base = nil
		}
		e.attempted = false
	}
	m.started = false
	return err
}

// GetEntryWriter returns the entry writer for type T of the writer
// built from cfg. An unregistered descriptor is a caller error
// (ErrUnknownConfig); a registered descriptor whose writer failed to
// build or lacks a T endpoint yields a safe no-op writer so callers
// never crash on a broken sink.
func GetEntryWriter[T any](m *LogManager, cfg writer.WriterConfig) (writer.EntryWriter[T], error) {
	m.mu.Lock()
	e := m.findLocked(cfg)
	var w writer.LogWriter
	if e != nil {
		w = e.writer
	}
	m.mu.Unlock()
	if e == nil {
		return nil, ErrUnknownConfig
	}
	if w == nil {
		return writer.Noop[T](), nil
	}
	ew, ok := writer.FindEntryWriter[T](w)
	if !ok {
		return writer.Noop[T](), nil
	}
	return ew, nil
}

// EntryWriters returns the T entry writers of every running writer.
func EntryWriters[T any](m *LogManager) []writer.EntryWriter[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []writer.EntryWriter[T]
	for _, e := range m.entries {
		if e.writer == nil {
			continue
		}
		if ew, ok := writer.FindEntryWriter[T](e.writer); ok {
			out = append(out, ew)
		}
	}
	return out
}

// AggregateEntryWriter returns one entry writer reaching every running
// writer that accepts T: a no-op when none do, the single writer when
// one does, and a fan-out when several do.
func AggregateEntryWriter[T any](m *LogManager) writer.EntryWriter[T] {
	ws := EntryWriters[T](m)
	switch len(ws) {
	case 0:
		return writer.Noop[T]()
	case 1:
		return ws[0]
	default:
		return writer.NewFanOut(m.diags, ws...)
	}
}
