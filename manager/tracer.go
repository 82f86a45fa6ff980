package manager

import (
	"fmt"
	"sync/atomic"

	"github.com/zoobzio/clockz"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/switches"
	"github.com/johncrim/logjam/writer"
)

const tracerDiagName = "logjam.tracer"

// binding pairs the switch resolved for a tracer's name with the
// writer the switch guards.
type binding struct {
	sw switches.Switch
	ew writer.EntryWriter[core.Entry]
}

// Tracer is a named handle through which call sites issue leveled
// trace calls. The bound writer set is replaced atomically as a whole
// by the owning manager, never mutated in place: an in-flight call
// sees either the old set or the new one, and no lock is held during
// a log call. A trace call never returns an error, never panics, and
// after the manager stops never blocks on I/O.
type Tracer struct {
	name     string
	clock    clockz.Clock
	diags    *diag.Stream
	bindings atomic.Pointer[[]binding]
}

// Name returns the tracer's normalized name.
func (t *Tracer) Name() string {
	return t.name
}

// bind atomically replaces the bound writer set.
func (t *Tracer) bind(bs []binding) {
	t.bindings.Store(&bs)
}

// Enabled reports whether a call at level would reach any writer.
// Use it to skip expensive argument construction.
func (t *Tracer) Enabled(level core.Level) bool {
	bsp := t.bindings.Load()
	if bsp == nil {
		return false
	}
	for _, b := range *bsp {
		if b.sw.Enabled(level) && b.ew.Enabled() {
			return true
		}
	}
	return false
}

// Log issues a trace call at the given level.
func (t *Tracer) Log(level core.Level, msg string, fields ...core.Field) {
	t.log(level, msg, nil, fields)
}

// LogErr issues a trace call carrying an error.
func (t *Tracer) LogErr(level core.Level, err error, msg string, fields ...core.Field) {
	t.log(level, msg, err, fields)
}

// log is the hot path: one atomic load of the bound set, a switch
// check per pair, and entry construction only once some pair accepts.
func (t *Tracer) log(level core.Level, msg string, err error, fields []core.Field) {
	bsp := t.bindings.Load()
	if bsp == nil {
		return
	}
	var entry *core.Entry
	for _, b := range *bsp {
		if !b.sw.Enabled(level) || !b.ew.Enabled() {
			continue
		}
		if entry == nil {
			entry = &core.Entry{
				Time:    t.clock.Now(),
				Tracer:  t.name,
				Level:   level,
				Message: msg,
				Fields:  fields,
				Err:     err,
			}
		}
		t.deliver(b.ew, entry)
	}
}

// deliver forwards one entry with failure containment: an error or
// panic from the writer is reported to diagnostics and the writer
// stays bound for subsequent calls.
func (t *Tracer) deliver(ew writer.EntryWriter[core.Entry], e *core.Entry) {
	defer func() {
		if r := recover(); r != nil {
			t.diags.Report(core.ErrorLevel, tracerDiagName,
				fmt.Sprintf("panic forwarding entry from tracer %q: %v", t.name, r), nil)
		}
	}()
	if err := ew.Write(e); err != nil {
		t.diags.Report(core.ErrorLevel, tracerDiagName,
			fmt.Sprintf("forwarding entry from tracer %q failed", t.name), err)
	}
}

// Debug logs a debug message
func (t *Tracer) Debug(msg string, fields ...core.Field) {
	t.log(core.DebugLevel, msg, nil, fields)
}

// Verbose logs a verbose message
func (t *Tracer) Verbose(msg string, fields ...core.Field) {
	t.log(core.VerboseLevel, msg, nil, fields)
}

// Info logs an info message
func (t *Tracer) Info(msg string, fields ...core.Field) {
	t.log(core.InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (t *Tracer) Warn(msg string, fields ...core.Field) {
	t.log(core.WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (t *Tracer) Error(msg string, fields ...core.Field) {
	t.log(core.ErrorLevel, msg, nil, fields)
}

// Severe logs a severe message
func (t *Tracer) Severe(msg string, fields ...core.Field) {
	t.log(core.SevereLevel, msg, nil, fields)
}

// Debugf logs a formatted debug message
func (t *Tracer) Debugf(format string, args ...interface{}) {
	if !t.Enabled(core.DebugLevel) {
		return
	}
	t.log(core.DebugLevel, fmt.Sprintf(format, args...), nil, nil)
}

// Verbosef logs a formatted verbose message
func (t *Tracer) Verbosef(format string, args ...interface{}) {
	if !t.Enabled(core.VerboseLevel) {
		return
	}
	t.log(core.VerboseLevel, fmt.Sprintf(format, args...), nil, nil)
}

// Infof logs a formatted info message
func (t *Tracer) Infof(format string, args ...interface{}) {
	if !t.Enabled(core.InfoLevel) {
		return
	}
	t.log(core.InfoLevel, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message
func (t *Tracer) Warnf(format string, args ...interface{}) {
	if !t.Enabled(core.WarnLevel) {
		return
	}
	t.log(core.WarnLevel, fmt.Sprintf(format, args...), nil, nil)
}

// Errorf logs a formatted error message
func (t *Tracer) Errorf(format string, args ...interface{}) {
	if !t.Enabled(core.ErrorLevel) {
		return
	}
	t.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil, nil)
}

// Severef logs a formatted severe message
func (t *Tracer) Severef(format string, args ...interface{}) {
	if !t.Enabled(core.SevereLevel) {
		return
	}
	t.log(core.SevereLevel, fmt.Sprintf(format, args...), nil, nil)
}
