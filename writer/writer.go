package writer

import "sync/atomic"

// EntryWriter is the typed write endpoint a sink exposes for one entry
// type. Entries are passed by pointer; implementations must not mutate
// them and must not retain the pointer past Write without copying.
type EntryWriter[T any] interface {
	// Enabled reports whether the writer would currently accept an entry.
	Enabled() bool
	// Write delivers one entry.
	Write(e *T) error
}

// LogWriter is the lifecycle capability a sink implements. A LogWriter
// owns zero or more entry writers, one per entry type it can accept.
type LogWriter interface {
	// Start makes the writer ready to accept entries. Idempotent.
	Start() error
	// Stop flushes and stops the writer. Idempotent; a stopped writer
	// may be started again unless it has been disposed.
	Stop() error
	// Started reports whether the writer is currently accepting entries.
	Started() bool
	// EntryWriters enumerates the writer's entry writers. Each element
	// is an EntryWriter[T] for some T; use FindEntryWriter to negotiate
	// a typed endpoint.
	EntryWriters() []any
}

// Flusher is an optional capability for sinks with internal buffering.
// The background dispatcher consults NeedsFlush after draining a batch
// and calls Flush when it reports true.
type Flusher interface {
	NeedsFlush() bool
	Flush() error
}

// FindEntryWriter returns w's entry writer for entry type T. Asking
// for a type the writer does not support is not an error; ok is false.
func FindEntryWriter[T any](w LogWriter) (EntryWriter[T], bool) {
	if w == nil {
		return nil, false
	}
	for _, ew := range w.EntryWriters() {
		if typed, ok := ew.(EntryWriter[T]); ok {
			return typed, true
		}
	}
	return nil, false
}

// Lifecycle tracks started state for LogWriter implementations that
// have no inherent state machine of their own. Embed it and call
// MarkStarted/MarkStopped from Start/Stop.
type Lifecycle struct {
	started atomic.Bool
}

// MarkStarted records the writer as started.
func (l *Lifecycle) MarkStarted() { l.started.Store(true) }

// MarkStopped records the writer as stopped.
func (l *Lifecycle) MarkStopped() { l.started.Store(false) }

// Started reports whether the writer is started.
func (l *Lifecycle) Started() bool { return l.started.Load() }
