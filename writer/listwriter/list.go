package listwriter

import (
	"sync"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/writer"
)

// ListWriter records every entry it receives in memory. It is the
// standard sink for tests and for operator inspection of recent
// traffic; it never fails a write.
type ListWriter struct {
	writer.Lifecycle
	mu      sync.Mutex
	entries []core.Entry
}

// New creates an empty ListWriter.
func New() *ListWriter {
	return &ListWriter{}
}

// Start marks the writer ready. Idempotent.
func (w *ListWriter) Start() error {
	w.MarkStarted()
	return nil
}

// Stop marks the writer stopped. Recorded entries are retained.
func (w *ListWriter) Stop() error {
	w.MarkStopped()
	return nil
}

// EntryWriters exposes the writer's single core.Entry endpoint.
func (w *ListWriter) EntryWriters() []any {
	return []any{w}
}

// Enabled reports whether the writer is started.
func (w *ListWriter) Enabled() bool {
	return w.Started()
}

// Write records a copy of the entry.
func (w *ListWriter) Write(e *core.Entry) error {
	if !w.Started() {
		return writer.ErrStopped
	}
	w.mu.Lock()
	w.entries = append(w.entries, *e)
	w.mu.Unlock()
	return nil
}

// Entries returns a snapshot of the recorded entries in arrival order.
func (w *ListWriter) Entries() []core.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of recorded entries.
func (w *ListWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Reset discards all recorded entries.
func (w *ListWriter) Reset() {
	w.mu.Lock()
	w.entries = w.entries[:0]
	w.mu.Unlock()
}

// Config is the descriptor for a ListWriter sink. Two configs with the
// same Target are the same sink.
type Config struct {
	// Target is the writer instance to record into; a fresh writer is
	// created when nil.
	Target *ListWriter
	// Dispose marks the writer for teardown when the manager stops.
	Dispose bool
	// Pipeline holds the ordered build-time writer transforms.
	Pipeline []writer.PipelineInitializer
}

// CreateWriter returns the target writer, creating one when unset.
func (c Config) CreateWriter(*diag.Stream) (writer.LogWriter, error) {
	if c.Target != nil {
		return c.Target, nil
	}
	return New(), nil
}

// Equal reports structural equality with another descriptor.
func (c Config) Equal(other writer.WriterConfig) bool {
	o, ok := other.(Config)
	return ok && c.Target == o.Target && c.Dispose == o.Dispose &&
		len(c.Pipeline) == len(o.Pipeline)
}

// DisposeOnStop reports whether the writer is torn down on stop.
func (c Config) DisposeOnStop() bool { return c.Dispose }

// Initializers returns the pipeline transforms for this descriptor.
func (c Config) Initializers() []writer.PipelineInitializer { return c.Pipeline }
