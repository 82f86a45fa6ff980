package textwriter

import (
	"bufio"
	"io"
	"sync"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/formatter"
	"github.com/johncrim/logjam/writer"
)

// Config holds text sink configuration.
type Config struct {
	// Writer is the destination stream; required.
	Writer io.Writer
	// Formatter encodes entries (default: text formatter).
	Formatter formatter.Formatter
	// Buffered interposes a bufio.Writer. A buffered sink exposes the
	// Flusher capability so the background dispatcher can force a
	// flush between batches.
	Buffered bool
	// BufferSize is the bufio buffer size when Buffered (default: 4096).
	BufferSize int
	// Dispose marks the writer for teardown when the manager stops.
	Dispose bool
	// Pipeline holds the ordered build-time writer transforms.
	Pipeline []writer.PipelineInitializer
}

func applyDefaults(cfg *Config) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}
}

// TextWriter writes formatted entries to an io.Writer. Writes are
// serialized by a mutex held only around the actual I/O.
type TextWriter struct {
	writer.Lifecycle
	f   formatter.Formatter
	wf  formatter.WriterFormatter
	mu  sync.Mutex
	out io.Writer
	bw  *bufio.Writer
}

// New creates a text sink for cfg.
func New(cfg Config) *TextWriter {
	applyDefaults(&cfg)
	w := &TextWriter{f: cfg.Formatter, out: cfg.Writer}
	if cfg.Buffered {
		w.bw = bufio.NewWriterSize(cfg.Writer, cfg.BufferSize)
		w.out = w.bw
	}
	// Cache the direct-write fast path when the formatter supports it.
	w.wf, _ = cfg.Formatter.(formatter.WriterFormatter)
	return w
}

// Start marks the writer ready. Idempotent.
func (w *TextWriter) Start() error {
	w.MarkStarted()
	return nil
}

// Stop flushes any buffered output and marks the writer stopped.
func (w *TextWriter) Stop() error {
	w.MarkStopped()
	if w.bw == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Flush()
}

// EntryWriters exposes the writer's single core.Entry endpoint.
func (w *TextWriter) EntryWriters() []any {
	return []any{w}
}

// Enabled reports whether the writer is started.
func (w *TextWriter) Enabled() bool {
	return w.Started()
}

// Write formats and writes one entry.
func (w *TextWriter) Write(e *core.Entry) error {
	if !w.Started() {
		return writer.ErrStopped
	}
	if w.wf != nil {
		w.mu.Lock()
		err := w.wf.FormatTo(e, w.out)
		w.mu.Unlock()
		return err
	}
	data, err := w.f.Format(e)
	if err != nil {
		return err
	}
	w.mu.Lock()
	_, err = w.out.Write(data)
	w.mu.Unlock()
	return err
}

// NeedsFlush reports whether buffered output is waiting.
func (w *TextWriter) NeedsFlush() bool {
	if w.bw == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Buffered() > 0
}

// Flush forces buffered output to the destination.
func (w *TextWriter) Flush() error {
	if w.bw == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Flush()
}

// CreateWriter builds the sink.
func (c Config) CreateWriter(*diag.Stream) (writer.LogWriter, error) {
	return New(c), nil
}

// Equal reports structural equality with another descriptor. The
// destination stream is the identity; formatter choice and buffering
// are part of the shape.
func (c Config) Equal(other writer.WriterConfig) bool {
	o, ok := other.(Config)
	return ok && c.Writer == o.Writer && c.Formatter == o.Formatter &&
		c.Buffered == o.Buffered && c.BufferSize == o.BufferSize &&
		c.Dispose == o.Dispose && len(c.Pipeline) == len(o.Pipeline)
}

// DisposeOnStop reports whether the writer is torn down on stop.
func (c Config) DisposeOnStop() bool { return c.Dispose }

// Initializers returns the pipeline transforms for this descriptor.
func (c Config) Initializers() []writer.PipelineInitializer { return c.Pipeline }
