package consolewriter

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/writer"
)

// Config holds console sink configuration.
type Config struct {
	// UseStderr writes to stderr instead of stdout.
	UseStderr bool
	// NoColor disables colored level tags.
	NoColor bool
	// Writer overrides the destination; used by tests. When set it
	// takes precedence over UseStderr.
	Writer io.Writer
	// TimestampFormat specifies the time format (empty for a
	// millisecond wall-clock format).
	TimestampFormat string
	// Dispose marks the writer for teardown when the manager stops.
	Dispose bool
	// Pipeline holds the ordered build-time writer transforms.
	Pipeline []writer.PipelineInitializer
}

func applyDefaults(cfg *Config) {
	if cfg.Writer == nil {
		if cfg.UseStderr {
			cfg.Writer = os.Stderr
		} else {
			cfg.Writer = os.Stdout
		}
	}
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = "15:04:05.000"
	}
}

var levelColors = [...]*color.Color{
	core.DebugLevel:   color.New(color.FgHiBlack),
	core.VerboseLevel: color.New(color.FgCyan),
	core.InfoLevel:    color.New(color.FgGreen),
	core.WarnLevel:    color.New(color.FgYellow),
	core.ErrorLevel:   color.New(color.FgRed),
	core.SevereLevel:  color.New(color.FgHiRed, color.Bold),
}

// ConsoleWriter writes entries to a terminal with colored level tags.
type ConsoleWriter struct {
	writer.Lifecycle
	cfg Config
	mu  sync.Mutex
	out io.Writer
}

// New creates a console sink for cfg.
func New(cfg Config) *ConsoleWriter {
	applyDefaults(&cfg)
	return &ConsoleWriter{cfg: cfg, out: cfg.Writer}
}

// Start marks the writer ready. Idempotent.
func (w *ConsoleWriter) Start() error {
	w.MarkStarted()
	return nil
}

// Stop marks the writer stopped.
func (w *ConsoleWriter) Stop() error {
	w.MarkStopped()
	return nil
}

// EntryWriters exposes the writer's single core.Entry endpoint.
func (w *ConsoleWriter) EntryWriters() []any {
	return []any{w}
}

// Enabled reports whether the writer is started.
func (w *ConsoleWriter) Enabled() bool {
	return w.Started()
}

// Write renders and writes one entry.
func (w *ConsoleWriter) Write(e *core.Entry) error {
	if !w.Started() {
		return writer.ErrStopped
	}
	var buf bytes.Buffer
	buf.Grow(128)

	buf.WriteString(e.Time.Format(w.cfg.TimestampFormat))
	buf.WriteByte(' ')
	w.writeLevelTag(&buf, e.Level)
	buf.WriteByte(' ')
	if e.Tracer != "" {
		buf.WriteString(e.Tracer)
		buf.WriteString(": ")
	}
	buf.WriteString(e.Message)
	for _, f := range e.Fields {
		buf.WriteByte(' ')
		buf.WriteString(f.Key)
		buf.WriteByte('=')
		buf.WriteString(f.StringValue())
	}
	if e.Err != nil {
		buf.WriteString(" err=")
		buf.WriteString(e.Err.Error())
	}
	buf.WriteByte('\n')

	w.mu.Lock()
	_, err := w.out.Write(buf.Bytes())
	w.mu.Unlock()
	return err
}

func (w *ConsoleWriter) writeLevelTag(buf *bytes.Buffer, level core.Level) {
	tag := level.String()
	if w.cfg.NoColor || int(level) >= len(levelColors) || level < 0 {
		buf.WriteString(tag)
		return
	}
	buf.WriteString(levelColors[level].Sprint(tag))
}

// CreateWriter builds the sink.
func (c Config) CreateWriter(*diag.Stream) (writer.LogWriter, error) {
	return New(c), nil
}

// Equal reports structural equality with another descriptor.
func (c Config) Equal(other writer.WriterConfig) bool {
	o, ok := other.(Config)
	return ok && c.UseStderr == o.UseStderr && c.NoColor == o.NoColor &&
		c.Writer == o.Writer && c.TimestampFormat == o.TimestampFormat &&
		c.Dispose == o.Dispose && len(c.Pipeline) == len(o.Pipeline)
}

// DisposeOnStop reports whether the writer is torn down on stop.
func (c Config) DisposeOnStop() bool { return c.Dispose }

// Initializers returns the pipeline transforms for this descriptor.
func (c Config) Initializers() []writer.PipelineInitializer { return c.Pipeline }
