// Package zapwriter adapts a zap logger into a logjam sink, letting
// the runtime route trace entries into an application's existing zap
// pipeline.
package zapwriter

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/writer"
)

// Config holds zap sink configuration.
type Config struct {
	// Logger is the destination zap logger; required.
	Logger *zap.Logger
	// SyncOnStop calls Logger.Sync when the writer stops.
	SyncOnStop bool
	// Dispose marks the writer for teardown when the manager stops.
	Dispose bool
	// Pipeline holds the ordered build-time writer transforms.
	Pipeline []writer.PipelineInitializer
}

// ZapWriter forwards trace entries to a *zap.Logger. The tracer name
// travels as the zap logger name.
type ZapWriter struct {
	writer.Lifecycle
	logger     *zap.Logger
	syncOnStop bool
}

// New creates a zap sink for cfg.
func New(cfg Config) *ZapWriter {
	return &ZapWriter{logger: cfg.Logger, syncOnStop: cfg.SyncOnStop}
}

// Start marks the writer ready. Idempotent.
func (w *ZapWriter) Start() error {
	w.MarkStarted()
	return nil
}

// Stop marks the writer stopped, syncing the logger when configured.
func (w *ZapWriter) Stop() error {
	w.MarkStopped()
	if w.syncOnStop {
		return w.logger.Sync()
	}
	return nil
}

// EntryWriters exposes the writer's single core.Entry endpoint.
func (w *ZapWriter) EntryWriters() []any {
	return []any{w}
}

// Enabled reports whether the underlying zap core accepts any level
// this writer can emit.
func (w *ZapWriter) Enabled() bool {
	return w.Started() && w.logger.Core().Enabled(zapcore.DebugLevel)
}

// Write forwards one entry to zap.
func (w *ZapWriter) Write(e *core.Entry) error {
	if !w.Started() {
		return writer.ErrStopped
	}
	ce := w.logger.Named(e.Tracer).Check(zapLevel(e.Level), e.Message)
	if ce == nil {
		return nil
	}
	ce.Time = e.Time
	fields := make([]zap.Field, 0, len(e.Fields)+1)
	for _, f := range e.Fields {
		fields = append(fields, zapField(f))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	ce.Write(fields...)
	return nil
}

func zapLevel(l core.Level) zapcore.Level {
	switch l {
	case core.DebugLevel, core.VerboseLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	default:
		// Severe maps to Error as well: the routing runtime never
		// terminates the process on behalf of a sink.
		return zapcore.ErrorLevel
	}
}

func zapField(f core.Field) zap.Field {
	switch f.Type {
	case core.StringType:
		return zap.String(f.Key, f.Str)
	case core.Int64Type:
		return zap.Int64(f.Key, f.Int64)
	case core.Float64Type:
		return zap.Float64(f.Key, f.Float64)
	case core.BoolType:
		return zap.Bool(f.Key, f.Int64 == 1)
	case core.TimeType:
		return zap.Time(f.Key, time.Unix(0, f.Int64))
	case core.DurationType:
		return zap.Duration(f.Key, time.Duration(f.Int64))
	default:
		return zap.Any(f.Key, f.Any)
	}
}

// CreateWriter builds the sink.
func (c Config) CreateWriter(*diag.Stream) (writer.LogWriter, error) {
	if c.Logger == nil {
		return nil, errors.New("zapwriter: Logger is required")
	}
	return New(c), nil
}

// Equal reports structural equality with another descriptor; the
// destination logger is the identity.
func (c Config) Equal(other writer.WriterConfig) bool {
	o, ok := other.(Config)
	return ok && c.Logger == o.Logger && c.SyncOnStop == o.SyncOnStop &&
		c.Dispose == o.Dispose && len(c.Pipeline) == len(o.Pipeline)
}

// DisposeOnStop reports whether the writer is torn down on stop.
func (c Config) DisposeOnStop() bool { return c.Dispose }

// Initializers returns the pipeline transforms for this descriptor.
func (c Config) Initializers() []writer.PipelineInitializer { return c.Pipeline }
