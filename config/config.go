// Package config loads declarative routing configuration from YAML and
// turns it into a manager.Config ready for NewTraceManager. Loading is
// one-way; the runtime does not serialize its state back out.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/manager"
	"github.com/johncrim/logjam/switches"
	"github.com/johncrim/logjam/writer"
	"github.com/johncrim/logjam/writer/backgroundwriter"
	"github.com/johncrim/logjam/writer/consolewriter"
	"github.com/johncrim/logjam/writer/listwriter"
	"github.com/johncrim/logjam/writer/textwriter"
)

// ErrInvalidConfig wraps every configuration parse or validation
// failure returned by Load.
var ErrInvalidConfig = errors.New("logjam: invalid configuration")

type document struct {
	Writers []writerDoc `yaml:"writers"`
}

type writerDoc struct {
	Sink         string      `yaml:"sink"`
	Path         string      `yaml:"path"`
	NoColor      bool        `yaml:"no_color"`
	UseStderr    bool        `yaml:"use_stderr"`
	Background   bool        `yaml:"background"`
	QueueSize    int         `yaml:"queue_size"`
	Policy       string      `yaml:"policy"`
	DrainTimeout string      `yaml:"drain_timeout"`
	Switches     []switchDoc `yaml:"switches"`
}

type switchDoc struct {
	Prefix string `yaml:"prefix"`
	Level  string `yaml:"level"`
}

// Load parses YAML configuration into a manager.Config. Unknown sink
// kinds, levels, and policies are errors; a writer without switches
// gets a root threshold at Info.
func Load(r io.Reader) (manager.Config, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return manager.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(doc.Writers) == 0 {
		return manager.Config{}, fmt.Errorf("%w: no writers configured", ErrInvalidConfig)
	}

	var cfg manager.Config
	for i, wd := range doc.Writers {
		twc, err := buildWriter(wd, &cfg.Background)
		if err != nil {
			return manager.Config{}, fmt.Errorf("%w: writers[%d]: %v", ErrInvalidConfig, i, err)
		}
		cfg.Writers = append(cfg.Writers, twc)
	}
	return cfg, nil
}

// LoadFile loads configuration from a YAML file.
func LoadFile(path string) (manager.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return manager.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	defer f.Close()
	return Load(f)
}

// buildWriter maps one writer stanza to a descriptor plus switch set.
// Dispatcher tuning (queue_size, policy, drain_timeout) applies to the
// manager's shared dispatcher; when several stanzas set it, the last
// one wins.
func buildWriter(wd writerDoc, bg *backgroundwriter.Config) (manager.TraceWriterConfig, error) {
	var pipeline []writer.PipelineInitializer
	if wd.Background {
		pipeline = []writer.PipelineInitializer{backgroundwriter.Initializer{}}
	}

	var wc writer.WriterConfig
	switch strings.ToLower(strings.TrimSpace(wd.Sink)) {
	case "console":
		wc = consolewriter.Config{
			NoColor:   wd.NoColor,
			UseStderr: wd.UseStderr,
			Pipeline:  pipeline,
		}
	case "text":
		if wd.Path == "" {
			return manager.TraceWriterConfig{}, errors.New("text sink requires a path")
		}
		wc = fileConfig{path: wd.Path, pipeline: pipeline}
	case "list":
		wc = listwriter.Config{Target: listwriter.New(), Pipeline: pipeline}
	default:
		return manager.TraceWriterConfig{}, fmt.Errorf("unknown sink %q", wd.Sink)
	}

	if wd.QueueSize > 0 {
		bg.QueueSize = wd.QueueSize
	}
	if wd.DrainTimeout != "" {
		d, err := time.ParseDuration(wd.DrainTimeout)
		if err != nil {
			return manager.TraceWriterConfig{}, fmt.Errorf("drain_timeout: %v", err)
		}
		bg.DrainTimeout = d
	}
	if wd.Policy != "" {
		p, err := parsePolicy(wd.Policy)
		if err != nil {
			return manager.TraceWriterConfig{}, err
		}
		bg.Policy = p
	}

	set, err := buildSwitches(wd.Switches)
	if err != nil {
		return manager.TraceWriterConfig{}, err
	}
	return manager.TraceWriterConfig{Writer: wc, Switches: set}, nil
}

func buildSwitches(docs []switchDoc) (*switches.SwitchSet, error) {
	set := switches.NewSwitchSet()
	if len(docs) == 0 {
		set.Add("", switches.NewThresholdSwitch(core.InfoLevel))
		return set, nil
	}
	for _, sd := range docs {
		level, err := parseLevel(sd.Level)
		if err != nil {
			return nil, err
		}
		set.Add(sd.Prefix, switches.NewThresholdSwitch(level))
	}
	return set, nil
}

// parseLevel is the strict counterpart of core.ParseLevel: declarative
// configuration must not silently coerce a typo to Info.
func parseLevel(s string) (core.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return core.DebugLevel, nil
	case "verbose", "trace":
		return core.VerboseLevel, nil
	case "info":
		return core.InfoLevel, nil
	case "warn", "warning":
		return core.WarnLevel, nil
	case "error":
		return core.ErrorLevel, nil
	case "severe", "fatal", "critical":
		return core.SevereLevel, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}

func parsePolicy(s string) (backgroundwriter.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block":
		return backgroundwriter.Block, nil
	case "drop_newest":
		return backgroundwriter.DropNewest, nil
	case "drop_oldest":
		return backgroundwriter.DropOldest, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", s)
	}
}

// fileConfig describes a buffered text sink appending to a file. The
// file is opened when the writer is built and closed when it stops, so
// a descriptor can survive restart cycles.
type fileConfig struct {
	path     string
	pipeline []writer.PipelineInitializer
}

func (c fileConfig) CreateWriter(*diag.Stream) (writer.LogWriter, error) {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	tw := textwriter.New(textwriter.Config{Writer: f, Buffered: true})
	return &fileWriter{TextWriter: tw, file: f}, nil
}

func (c fileConfig) Equal(other writer.WriterConfig) bool {
	o, ok := other.(fileConfig)
	return ok && c.path == o.path && len(c.pipeline) == len(o.pipeline)
}

func (c fileConfig) DisposeOnStop() bool { return true }

func (c fileConfig) Initializers() []writer.PipelineInitializer { return c.pipeline }

type fileWriter struct {
	*textwriter.TextWriter
	file *os.File
}

// Stop flushes buffered output and closes the underlying file.
func (w *fileWriter) Stop() error {
	err := w.TextWriter.Stop()
	return multierr.Append(err, w.file.Close())
}
