package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/johncrim/logjam/core"
)

// TextFormatter formats trace entries as human-readable text:
//
//	2024-01-02T15:04:05Z [INFO] App.Worker: message key=value err=...
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats an entry as text
func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(entry, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats an entry and writes it directly to the writer
func (f *TextFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(entry, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// pre-formatted level tags to avoid repeated WriteString calls
var levelBrackets = [...]string{
	core.DebugLevel:   " [DEBUG] ",
	core.VerboseLevel: " [VERBOSE] ",
	core.InfoLevel:    " [INFO] ",
	core.WarnLevel:    " [WARN] ",
	core.ErrorLevel:   " [ERROR] ",
	core.SevereLevel:  " [SEVERE] ",
}

func (f *TextFormatter) formatToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteString(entry.Time.Format(f.TimestampFormat))
	if int(entry.Level) < len(levelBrackets) && entry.Level >= 0 {
		buf.WriteString(levelBrackets[entry.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}
	if entry.Tracer != "" {
		buf.WriteString(entry.Tracer)
		buf.WriteString(": ")
	}
	buf.WriteString(entry.Message)

	for _, field := range entry.Fields {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(field.StringValue())
	}
	if entry.Err != nil {
		buf.WriteString(" err=")
		buf.WriteString(entry.Err.Error())
	}
	buf.WriteByte('\n')
}
