package formatter

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/johncrim/logjam/core"
)

// WireEntry is the binary wire shape of a trace entry. The routing
// core never inspects this encoding; it exists so stream sinks can
// carry entries in a compact machine-readable form.
type WireEntry struct {
	TimestampNS int64             `msgpack:"ts"`
	Tracer      string            `msgpack:"tracer"`
	Level       int8              `msgpack:"level"`
	Message     string            `msgpack:"msg"`
	Fields      map[string]string `msgpack:"fields,omitempty"`
	Error       string            `msgpack:"err,omitempty"`
}

// MsgpackFormatter encodes trace entries as msgpack WireEntry records.
type MsgpackFormatter struct{}

// NewMsgpackFormatter creates a new msgpack formatter
func NewMsgpackFormatter() *MsgpackFormatter {
	return &MsgpackFormatter{}
}

// Format encodes an entry as one msgpack record.
func (f *MsgpackFormatter) Format(entry *core.Entry) ([]byte, error) {
	return msgpack.Marshal(toWire(entry))
}

func toWire(entry *core.Entry) *WireEntry {
	w := &WireEntry{
		TimestampNS: entry.Time.UnixNano(),
		Tracer:      entry.Tracer,
		Level:       int8(entry.Level),
		Message:     entry.Message,
	}
	if len(entry.Fields) > 0 {
		w.Fields = make(map[string]string, len(entry.Fields))
		for _, f := range entry.Fields {
			w.Fields[f.Key] = f.StringValue()
		}
	}
	if entry.Err != nil {
		w.Error = entry.Err.Error()
	}
	return w
}

// DecodeWireEntry decodes one msgpack record produced by Format.
func DecodeWireEntry(data []byte) (*WireEntry, error) {
	var w WireEntry
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
