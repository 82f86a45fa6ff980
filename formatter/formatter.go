package formatter

import (
	"bytes"
	"io"
	"sync"

	"github.com/johncrim/logjam/core"
)

// Formatter encodes a trace entry into bytes.
type Formatter interface {
	// Format formats a trace entry into bytes
	Format(entry *core.Entry) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can
// implement to write directly to a writer without an intermediate
// byte slice allocation.
type WriterFormatter interface {
	// FormatTo formats a trace entry and writes it directly to the writer
	FormatTo(entry *core.Entry, w io.Writer) error
}

// Config holds common formatter configuration
type Config struct {
	// TimestampFormat specifies the time format (empty for RFC3339)
	TimestampFormat string
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
