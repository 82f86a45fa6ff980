package diag

import (
	"fmt"
	"sync"

	"github.com/zoobzio/clockz"

	"github.com/johncrim/logjam/core"
)

// DefaultCapacity is the default number of retained diagnostic entries.
const DefaultCapacity = 1024

// Config holds Stream configuration.
type Config struct {
	// Capacity is the maximum number of retained entries; the oldest
	// entry is evicted once the stream is full (default: 1024).
	Capacity int
	// Clock supplies entry timestamps (default: the real clock).
	Clock clockz.Clock
}

func applyDefaults(cfg *Config) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = clockz.RealClock
	}
}

// Stream is the runtime's self-diagnostic trace output: build
// failures, write failures, and drop counts are reported here instead
// of propagating to trace callers or recursing through user-configured
// sinks. It is a bounded ring of entries, appendable from any
// goroutine and queryable for test verification or operator
// inspection.
//
// All methods are nil-safe so failure-containment code can report
// unconditionally.
type Stream struct {
	clock   clockz.Clock
	mu      sync.Mutex
	entries []core.Entry
	next    int
	full    bool
}

// NewStream creates a diagnostic stream.
func NewStream(cfg Config) *Stream {
	applyDefaults(&cfg)
	return &Stream{
		clock:   cfg.Clock,
		entries: make([]core.Entry, cfg.Capacity),
	}
}

// Report appends a diagnostic entry.
func (s *Stream) Report(level core.Level, tracer, msg string, err error) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.entries[s.next] = core.Entry{
		Time:    s.clock.Now(),
		Tracer:  tracer,
		Level:   level,
		Message: msg,
		Err:     err,
	}
	s.next++
	if s.next == len(s.entries) {
		s.next = 0
		s.full = true
	}
	s.mu.Unlock()
}

// Reportf appends a diagnostic entry with a formatted message.
func (s *Stream) Reportf(level core.Level, tracer, format string, args ...interface{}) {
	if s == nil {
		return
	}
	s.Report(level, tracer, fmt.Sprintf(format, args...), nil)
}

// Entries returns a snapshot of the retained entries, oldest first.
func (s *Stream) Entries() []core.Entry {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		out := make([]core.Entry, s.next)
		copy(out, s.entries[:s.next])
		return out
	}
	out := make([]core.Entry, 0, len(s.entries))
	out = append(out, s.entries[s.next:]...)
	out = append(out, s.entries[:s.next]...)
	return out
}

// Len returns the number of retained entries.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return len(s.entries)
	}
	return s.next
}
