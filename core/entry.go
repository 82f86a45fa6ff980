package core

import (
	"strings"
	"time"
)

// Level represents the severity of a trace entry.
type Level int8

const (
	// DebugLevel for detailed debugging output
	DebugLevel Level = iota
	// VerboseLevel for chatty operational detail
	VerboseLevel
	// InfoLevel for general informational messages (default)
	InfoLevel
	// WarnLevel for warning messages
	WarnLevel
	// ErrorLevel for error messages
	ErrorLevel
	// SevereLevel for faults that usually precede process failure
	SevereLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case VerboseLevel:
		return "VERBOSE"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case SevereLevel:
		return "SEVERE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level. Unrecognized strings
// parse as InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel
	case "VERBOSE", "TRACE":
		return VerboseLevel
	case "INFO":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "SEVERE", "FATAL", "CRITICAL":
		return SevereLevel
	default:
		return InfoLevel
	}
}

// Entry is a single trace event. An Entry is immutable once constructed
// and is passed to entry writers by pointer to avoid copying on the hot
// path; writers must not mutate it or retain the pointer past the Write
// call without copying.
type Entry struct {
	Time    time.Time
	Tracer  string
	Level   Level
	Message string
	Fields  []Field
	Err     error
}
