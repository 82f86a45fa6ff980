// Package core defines the shared types used across the logjam runtime.
//
// It provides the Level type for severity filtering, the Entry type that
// represents a single trace event, and the Field type for structured
// key-value pairs.
//
// Entries are constructed once by the tracer that owns the call site and
// then flow by pointer through switches, fan-out writers, and background
// dispatch queues. Because delivery may happen on a different goroutine
// after the producing call returns, entries are treated as immutable:
// any component that needs to hold one past a Write call copies it.
package core
