// Package formatter encodes trace entries for stream sinks.
//
// Formatter is the base capability; WriterFormatter is an optional
// fast path that writes into the destination directly, skipping the
// intermediate byte slice. TextFormatter produces single-line
// human-readable output; MsgpackFormatter produces compact binary
// records. Sinks negotiate the fast path by type assertion, the same
// way entry writers are negotiated.
package formatter
