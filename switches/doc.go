// Package switches implements the per-name, per-level predicates that
// decide whether a trace call is active.
//
// A Switch answers Enabled(level) for one rule; a SwitchSet maps dotted
// name prefixes to switches and resolves a tracer name to its most
// specific rule with deterministic longest-prefix matching. Threshold
// and on/off switches are mutable at runtime through atomics, so a
// threshold change takes effect on the next call without rebinding
// tracers.
package switches
