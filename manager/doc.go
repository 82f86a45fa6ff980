// Package manager implements the lifecycle layer of the logjam
// runtime: the LogManager that builds and owns runtime writers from
// declarative descriptors, and the TraceManager that hands out named
// Tracers and keeps their bound writer sets in sync with the
// configuration.
//
// Descriptors are deduplicated by structural equality, built through
// their pipeline initializer chains with per-descriptor failure
// containment, and wrapped with shared background dispatch when their
// pipeline asks for it. Reconfiguration happens under the manager's
// own critical section and publishes each tracer's new writer set with
// a single atomic store, so in-flight trace calls never block on a
// reconfigure and never observe a partially updated set. After Stop,
// every previously obtained tracer is inert: calls produce no output,
// no errors, and no I/O.
package manager
