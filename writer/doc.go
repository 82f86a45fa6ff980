// Package writer defines the sink capability contracts the logjam
// runtime routes entries through, and the building blocks the manager
// uses to assemble them.
//
// A LogWriter owns lifecycle (Start/Stop) and exposes typed
// EntryWriter endpoints negotiated with FindEntryWriter; asking for an
// unsupported entry type is a normal miss, never an error. WriterConfig
// descriptors declare sinks by value: structural equality is their
// identity, and each descriptor carries the ordered
// PipelineInitializer chain that wraps its base writer at build time
// (background dispatch, buffering). A DependencyRegistry spans one
// build, letting later stages discover instances produced by earlier
// ones, and is sealed once the build completes.
//
// FanOutEntryWriter broadcasts one write to several children with
// per-child failure isolation; NoopEntryWriter is the inert fallback
// that keeps broken sinks from ever failing a trace call.
package writer
