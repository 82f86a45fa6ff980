package writer

// NoopEntryWriter accepts nothing and writes nothing. It is the safe
// fallback handed to callers when a sink is broken or absent, so a
// trace call never crashes on a missing capability.
type NoopEntryWriter[T any] struct{}

// Noop returns a no-op entry writer for T.
func Noop[T any]() EntryWriter[T] {
	return NoopEntryWriter[T]{}
}

// Enabled always reports false.
func (NoopEntryWriter[T]) Enabled() bool { return false }

// Write discards the entry.
func (NoopEntryWriter[T]) Write(*T) error { return nil }
