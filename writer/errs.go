package writer

import "errors"

var (
	// ErrSealed is returned when registering into a DependencyRegistry
	// after Seal.
	ErrSealed = errors.New("logjam: dependency registry is sealed")

	// ErrStopped is returned when an entry is offered to a writer that
	// has stopped accepting work.
	ErrStopped = errors.New("logjam: writer is stopped")

	// ErrDisposed is returned when starting a writer that has been
	// disposed.
	ErrDisposed = errors.New("logjam: writer is disposed")
)
