package writer

import "github.com/johncrim/logjam/diag"

// WriterConfig is the declarative descriptor for one sink. Descriptors
// are value objects: structural equality (Equal) is the sole identity
// used for deduplication inside a manager, so re-adding an equal
// descriptor reuses the running writer instead of building a second
// one.
type WriterConfig interface {
	// CreateWriter constructs the base runtime writer. Failures are
	// contained by the manager: the descriptor is skipped and reported,
	// other descriptors still build.
	CreateWriter(diags *diag.Stream) (LogWriter, error)

	// Equal reports structural equality with another descriptor.
	Equal(other WriterConfig) bool

	// DisposeOnStop reports whether the built writer should be torn
	// down, not just stopped, when the manager stops.
	DisposeOnStop() bool

	// Initializers returns the ordered pipeline transforms applied to
	// the base writer at build time.
	Initializers() []PipelineInitializer
}

// PipelineInitializer is one stage of the writer construction
// pipeline. It receives the writer built so far and returns the writer
// to use from here on, typically the same writer wrapped with
// additional behavior such as background dispatch or buffering. The
// registry carries instances produced by earlier stages of the same
// build.
type PipelineInitializer interface {
	InitializeWriter(w LogWriter, reg *DependencyRegistry) (LogWriter, error)
}

// ImportInitializer is an optional second-pass capability. After every
// stage has run and the registry is sealed, the manager runs
// ImportDependencies over the initializers in the same order, letting
// stages pull instances registered by other stages to wire
// cross-cutting concerns.
type ImportInitializer interface {
	ImportDependencies(reg *DependencyRegistry) error
}
