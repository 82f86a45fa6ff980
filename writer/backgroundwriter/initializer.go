package backgroundwriter

import (
	"errors"

	"github.com/johncrim/logjam/writer"
)

// Initializer is the pipeline stage that wraps a writer with
// background dispatch. The manager seeds every build registry with its
// shared dispatcher, so all descriptors carrying this initializer fan
// into one consumer pool.
type Initializer struct{}

// InitializeWriter wraps w with the dispatcher found in the registry.
func (Initializer) InitializeWriter(w writer.LogWriter, reg *writer.DependencyRegistry) (writer.LogWriter, error) {
	b, ok := writer.Resolve[*BackgroundMultiLogWriter](reg)
	if !ok {
		return nil, errors.New("logjam: no background dispatcher in build registry")
	}
	return b.Wrap(w), nil
}
