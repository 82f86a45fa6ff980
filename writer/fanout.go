package writer

import (
	"fmt"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
)

const fanOutDiagName = "logjam.writer.fanout"

// FanOutEntryWriter broadcasts one write to several entry writers in
// registration order. A failure (error or panic) in one child is
// reported to the diagnostic stream and never blocks or skips delivery
// to the remaining children, and never reaches the caller.
type FanOutEntryWriter[T any] struct {
	writers []EntryWriter[T]
	diags   *diag.Stream
}

// NewFanOut creates a fan-out over the given writers. diags may be nil.
func NewFanOut[T any](diags *diag.Stream, writers ...EntryWriter[T]) *FanOutEntryWriter[T] {
	return &FanOutEntryWriter[T]{writers: writers, diags: diags}
}

// Enabled reports true when any child would accept the entry. The OR
// keeps the fan-out from pessimistically suppressing entries that some
// children still want.
func (f *FanOutEntryWriter[T]) Enabled() bool {
	for _, w := range f.writers {
		if w.Enabled() {
			return true
		}
	}
	return false
}

// Write forwards e to every child in order.
func (f *FanOutEntryWriter[T]) Write(e *T) error {
	for i, w := range f.writers {
		f.writeOne(i, w, e)
	}
	return nil
}

func (f *FanOutEntryWriter[T]) writeOne(i int, w EntryWriter[T], e *T) {
	defer func() {
		if r := recover(); r != nil {
			f.diags.Report(core.ErrorLevel, fanOutDiagName,
				fmt.Sprintf("panic writing to fan-out child %d: %v", i, r), nil)
		}
	}()
	if !w.Enabled() {
		return
	}
	if err := w.Write(e); err != nil {
		f.diags.Report(core.ErrorLevel, fanOutDiagName,
			fmt.Sprintf("write to fan-out child %d failed", i), err)
	}
}
