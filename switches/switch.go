package switches

import (
	"sync/atomic"

	"github.com/johncrim/logjam/core"
)

// Switch decides whether a severity level is active for the tracer
// names it is bound to. Implementations must be safe for concurrent
// Enabled calls.
type Switch interface {
	Enabled(level core.Level) bool
}

// ThresholdSwitch enables every level at or above a minimum. The
// threshold can be changed at runtime and takes effect on the next
// Enabled call.
type ThresholdSwitch struct {
	min atomic.Int32
}

// NewThresholdSwitch creates a ThresholdSwitch with the given minimum level.
func NewThresholdSwitch(min core.Level) *ThresholdSwitch {
	s := &ThresholdSwitch{}
	s.min.Store(int32(min))
	return s
}

// Enabled reports whether level is at or above the threshold.
func (s *ThresholdSwitch) Enabled(level core.Level) bool {
	return int32(level) >= s.min.Load()
}

// Threshold returns the current minimum level.
func (s *ThresholdSwitch) Threshold() core.Level {
	return core.Level(s.min.Load())
}

// SetThreshold changes the minimum level.
func (s *ThresholdSwitch) SetThreshold(min core.Level) {
	s.min.Store(int32(min))
}

// OnOffSwitch enables all levels or none. The flag can be changed at
// runtime and takes effect on the next Enabled call.
type OnOffSwitch struct {
	on atomic.Bool
}

// NewOnOffSwitch creates an OnOffSwitch with the given initial state.
func NewOnOffSwitch(enabled bool) *OnOffSwitch {
	s := &OnOffSwitch{}
	s.on.Store(enabled)
	return s
}

// Enabled reports the current flag, ignoring the level.
func (s *OnOffSwitch) Enabled(core.Level) bool {
	return s.on.Load()
}

// Set changes the flag.
func (s *OnOffSwitch) Set(enabled bool) {
	s.on.Store(enabled)
}

// PredicateSwitch delegates the enabled decision to an arbitrary
// function. The function must be safe for concurrent calls.
type PredicateSwitch struct {
	pred func(core.Level) bool
}

// NewPredicateSwitch creates a PredicateSwitch from pred. A nil pred
// disables all levels.
func NewPredicateSwitch(pred func(core.Level) bool) *PredicateSwitch {
	return &PredicateSwitch{pred: pred}
}

// Enabled applies the predicate.
func (s *PredicateSwitch) Enabled(level core.Level) bool {
	return s.pred != nil && s.pred(level)
}
