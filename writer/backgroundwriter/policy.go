package backgroundwriter

import "sync/atomic"

// Policy defines what happens when a proxy's queue is full.
type Policy int

const (
	// Block blocks the producer until space frees up, bounded by
	// BlockTimeout; on timeout the entry is dropped and reported.
	Block Policy = iota
	// DropNewest drops the entry being enqueued.
	DropNewest
	// DropOldest drops the oldest queued entry to make room.
	DropOldest
)

// String returns the string representation of the policy
func (p Policy) String() string {
	switch p {
	case Block:
		return "Block"
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	default:
		return "Unknown"
	}
}

// Stats tracks dispatcher statistics with atomic counters.
type Stats struct {
	processed atomic.Uint64
	dropped   atomic.Uint64
	blocked   atomic.Uint64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	// Processed counts entries delivered to real sinks.
	Processed uint64
	// Dropped counts entries lost to backpressure or drain timeout.
	Dropped uint64
	// Blocked counts producer enqueues that had to wait for space.
	Blocked uint64
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Processed: s.processed.Load(),
		Dropped:   s.dropped.Load(),
		Blocked:   s.blocked.Load(),
	}
}
