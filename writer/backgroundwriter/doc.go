// Package backgroundwriter implements asynchronous multiplexed
// delivery: producer-facing proxy writers with bounded queues feeding
// a consumer pool that drains to the real sinks.
//
// Producers pay only a copy and a channel send per entry. When a queue
// is full the configured Policy applies: Block waits up to a bounded
// timeout, DropNewest discards the incoming entry, DropOldest makes
// room by discarding the head of the queue. Entries on one proxy reach
// its sink in FIFO order; nothing is ordered across proxies.
//
// Stop drains every queue synchronously, bounded by DrainTimeout;
// whatever remains after the deadline is dropped and the count is
// reported to the diagnostic stream. A sink failure while delivering
// one entry is reported and the consumer moves on - the loop is never
// terminated by a sink fault.
package backgroundwriter
