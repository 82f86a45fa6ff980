package backgroundwriter

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"golang.org/x/sync/errgroup"

	"github.com/johncrim/logjam/core"
	"github.com/johncrim/logjam/diag"
	"github.com/johncrim/logjam/writer"
)

const diagName = "logjam.writer.background"

// Config holds BackgroundMultiLogWriter configuration.
type Config struct {
	// QueueSize is the bounded capacity of each proxy queue (default: 512).
	QueueSize int
	// Policy applies when a proxy queue is full (default: Block).
	Policy Policy
	// BlockTimeout bounds how long a producer blocks under the Block
	// policy (default: 100ms). Producers never block unboundedly.
	BlockTimeout time.Duration
	// DrainTimeout bounds the synchronous drain performed by Stop
	// (default: 5s). Entries still queued after the timeout are dropped
	// and the drop count is reported to diagnostics.
	DrainTimeout time.Duration
	// BatchSize is the maximum entries drained from one proxy per
	// round-robin turn (default: 64). Keeps one busy proxy from
	// starving the others.
	BatchSize int
	// Workers is the number of consumer goroutines (default: 1).
	// Proxies are sharded across workers, so per-proxy FIFO order
	// holds regardless of the pool size.
	Workers int
	// Clock supplies timers and deadlines (default: the real clock).
	Clock clockz.Clock
	// Diags receives failure and drop reports; may be nil.
	Diags *diag.Stream
}

func applyDefaults(cfg *Config) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 512
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = clockz.RealClock
	}
}

// BackgroundMultiLogWriter decouples producer call sites from sink I/O.
// Each wrapped sink is fronted by a proxy entry writer with a bounded
// queue; consumer goroutines service the queues in round-robin order
// and deliver entries to the real sinks. Entries enqueued on the same
// proxy reach its sink in FIFO order; no ordering holds across proxies.
//
// A dispatcher is single-use: once stopped it cannot be restarted, the
// manager builds a fresh one per start cycle.
type BackgroundMultiLogWriter struct {
	cfg       Config
	mu        sync.Mutex
	queues    []*sinkQueue
	workers   []*worker
	group     errgroup.Group
	started   bool
	stopped   bool
	accepting atomic.Bool
	stopCh    chan struct{}
	stats     Stats
}

type worker struct {
	index int
	wake  chan struct{}
}

type sinkQueue struct {
	target  writer.EntryWriter[core.Entry]
	flusher writer.Flusher
	ch      chan *core.Entry
	worker  *worker
}

// New creates a background dispatcher. Call Start before expecting
// delivery; entries enqueued before Start stay queued.
func New(cfg Config) *BackgroundMultiLogWriter {
	applyDefaults(&cfg)
	b := &BackgroundMultiLogWriter{
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		b.workers = append(b.workers, &worker{index: i, wake: make(chan struct{}, 1)})
	}
	b.accepting.Store(true)
	return b
}

// Wrap fronts target with a background-dispatch proxy. The proxy's
// core.Entry writer enqueues copies; entry writers for other types
// pass through to the target synchronously. Lifecycle calls on the
// proxy forward to the target.
func (b *BackgroundMultiLogWriter) Wrap(target writer.LogWriter) writer.LogWriter {
	b.mu.Lock()
	defer b.mu.Unlock()

	proxied := &proxyWriter{target: target}
	for _, x := range target.EntryWriters() {
		typed, ok := x.(writer.EntryWriter[core.Entry])
		if !ok {
			proxied.entryWriters = append(proxied.entryWriters, x)
			continue
		}
		q := &sinkQueue{
			target: typed,
			ch:     make(chan *core.Entry, b.cfg.QueueSize),
			worker: b.workers[len(b.queues)%len(b.workers)],
		}
		if fl, ok := target.(writer.Flusher); ok {
			q.flusher = fl
		}
		b.queues = append(b.queues, q)
		proxied.entryWriters = append(proxied.entryWriters, &proxyEntryWriter{b: b, q: q})
	}
	return proxied
}

// Start launches the consumer goroutines. Idempotent.
func (b *BackgroundMultiLogWriter) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return writer.ErrDisposed
	}
	if b.started {
		return nil
	}
	b.started = true
	for _, w := range b.workers {
		w := w
		b.group.Go(func() error {
			b.run(w)
			return nil
		})
	}
	return nil
}

// Started reports whether the dispatcher is running.
func (b *BackgroundMultiLogWriter) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started && !b.stopped
}

// Stop stops intake, synchronously drains all queues bounded by
// DrainTimeout, and returns once the consumers have exited. Entries
// abandoned by the timeout are counted as dropped and reported.
// Idempotent.
func (b *BackgroundMultiLogWriter) Stop() error {
	b.mu.Lock()
	if !b.started || b.stopped {
		wasStarted := b.started
		b.stopped = true
		b.accepting.Store(false)
		b.mu.Unlock()
		if !wasStarted {
			return nil
		}
		return b.group.Wait()
	}
	b.stopped = true
	b.mu.Unlock()

	b.accepting.Store(false)
	close(b.stopCh)
	return b.group.Wait()
}

// StatsSnapshot returns the current dispatcher counters.
func (b *BackgroundMultiLogWriter) StatsSnapshot() Snapshot {
	return b.stats.Snapshot()
}

// queuesOf returns a snapshot of the queues assigned to w.
func (b *BackgroundMultiLogWriter) queuesOf(w *worker) []*sinkQueue {
	b.mu.Lock()
	defer b.mu.Unlock()
	var qs []*sinkQueue
	for _, q := range b.queues {
		if q.worker == w {
			qs = append(qs, q)
		}
	}
	return qs
}

// run is one consumer loop. It sleeps until woken by an enqueue or by
// stop, then sweeps its queues round-robin.
func (b *BackgroundMultiLogWriter) run(w *worker) {
	for {
		select {
		case <-b.stopCh:
			b.drain(w)
			return
		case <-w.wake:
			b.sweep(w)
		}
	}
}

// sweep drains the worker's queues fairly: at most BatchSize entries
// per queue per turn, looping until every queue reads empty. A
// producer enqueueing during the sweep re-arms the wake channel, so
// nothing is lost to the race between the last empty check and the
// return to select.
func (b *BackgroundMultiLogWriter) sweep(w *worker) {
	for {
		idle := true
		for _, q := range b.queuesOf(w) {
			n := 0
		batch:
			for n < b.cfg.BatchSize {
				select {
				case e := <-q.ch:
					b.deliver(q, e)
					n++
				default:
					break batch
				}
			}
			if n > 0 {
				idle = false
				b.maybeFlush(q)
			}
		}
		if idle {
			return
		}
	}
}

// drain empties every queue assigned to w, bounded by DrainTimeout.
func (b *BackgroundMultiLogWriter) drain(w *worker) {
	deadline := b.cfg.Clock.After(b.cfg.DrainTimeout)
	for _, q := range b.queuesOf(w) {
		n := 0
	queueDrain:
		for {
			select {
			case <-deadline:
				b.reportAbandoned(w)
				return
			default:
			}
			select {
			case e := <-q.ch:
				b.deliver(q, e)
				n++
			default:
				break queueDrain
			}
		}
		if n > 0 {
			b.maybeFlush(q)
		}
	}
}

// reportAbandoned counts entries still queued for w after the drain
// deadline and reports them as dropped.
func (b *BackgroundMultiLogWriter) reportAbandoned(w *worker) {
	var abandoned uint64
	for _, q := range b.queuesOf(w) {
		abandoned += uint64(len(q.ch))
	}
	if abandoned == 0 {
		return
	}
	b.stats.dropped.Add(abandoned)
	b.cfg.Diags.Reportf(core.WarnLevel, diagName,
		"drain timeout: dropped %d queued entries", abandoned)
}

// deliver writes one entry to the real sink with failure isolation: an
// error or panic is reported and the consumer proceeds to the next
// entry.
func (b *BackgroundMultiLogWriter) deliver(q *sinkQueue, e *core.Entry) {
	defer func() {
		if r := recover(); r != nil {
			b.cfg.Diags.Report(core.ErrorLevel, diagName,
				fmt.Sprintf("panic delivering entry to sink: %v", r), nil)
		}
	}()
	if err := q.target.Write(e); err != nil {
		b.cfg.Diags.Report(core.ErrorLevel, diagName, "background delivery failed", err)
		return
	}
	b.stats.processed.Add(1)
}

func (b *BackgroundMultiLogWriter) maybeFlush(q *sinkQueue) {
	if q.flusher == nil || !q.flusher.NeedsFlush() {
		return
	}
	if err := q.flusher.Flush(); err != nil {
		b.cfg.Diags.Report(core.ErrorLevel, diagName, "sink flush failed", err)
	}
}

// proxyWriter fronts one real sink. Lifecycle calls forward to the
// target; the dispatcher drains before targets are stopped because the
// manager stops the dispatcher first.
type proxyWriter struct {
	target       writer.LogWriter
	entryWriters []any
}

func (p *proxyWriter) Start() error        { return p.target.Start() }
func (p *proxyWriter) Stop() error         { return p.target.Stop() }
func (p *proxyWriter) Started() bool       { return p.target.Started() }
func (p *proxyWriter) EntryWriters() []any { return p.entryWriters }

// proxyEntryWriter is the producer-facing endpoint for one queue.
type proxyEntryWriter struct {
	b *BackgroundMultiLogWriter
	q *sinkQueue
}

// Enabled reports whether the dispatcher accepts work and the real
// sink would take the entry.
func (p *proxyEntryWriter) Enabled() bool {
	return p.b.accepting.Load() && p.q.target.Enabled()
}

// Write copies the entry and enqueues it, applying the configured
// backpressure policy when the queue is full.
func (p *proxyEntryWriter) Write(e *core.Entry) error {
	if !p.b.accepting.Load() {
		return writer.ErrStopped
	}
	// Copy: the producer's entry must not be retained past this call.
	queued := *e

	select {
	case p.q.ch <- &queued:
		return p.confirmEnqueue()
	default:
	}

	b := p.b
	switch b.cfg.Policy {
	case Block:
		b.stats.blocked.Add(1)
		select {
		case p.q.ch <- &queued:
			return p.confirmEnqueue()
		case <-b.cfg.Clock.After(b.cfg.BlockTimeout):
			b.stats.dropped.Add(1)
			b.cfg.Diags.Report(core.WarnLevel, diagName,
				"enqueue timed out on full queue, entry dropped", nil)
			return nil
		case <-b.stopCh:
			return writer.ErrStopped
		}

	case DropOldest:
		select {
		case <-p.q.ch:
			b.stats.dropped.Add(1)
		default:
		}
		select {
		case p.q.ch <- &queued:
			return p.confirmEnqueue()
		default:
			b.stats.dropped.Add(1)
		}
		return nil

	case DropNewest:
		fallthrough
	default:
		b.stats.dropped.Add(1)
		return nil
	}
}

// confirmEnqueue re-checks intake after a successful send. Stop flips
// accepting before the workers drain, so a send racing the stop can
// land in a queue the drain has already finished with; reclaiming one
// entry and counting it dropped keeps nothing sitting unaccounted in
// a dead queue.
func (p *proxyEntryWriter) confirmEnqueue() error {
	if p.b.accepting.Load() {
		p.signal()
		return nil
	}
	select {
	case <-p.q.ch:
		p.b.stats.dropped.Add(1)
		p.b.cfg.Diags.Report(core.WarnLevel, diagName,
			"enqueue raced shutdown, entry dropped", nil)
		return writer.ErrStopped
	default:
	}
	// The drain already took the entry; it was delivered normally.
	p.signal()
	return nil
}

func (p *proxyEntryWriter) signal() {
	select {
	case p.q.worker.wake <- struct{}{}:
	default:
	}
}
