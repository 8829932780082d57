package buffer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/framepull/pkg/metrics"
)

// Config holds configuration for buffers.
type Config struct {
	// Name identifies the buffer in logs and metrics.
	Name string

	// WaitTimeout bounds each consumer wait. Zero means wait indefinitely.
	// A positive value opts into the timeout variant: an expired wait is
	// treated as end-of-sequence, not as an error, distinguishing "no data
	// arrived in time" from "source failed".
	WaitTimeout time.Duration

	// Logger receives buffer lifecycle events. Defaults to a disabled logger.
	Logger zerolog.Logger

	// Metrics is the registry to instrument with. Nil disables instrumentation.
	Metrics *metrics.Registry
}

// DefaultConfig returns a default buffer configuration.
func DefaultConfig() Config {
	return Config{
		Name:   "buffer",
		Logger: zerolog.Nop(),
	}
}

// Stats holds counters describing buffer activity.
type Stats struct {
	// Writes is the total number of items appended.
	Writes int64

	// Reads is the total number of items consumed.
	Reads int64

	// Dropped is the total number of items discarded by the gated variant's
	// write-after-finish policy.
	Dropped int64

	// LateWrites is the number of items accepted after Finish.
	LateWrites int64

	// GateWaits is the number of producer waits on a closed write gate.
	GateWaits int64

	// MaxDepth is the high-water mark of queued items.
	MaxDepth int
}

// Buffer is a thread-safe FIFO queue exposed as a blocking pull source.
// A producer appends with Write, a consumer drains with Next, and Finish marks
// the end of production. The sequence terminates once the queue is empty and
// finished; every item written before Finish returns is observed by the
// consumer.
//
// Buffer implements seq.Source, so a consumer can iterate it through the
// sequence operations directly.
//
// One logical producer and one logical consumer per instance; concurrent
// writers are serialized by the internal lock but their relative order is
// whatever the lock hands out.
type Buffer[T any] struct {
	config Config

	mu       sync.Mutex
	recvCond *sync.Cond // consumers waiting for items or finish
	sendCond *sync.Cond // gated producers waiting for the gate to open
	items    []T
	finished bool
	stats    Stats
}

// New creates an unbounded buffer with default configuration.
func New[T any]() *Buffer[T] {
	return NewWithConfig[T](DefaultConfig())
}

// NewWithConfig creates an unbounded buffer with the specified configuration.
func NewWithConfig[T any](config Config) *Buffer[T] {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	b := &Buffer[T]{config: config}
	b.recvCond = sync.NewCond(&b.mu)
	b.sendCond = sync.NewCond(&b.mu)
	return b
}

// Write appends an item and wakes one waiting consumer. It never blocks and
// never fails. Writes after Finish are still accepted; the consumer drains
// them before observing end-of-sequence. Use the gated variant's Add for the
// discard-on-finished policy instead.
func (b *Buffer[T]) Write(item T) {
	b.mu.Lock()
	b.items = append(b.items, item)
	b.stats.Writes++
	if b.finished {
		b.stats.LateWrites++
		b.config.Logger.Debug().Str("buffer", b.config.Name).Msg("write after finish accepted")
	}
	if len(b.items) > b.stats.MaxDepth {
		b.stats.MaxDepth = len(b.items)
	}
	depth := len(b.items)
	b.recvCond.Signal()
	// Queue shape changed; gated producers re-evaluate their predicate.
	b.sendCond.Broadcast()
	b.mu.Unlock()

	if b.config.Metrics != nil {
		b.config.Metrics.BufferWrites.WithLabelValues(b.config.Name).Inc()
		b.config.Metrics.BufferDepth.WithLabelValues(b.config.Name).Set(float64(depth))
	}
}

// Next blocks until an item is available or the buffer is finished and
// drained. It returns the next item in FIFO order with ok=true, or ok=false
// with a nil error at end-of-sequence. Context cancellation unblocks the wait
// and returns the context's error.
//
// With WaitTimeout configured, a wait that expires before data or finish
// arrives is reported as end-of-sequence.
func (b *Buffer[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	// Cancellation must interrupt the condition wait, not just be noticed on
	// the next wakeup.
	stop := context.AfterFunc(ctx, func() {
		b.mu.Lock()
		b.recvCond.Broadcast()
		b.mu.Unlock()
	})
	defer stop()

	var deadline time.Time
	if b.config.WaitTimeout > 0 {
		deadline = time.Now().Add(b.config.WaitTimeout)
		expire := time.AfterFunc(b.config.WaitTimeout, func() {
			b.mu.Lock()
			b.recvCond.Broadcast()
			b.mu.Unlock()
		})
		defer expire.Stop()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.items) == 0 && !b.finished {
		if err := ctx.Err(); err != nil {
			// Pass along any wakeup this waiter may have absorbed.
			b.recvCond.Signal()
			return zero, false, err
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			b.config.Logger.Debug().Str("buffer", b.config.Name).Msg("wait timed out, ending sequence")
			return zero, false, nil
		}
		b.recvCond.Wait()
	}

	if len(b.items) == 0 {
		// Finished and drained.
		return zero, false, nil
	}

	item := b.items[0]
	b.items[0] = zero // release the reference; ownership moves to the caller
	b.items = b.items[1:]
	if len(b.items) == 0 {
		b.items = nil
	}
	b.stats.Reads++
	depth := len(b.items)
	b.sendCond.Broadcast()

	if b.config.Metrics != nil {
		b.config.Metrics.BufferReads.WithLabelValues(b.config.Name).Inc()
		b.config.Metrics.BufferDepth.WithLabelValues(b.config.Name).Set(float64(depth))
	}

	return item, true, nil
}

// Finish marks the end of production and wakes all waiters. Idempotent.
// Items already queued remain consumable; the sequence ends when they drain.
func (b *Buffer[T]) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.finished = true
	b.config.Logger.Debug().Str("buffer", b.config.Name).Int("queued", len(b.items)).Msg("finished")
	b.recvCond.Broadcast()
	b.sendCond.Broadcast()
}

// Finished reports whether Finish has been called.
func (b *Buffer[T]) Finished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// Len returns the current number of queued items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Stats returns a copy of the buffer's activity counters.
func (b *Buffer[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Snapshot returns the current stats as structured log fields, suitable for
// metrics.Reporter.
func (b *Buffer[T]) Snapshot() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]interface{}{
		"depth":     len(b.items),
		"writes":    b.stats.Writes,
		"reads":     b.stats.Reads,
		"dropped":   b.stats.Dropped,
		"max_depth": b.stats.MaxDepth,
		"finished":  b.finished,
	}
}

// Close implements seq.Source by finishing the buffer. It never fails.
func (b *Buffer[T]) Close() error {
	b.Finish()
	return nil
}
