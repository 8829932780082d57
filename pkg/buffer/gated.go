package buffer

import (
	"context"
)

// WriteGate is an admission predicate over the currently queued items.
// It must be a pure function of the slice it is given: the gate is evaluated
// under the buffer lock on every recheck, so it must not block, mutate the
// slice, or retain it.
type WriteGate[T any] func(queued []T) bool

// MaxDepth returns a gate that admits writes while fewer than n items are
// queued.
func MaxDepth[T any](n int) WriteGate[T] {
	return func(queued []T) bool {
		return len(queued) < n
	}
}

// Gated is a Buffer with producer-side backpressure. The producer blocks in
// AwaitWriteGate until the gate predicate admits a write or the buffer is
// finished, then appends with Add.
//
// Admission is advisory: between the gate opening and the Add, another writer
// could race in. The design assumes a single producer per instance; multiple
// producers need external serialization.
//
// Unlike Write, Add silently discards items once the buffer is finished.
// The two policies are deliberate: the plain buffer favors losing nothing,
// the gated producer favors a clean cut at shutdown.
type Gated[T any] struct {
	*Buffer[T]
	gate WriteGate[T]
}

// NewGated creates a gated buffer with default configuration.
func NewGated[T any](gate WriteGate[T]) *Gated[T] {
	return NewGatedWithConfig(gate, DefaultConfig())
}

// NewGatedWithConfig creates a gated buffer with the specified configuration.
func NewGatedWithConfig[T any](gate WriteGate[T], config Config) *Gated[T] {
	return &Gated[T]{
		Buffer: NewWithConfig[T](config),
		gate:   gate,
	}
}

// AwaitWriteGate blocks until the gate admits a write or the buffer is
// finished. On a nil return, the gate predicate held (or finish was observed)
// on the queue contents at the moment of waking, under the lock. Context
// cancellation unblocks the wait and returns the context's error.
func (g *Gated[T]) AwaitWriteGate(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		g.mu.Lock()
		g.sendCond.Broadcast()
		g.mu.Unlock()
	})
	defer stop()

	g.mu.Lock()
	defer g.mu.Unlock()

	waited := false
	for !g.gate(g.items) && !g.finished {
		if err := ctx.Err(); err != nil {
			return err
		}
		waited = true
		g.sendCond.Wait()
	}

	if waited {
		g.stats.GateWaits++
		if g.config.Metrics != nil {
			g.config.Metrics.GateWaits.WithLabelValues(g.config.Name).Inc()
		}
	}
	return nil
}

// Add appends an item unless the buffer is finished, in which case the item
// is silently discarded (counted in Stats.Dropped). Like Write, it never
// blocks; pair it with AwaitWriteGate for backpressure.
func (g *Gated[T]) Add(item T) {
	g.mu.Lock()
	if g.finished {
		g.stats.Dropped++
		g.config.Logger.Debug().Str("buffer", g.config.Name).Msg("add after finish discarded")
		g.mu.Unlock()

		if g.config.Metrics != nil {
			g.config.Metrics.BufferDropped.WithLabelValues(g.config.Name).Inc()
		}
		return
	}

	g.items = append(g.items, item)
	g.stats.Writes++
	if len(g.items) > g.stats.MaxDepth {
		g.stats.MaxDepth = len(g.items)
	}
	depth := len(g.items)
	g.recvCond.Signal()
	g.sendCond.Broadcast()
	g.mu.Unlock()

	if g.config.Metrics != nil {
		g.config.Metrics.BufferWrites.WithLabelValues(g.config.Name).Inc()
		g.config.Metrics.BufferDepth.WithLabelValues(g.config.Name).Set(float64(depth))
	}
}
