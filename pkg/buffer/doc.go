/*
Package buffer provides blocking FIFO queues that expose producer/consumer
handoff as a lazy pull sequence.

The package centralizes one mutex-and-condition primitive and builds two
variants on it:

Buffer is the plain variant. The producer appends with Write (never blocks,
never fails), the consumer drains with Next (blocks until data or finish), and
Finish marks the end of production:

	buf := buffer.New[int]()

	go func() {
		for i := 0; i < 10; i++ {
			buf.Write(i)
		}
		buf.Finish()
	}()

	for {
		item, ok, err := buf.Next(ctx)
		if err != nil || !ok {
			break
		}
		process(item)
	}

Gated adds producer-side backpressure through a caller-supplied admission
predicate. The producer blocks in AwaitWriteGate until the gate opens, then
appends with Add:

	g := buffer.NewGated(buffer.MaxDepth[int](4))

	for i := 0; i < n; i++ {
		if err := g.AwaitWriteGate(ctx); err != nil {
			return err
		}
		if g.Finished() {
			break
		}
		g.Add(i)
	}

Guarantees:
  - FIFO order within one buffer.
  - No item queued before Finish returns is lost; the consumer drains the
    queue before observing end-of-sequence.
  - Waits are unbounded by default. Config.WaitTimeout opts into the timeout
    variant, where an expired consumer wait ends the sequence instead of
    raising an error.

Write-after-finish policy differs by variant and is deliberate: Write accepts
late items (nothing is ever dropped), Add discards them (production stops
cleanly at shutdown). Both count what happened in Stats.

Both variants implement seq.Source, so buffers plug directly into the
sequence operations in pkg/seq.
*/
package buffer
