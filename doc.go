/*
Package framepull bridges callback-driven asynchronous sources into pull-based
sequences drained by concurrent consumer tasks.

Callback bridging (pkg/bridge):
  - Completion: one-shot awaitable value per callback request

Buffering (pkg/buffer):
  - Buffer: blocking FIFO queue as a pull source with finish signaling
  - Gated: producer backpressure through an admission predicate

Sequences (pkg/seq, pkg/ondemand):
  - seq: lazy single-pass pull sequences with functional operations
  - ondemand: unbuffered source fetching one item per pull via a provider

Orchestration (pkg/scope):
  - Scope: structured task spawning with join-all and cooperative stop

Example usage:

	import (
		"github.com/vnykmshr/framepull/pkg/buffer"
		"github.com/vnykmshr/framepull/pkg/scope"
		"github.com/vnykmshr/framepull/pkg/seq"
	)

	buf := buffer.New[int]()
	sc := scope.New(ctx)

	sc.Spawn("producer", func(ctx context.Context) error {
		for i := 0; i < 10; i++ {
			buf.Write(i)
		}
		buf.Finish()
		return nil
	})

	sc.Spawn("consumer", func(ctx context.Context) error {
		sum, err := seq.New[int](buf).
			Reduce(ctx, 0, func(a, b int) int { return a + b })
		// sum == 45
		return err
	})

	err := sc.Wait()
*/
package framepull
