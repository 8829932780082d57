/*
Package seq provides lazy, single-pass pull sequences over blocking sources.

A Source hands out one element per Next call; a Sequence composes functional
operations over it. Unlike channel-fan pipelines, every operation here is a
pull decorator: a terminal operation's pull travels up the chain, fetches
exactly one element from the underlying source, and carries it back down. No
element is fetched speculatively, which is what makes sequences safe over
sources whose fetches are expensive or have side effects (decoder requests,
blocking queue reads).

	sum, err := seq.New[int](buf).
		Filter(func(n int) bool { return n%2 == 0 }).
		Map(func(n int) int { return n * 2 }).
		Reduce(ctx, 0, func(a, b int) int { return a + b })

Intermediate operations (Filter, Map, Limit, Skip, Peek, Transform) are lazy
and cheap. Terminal operations (ForEach, Reduce, ToSlice, Count, First) drive
the pulls, consume the sequence, and close the source on return — including
early returns like Limit exhaustion or First, so upstream producers blocked on
the source get released.

Sequences are finite when the source eventually reports end-of-sequence, are
not restartable, and support one consumer per instance.
*/
package seq
