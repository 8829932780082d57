/*
Package bridge converts single-shot callback APIs into awaitable one-shot values.

Legacy asynchronous sources (hardware decoders, C-style drivers) report results
by invoking a completion callback once per request. This package turns one such
request into a Completion: the callback side delivers with Complete or Fail,
the consuming side blocks in Await, and the exactly-once contract is enforced
in between.

Basic usage against a callback source:

	frame, err := bridge.Call(ctx, func(c *bridge.Completion[Frame]) {
		decoder.RequestNext(func(f Frame, err error) {
			if err != nil {
				c.MustFail(err)
				return
			}
			c.MustComplete(f)
		})
	})

Contract:
  - Exactly one of Complete or Fail per Completion. A second delivery returns
    ErrAlreadyCompleted (or panics via the Must variants), carrying the request
    id for correlation.
  - Errors from the source propagate to the waiter; they are never swallowed.
  - A waiter that gives up (context cancellation) leaves the Completion valid,
    so a late callback has somewhere safe to land.
  - A source that never delivers leaves Await blocked until its context is
    cancelled. That is the source's bug surfacing, not a hang elsewhere.
*/
package bridge
