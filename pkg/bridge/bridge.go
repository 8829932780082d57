package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrAlreadyCompleted is returned when a completion is delivered more than once.
// A second delivery is a protocol violation by the item source, not a runtime
// condition a caller can recover from.
var ErrAlreadyCompleted = errors.New("completion already delivered")

// Completion is a one-shot asynchronous value bridging a callback-style
// request to a waiting consumer. It correlates exactly one pending request
// with the continuation that awaits it: the item source delivers via Complete
// or Fail, the consumer blocks in Await.
//
// A Completion must be completed exactly once. It remains valid after the
// waiter abandons it (context cancellation), so a late callback lands in the
// cell instead of crashing; the value is simply never observed.
type Completion[T any] struct {
	id    string
	state int32 // 0 = pending, 1 = delivered
	value T
	err   error
	done  chan struct{}
}

// NewCompletion creates a pending completion for a single request.
func NewCompletion[T any]() *Completion[T] {
	return &Completion[T]{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID returns the request correlation id, for logging and error reports.
func (c *Completion[T]) ID() string {
	return c.id
}

// Complete delivers the value to the waiter. Exactly one of Complete or Fail
// may be called, exactly once; further calls return ErrAlreadyCompleted.
func (c *Completion[T]) Complete(value T) error {
	if !atomic.CompareAndSwapInt32(&c.state, 0, 1) {
		return fmt.Errorf("%w: request %s", ErrAlreadyCompleted, c.id)
	}
	c.value = value
	close(c.done)
	return nil
}

// Fail delivers an error to the waiter instead of a value. Same exactly-once
// contract as Complete.
func (c *Completion[T]) Fail(err error) error {
	if !atomic.CompareAndSwapInt32(&c.state, 0, 1) {
		return fmt.Errorf("%w: request %s", ErrAlreadyCompleted, c.id)
	}
	c.err = err
	close(c.done)
	return nil
}

// MustComplete is Complete for callback adapters that cannot return an error.
// A duplicate delivery panics: the source broke the single-shot contract.
func (c *Completion[T]) MustComplete(value T) {
	if err := c.Complete(value); err != nil {
		panic(err)
	}
}

// MustFail is Fail with the same fail-fast posture as MustComplete.
func (c *Completion[T]) MustFail(failure error) {
	if err := c.Fail(failure); err != nil {
		panic(err)
	}
}

// Await blocks until the completion is delivered or ctx is done. Abandoning a
// wait does not invalidate the completion; the pending callback may still
// deliver later.
func (c *Completion[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the completion is delivered.
func (c *Completion[T]) Done() <-chan struct{} {
	return c.done
}

// Delivered reports whether Complete or Fail has been called.
func (c *Completion[T]) Delivered() bool {
	return atomic.LoadInt32(&c.state) != 0
}

// Start creates a completion and hands it to begin, which must arrange for
// exactly one Complete or Fail to eventually be called, on any goroutine.
// begin must not deliver synchronously-reentrantly on the caller's stack;
// sources that might should hop to their own goroutine first.
func Start[T any](begin func(c *Completion[T])) *Completion[T] {
	c := NewCompletion[T]()
	begin(c)
	return c
}

// Call performs one callback-style request and blocks for its result.
// It is the single-request form of Start followed by Await.
func Call[T any](ctx context.Context, begin func(c *Completion[T])) (T, error) {
	return Start(begin).Await(ctx)
}
