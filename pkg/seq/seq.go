package seq

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrSequenceClosed is returned when a terminal operation runs on a sequence
// that was already consumed or closed.
var ErrSequenceClosed = errors.New("sequence is closed")

// Source produces elements one at a time. Next blocks until an element is
// available and returns it with ok=true, or ok=false with a nil error at
// end-of-sequence. Errors terminate the sequence.
type Source[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Sequence is a lazy, single-pass pull view over a Source. Intermediate
// operations wrap the source and stay strictly one-element-in-flight: nothing
// is fetched until a terminal operation pulls, and each pull fetches exactly
// one element through the whole chain.
//
// A sequence is consumed by exactly one terminal operation; terminals close
// the source when they return. One consumer per instance.
type Sequence[T any] struct {
	source Source[T]
	closed atomic.Bool
}

// New creates a sequence over the given source.
func New[T any](source Source[T]) *Sequence[T] {
	return &Sequence[T]{source: source}
}

// FromSlice creates a sequence over a slice.
func FromSlice[T any](slice []T) *Sequence[T] {
	return New[T](&sliceSource[T]{slice: slice})
}

// FromChannel creates a sequence draining a channel until it is closed.
func FromChannel[T any](ch <-chan T) *Sequence[T] {
	return New[T](&channelSource[T]{ch: ch})
}

// Empty creates a sequence with no elements.
func Empty[T any]() *Sequence[T] {
	return New[T](emptySource[T]{})
}

// Filter returns a sequence of the elements matching the predicate.
func (s *Sequence[T]) Filter(predicate func(T) bool) *Sequence[T] {
	return New[T](&filterSource[T]{src: s.source, predicate: predicate})
}

// Map returns a sequence of the results of applying mapper to each element.
// For mapping to a different type, use Transform.
func (s *Sequence[T]) Map(mapper func(T) T) *Sequence[T] {
	return New[T](&mapSource[T, T]{src: s.source, mapper: mapper})
}

// Limit returns a sequence truncated to at most n elements. Once the limit is
// reached no further elements are pulled from upstream.
func (s *Sequence[T]) Limit(n int64) *Sequence[T] {
	return New[T](&limitSource[T]{src: s.source, remaining: n})
}

// Skip returns a sequence discarding the first n elements.
func (s *Sequence[T]) Skip(n int64) *Sequence[T] {
	return New[T](&skipSource[T]{src: s.source, pending: n})
}

// Peek returns a sequence that invokes action on each element as it is pulled.
func (s *Sequence[T]) Peek(action func(T)) *Sequence[T] {
	return New[T](&peekSource[T]{src: s.source, action: action})
}

// Transform returns a sequence applying mapper to each element of s,
// producing elements of a different type.
func Transform[From, To any](s *Sequence[From], mapper func(From) To) *Sequence[To] {
	return New[To](&mapSource[From, To]{src: s.source, mapper: mapper})
}

// ForEach pulls every element and invokes action on it.
func (s *Sequence[T]) ForEach(ctx context.Context, action func(T)) error {
	return s.drain(ctx, func(item T) bool {
		action(item)
		return true
	})
}

// Reduce folds the elements into a single value starting from identity.
func (s *Sequence[T]) Reduce(ctx context.Context, identity T, accumulator func(T, T) T) (T, error) {
	result := identity
	err := s.drain(ctx, func(item T) bool {
		result = accumulator(result, item)
		return true
	})
	if err != nil {
		return identity, err
	}
	return result, nil
}

// ToSlice pulls every element into a slice.
func (s *Sequence[T]) ToSlice(ctx context.Context) ([]T, error) {
	var result []T
	err := s.drain(ctx, func(item T) bool {
		result = append(result, item)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Count pulls every element and returns how many there were.
func (s *Sequence[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.drain(ctx, func(T) bool {
		count++
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// First returns the first element, if any, and stops pulling.
func (s *Sequence[T]) First(ctx context.Context) (T, bool, error) {
	var (
		first T
		found bool
	)
	err := s.drain(ctx, func(item T) bool {
		first = item
		found = true
		return false
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return first, found, nil
}

// Close closes the sequence and its source. Terminal operations close
// implicitly; Close is for abandoning a sequence without consuming it.
func (s *Sequence[T]) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.source.Close()
}

// IsClosed reports whether the sequence has been consumed or closed.
func (s *Sequence[T]) IsClosed() bool {
	return s.closed.Load()
}

// drain is the shared terminal loop: pull one element at a time until the
// source ends, an error occurs, or visit asks to stop early.
func (s *Sequence[T]) drain(ctx context.Context, visit func(T) bool) error {
	if s.IsClosed() {
		return ErrSequenceClosed
	}
	defer func() { _ = s.Close() }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, ok, err := s.source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if !visit(item) {
			return nil
		}
	}
}
