package seq

import "context"

// sliceSource implements Source for slices.
type sliceSource[T any] struct {
	slice []T
	index int
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if s.index >= len(s.slice) {
		return zero, false, nil
	}
	item := s.slice[s.index]
	s.index++
	return item, true, nil
}

func (s *sliceSource[T]) Close() error {
	return nil
}

// channelSource implements Source for channels.
type channelSource[T any] struct {
	ch <-chan T
}

func (s *channelSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case value, ok := <-s.ch:
		if !ok {
			return zero, false, nil
		}
		return value, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (s *channelSource[T]) Close() error {
	return nil
}

// emptySource implements Source for empty sequences.
type emptySource[T any] struct{}

func (emptySource[T]) Next(context.Context) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (emptySource[T]) Close() error {
	return nil
}

// filterSource pulls from upstream until an element passes the predicate.
type filterSource[T any] struct {
	src       Source[T]
	predicate func(T) bool
}

func (f *filterSource[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		item, ok, err := f.src.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		if f.predicate(item) {
			return item, true, nil
		}
	}
}

func (f *filterSource[T]) Close() error {
	return f.src.Close()
}

// mapSource transforms each upstream element.
type mapSource[From, To any] struct {
	src    Source[From]
	mapper func(From) To
}

func (m *mapSource[From, To]) Next(ctx context.Context) (To, bool, error) {
	item, ok, err := m.src.Next(ctx)
	if err != nil || !ok {
		var zero To
		return zero, false, err
	}
	return m.mapper(item), true, nil
}

func (m *mapSource[From, To]) Close() error {
	return m.src.Close()
}

// limitSource truncates the sequence; exhausted limits never pull upstream.
type limitSource[T any] struct {
	src       Source[T]
	remaining int64
}

func (l *limitSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if l.remaining <= 0 {
		return zero, false, nil
	}
	item, ok, err := l.src.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	l.remaining--
	return item, true, nil
}

func (l *limitSource[T]) Close() error {
	return l.src.Close()
}

// skipSource discards the first n upstream elements.
type skipSource[T any] struct {
	src     Source[T]
	pending int64
}

func (s *skipSource[T]) Next(ctx context.Context) (T, bool, error) {
	for s.pending > 0 {
		_, ok, err := s.src.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		s.pending--
	}
	return s.src.Next(ctx)
}

func (s *skipSource[T]) Close() error {
	return s.src.Close()
}

// peekSource invokes an action on each element without altering it.
type peekSource[T any] struct {
	src    Source[T]
	action func(T)
}

func (p *peekSource[T]) Next(ctx context.Context) (T, bool, error) {
	item, ok, err := p.src.Next(ctx)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	p.action(item)
	return item, true, nil
}

func (p *peekSource[T]) Close() error {
	return p.src.Close()
}
