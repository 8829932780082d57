// Package ondemand provides a pull sequence source with no internal buffer:
// each pull first consults a stop predicate, then fetches exactly one item
// from a provider, blocking until it arrives.
//
// The provider is typically a callback-style source adapted through
// pkg/bridge, so every pull is one full round trip to the underlying
// asynchronous source. Pulls are strictly sequential; there is never more
// than one fetch in flight per source instance.
package ondemand

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/framepull/pkg/metrics"
)

// Provider fetches one item, blocking until the underlying source delivers.
// It is invoked at most once per consumer pull — never speculatively.
type Provider[T any] func(ctx context.Context) (T, error)

// StopFunc decides whether the sequence should terminate. It is evaluated
// before every fetch; once it reports true the sequence is over and the
// provider is not called again.
type StopFunc func(ctx context.Context) (bool, error)

// StopAfter returns a StopFunc that terminates the sequence after n fetches.
func StopAfter(n int) StopFunc {
	var evaluations int64
	return func(context.Context) (bool, error) {
		return atomic.AddInt64(&evaluations, 1) > int64(n), nil
	}
}

// Never returns a StopFunc that never terminates the sequence. Pair it with
// context cancellation or Limit on the consuming sequence.
func Never() StopFunc {
	return func(context.Context) (bool, error) {
		return false, nil
	}
}

// Config holds configuration for on-demand sources.
type Config struct {
	// Name identifies the source in logs and metrics.
	Name string

	// Logger receives pull tracing. Defaults to a disabled logger.
	Logger zerolog.Logger

	// Metrics is the registry to instrument with. Nil disables instrumentation.
	Metrics *metrics.Registry
}

// DefaultConfig returns a default on-demand configuration.
func DefaultConfig() Config {
	return Config{
		Name:   "ondemand",
		Logger: zerolog.Nop(),
	}
}

// Source is an on-demand pull source implementing seq.Source. Each Next
// evaluates the stop predicate and, if the sequence continues, performs one
// blocking fetch through the provider.
type Source[T any] struct {
	config   Config
	provider Provider[T]
	stop     StopFunc

	mu      sync.Mutex // serializes pulls; one fetch in flight at a time
	stopped bool
}

// New creates an on-demand source with default configuration.
func New[T any](provider Provider[T], stop StopFunc) *Source[T] {
	return NewWithConfig(provider, stop, DefaultConfig())
}

// NewWithConfig creates an on-demand source with the specified configuration.
func NewWithConfig[T any](provider Provider[T], stop StopFunc, config Config) *Source[T] {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	return &Source[T]{
		config:   config,
		provider: provider,
		stop:     stop,
	}
}

// Next performs one pull: evaluate the stop predicate, and if the sequence
// continues, fetch one item. A stop predicate error or provider error
// terminates the pull loop and surfaces to the consumer.
func (s *Source[T]) Next(ctx context.Context) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.stopped {
		return zero, false, nil
	}

	done, err := s.stop(ctx)
	if err != nil {
		s.countError()
		return zero, false, err
	}
	if done {
		s.stopped = true
		s.config.Logger.Debug().Str("source", s.config.Name).Msg("stop predicate reached")
		if s.config.Metrics != nil {
			s.config.Metrics.PullStops.WithLabelValues(s.config.Name).Inc()
		}
		return zero, false, nil
	}

	item, err := s.provider(ctx)
	if err != nil {
		s.countError()
		return zero, false, err
	}

	if s.config.Metrics != nil {
		s.config.Metrics.PullFetches.WithLabelValues(s.config.Name).Inc()
	}
	return item, true, nil
}

// Close marks the source stopped; subsequent pulls report end-of-sequence.
func (s *Source[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *Source[T]) countError() {
	if s.config.Metrics != nil {
		s.config.Metrics.PullErrors.WithLabelValues(s.config.Name).Inc()
	}
}
