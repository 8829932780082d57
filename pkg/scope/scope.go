// Package scope provides a structured-concurrency boundary for producer and
// consumer tasks sharing a sequence.
//
// A Scope tracks every task spawned into it, joins them all in Wait, and
// supports cooperative shutdown through RequestStop. Stop is delivered to
// tasks as cancellation of their context — never through ambient globals — so
// in-flight sequence pulls unwind at their next suspension point.
package scope

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/framepull/pkg/metrics"
)

// ErrStopRequested is the outcome of a scope that was cooperatively stopped.
// It is distinct from task failure and from clean completion so callers can
// log shutdown differently from errors. Tasks may also return it directly to
// report that they unwound because of a stop.
var ErrStopRequested = errors.New("stop requested")

// Config holds configuration for scopes.
type Config struct {
	// Name identifies the scope in logs and metrics.
	Name string

	// Logger receives task lifecycle events. Defaults to a disabled logger.
	Logger zerolog.Logger

	// Metrics is the registry to instrument with. Nil disables instrumentation.
	Metrics *metrics.Registry
}

// DefaultConfig returns a default scope configuration.
func DefaultConfig() Config {
	return Config{
		Name:   "scope",
		Logger: zerolog.Nop(),
	}
}

// Scope is a structured-concurrency boundary. Tasks spawned into a scope
// share one context; the first task failure or an explicit RequestStop
// cancels it, and Wait joins all tasks before returning the outcome.
type Scope struct {
	config Config
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// New creates a scope rooted at parent with default configuration.
func New(parent context.Context) *Scope {
	return NewWithConfig(parent, DefaultConfig())
}

// NewWithConfig creates a scope rooted at parent with the specified
// configuration.
func NewWithConfig(parent context.Context, config Config) *Scope {
	if config.Name == "" {
		config.Name = DefaultConfig().Name
	}
	ctx, cancel := context.WithCancelCause(parent)
	group, ctx := errgroup.WithContext(ctx)
	return &Scope{
		config: config,
		group:  group,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the scope's context. It is cancelled by RequestStop, by the
// first task failure, or by the parent context.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Spawn starts task as a tracked goroutine. The task receives the scope
// context and should return promptly once it is cancelled. A task returning
// a non-nil error (other than a stop-induced one) fails the scope and cancels
// the remaining tasks.
func (s *Scope) Spawn(name string, task func(ctx context.Context) error) {
	s.config.Logger.Debug().Str("scope", s.config.Name).Str("task", name).Msg("task spawned")
	if s.config.Metrics != nil {
		s.config.Metrics.TasksSpawned.WithLabelValues(s.config.Name).Inc()
	}

	s.group.Go(func() error {
		err := task(s.ctx)
		switch {
		case err == nil:
			s.config.Logger.Debug().Str("scope", s.config.Name).Str("task", name).Msg("task completed")
			if s.config.Metrics != nil {
				s.config.Metrics.TasksCompleted.WithLabelValues(s.config.Name).Inc()
			}
			return nil
		case s.stopInduced(err):
			s.config.Logger.Debug().Str("scope", s.config.Name).Str("task", name).Msg("task stopped")
			if s.config.Metrics != nil {
				s.config.Metrics.TasksStopped.WithLabelValues(s.config.Name).Inc()
			}
			return ErrStopRequested
		default:
			s.config.Logger.Error().Str("scope", s.config.Name).Str("task", name).Err(err).Msg("task failed")
			if s.config.Metrics != nil {
				s.config.Metrics.TasksFailed.WithLabelValues(s.config.Name).Inc()
			}
			return err
		}
	})
}

// RequestStop asks every task in the scope to stop by cancelling the scope
// context. Idempotent; safe to call from any goroutine, including tasks.
func (s *Scope) RequestStop() {
	s.config.Logger.Debug().Str("scope", s.config.Name).Msg("stop requested")
	s.cancel(ErrStopRequested)
}

// Wait blocks until every spawned task has returned. It returns nil when all
// tasks completed, ErrStopRequested when the scope was cooperatively stopped,
// or the first task failure otherwise.
func (s *Scope) Wait() error {
	err := s.group.Wait()
	// Release the cause context regardless of outcome.
	s.cancel(nil)

	if err == nil {
		return nil
	}
	if s.stopInduced(err) {
		return ErrStopRequested
	}
	return err
}

// stopInduced reports whether err is the unwinding of a cooperative stop
// rather than a genuine failure.
func (s *Scope) stopInduced(err error) bool {
	if errors.Is(err, ErrStopRequested) {
		return true
	}
	return errors.Is(err, context.Canceled) && errors.Is(context.Cause(s.ctx), ErrStopRequested)
}
