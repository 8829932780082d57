package scope

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/framepull/internal/testutil"
)

func TestWaitJoinsAllTasks(t *testing.T) {
	sc := New(context.Background())

	var completed int64
	for i := 0; i < 5; i++ {
		sc.Spawn("worker", func(context.Context) error {
			atomic.AddInt64(&completed, 1)
			return nil
		})
	}

	testutil.AssertNoError(t, sc.Wait())
	testutil.AssertEqual(t, atomic.LoadInt64(&completed), int64(5))
}

func TestTaskFailurePropagates(t *testing.T) {
	sc := New(context.Background())

	taskErr := errors.New("task exploded")
	sc.Spawn("failing", func(context.Context) error {
		return taskErr
	})

	err := sc.Wait()
	testutil.AssertEqual(t, errors.Is(err, taskErr), true)
}

func TestFailureCancelsSiblings(t *testing.T) {
	sc := New(context.Background())

	taskErr := errors.New("first failure")
	unblocked := make(chan struct{})

	sc.Spawn("blocked", func(ctx context.Context) error {
		<-ctx.Done()
		close(unblocked)
		return ctx.Err()
	})
	sc.Spawn("failing", func(context.Context) error {
		return taskErr
	})

	err := sc.Wait()
	testutil.AssertEqual(t, errors.Is(err, taskErr), true)

	select {
	case <-unblocked:
	default:
		t.Fatal("sibling task was not cancelled")
	}
}

func TestRequestStopUnwindsTasks(t *testing.T) {
	sc := New(context.Background())

	sc.Spawn("looping", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	go func() {
		time.Sleep(10 * time.Millisecond)
		sc.RequestStop()
	}()

	err := sc.Wait()
	// Stop is a distinct outcome, neither clean completion nor failure.
	testutil.AssertEqual(t, errors.Is(err, ErrStopRequested), true)
}

func TestTaskMayReportStopDirectly(t *testing.T) {
	sc := New(context.Background())

	sc.Spawn("self-stopping", func(ctx context.Context) error {
		sc.RequestStop()
		return ErrStopRequested
	})

	err := sc.Wait()
	testutil.AssertEqual(t, errors.Is(err, ErrStopRequested), true)
}

func TestRequestStopIdempotent(t *testing.T) {
	sc := New(context.Background())
	sc.Spawn("task", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	sc.RequestStop()
	sc.RequestStop()
	testutil.AssertEqual(t, errors.Is(sc.Wait(), ErrStopRequested), true)
}

func TestParentCancellationStopsScope(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sc := New(parent)

	sc.Spawn("task", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cancel()
	err := sc.Wait()
	// Parent cancellation is not a cooperative stop of this scope.
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, errors.Is(err, ErrStopRequested), false)
}

func TestContextExposed(t *testing.T) {
	sc := New(context.Background())
	testutil.AssertNoError(t, sc.Context().Err())
	sc.RequestStop()
	testutil.AssertError(t, sc.Context().Err())
	testutil.AssertNoError(t, func() error {
		err := sc.Wait()
		if errors.Is(err, ErrStopRequested) {
			return nil
		}
		return err
	}())
}
