package ondemand

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/vnykmshr/framepull/internal/testutil"
	"github.com/vnykmshr/framepull/pkg/seq"
)

func countingProvider() (Provider[int], *int64) {
	var calls int64
	provider := func(context.Context) (int, error) {
		return int(atomic.AddInt64(&calls, 1) - 1), nil
	}
	return provider, &calls
}

func TestStopAfterYieldsExactlyK(t *testing.T) {
	const k = 10

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	provider, calls := countingProvider()
	src := New(provider, StopAfter(k))

	items, err := seq.New[int](src).ToSlice(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(items), k)
	for i, item := range items {
		testutil.AssertEqual(t, item, i)
	}
	// Exactly one fetch per yielded item, nothing speculative.
	testutil.AssertEqual(t, atomic.LoadInt64(calls), int64(k))
}

func TestStopPredicateEvaluatedBeforeEveryFetch(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	var stopEvals int64
	stop := func(context.Context) (bool, error) {
		return atomic.AddInt64(&stopEvals, 1) > 3, nil
	}
	provider, _ := countingProvider()

	count, err := seq.New[int](New(provider, stop)).Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, int64(3))
	// One evaluation per yielded item plus the terminating one.
	testutil.AssertEqual(t, atomic.LoadInt64(&stopEvals), int64(4))
}

func TestProviderErrorSurfacesAfterKItems(t *testing.T) {
	const k = 4

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	sourceErr := errors.New("decode fault")
	var calls int64
	provider := func(context.Context) (int, error) {
		n := atomic.AddInt64(&calls, 1)
		if n > k {
			return 0, sourceErr
		}
		return int(n - 1), nil
	}

	src := New(provider, Never())
	var items []int
	err := seq.New[int](src).ForEach(ctx, func(item int) {
		items = append(items, item)
	})
	testutil.AssertEqual(t, errors.Is(err, sourceErr), true)
	testutil.AssertEqual(t, len(items), k)
}

func TestStopPredicateErrorSurfaces(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	stopErr := errors.New("predicate fault")
	provider, calls := countingProvider()
	src := New(provider, func(context.Context) (bool, error) {
		return false, stopErr
	})

	_, _, err := src.Next(ctx)
	testutil.AssertEqual(t, errors.Is(err, stopErr), true)
	// A failed stop check fetches nothing.
	testutil.AssertEqual(t, atomic.LoadInt64(calls), int64(0))
}

func TestCloseStopsFurtherPulls(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	provider, _ := countingProvider()
	src := New(provider, Never())

	_, ok, err := src.Next(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, true)

	testutil.AssertNoError(t, src.Close())

	_, ok, err = src.Next(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, false)
}

func TestStoppedSourceStaysStopped(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	provider, calls := countingProvider()
	src := New(provider, StopAfter(0))

	for i := 0; i < 3; i++ {
		_, ok, err := src.Next(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, ok, false)
	}
	testutil.AssertEqual(t, atomic.LoadInt64(calls), int64(0))
}
