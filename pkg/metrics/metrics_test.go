package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	internaltest "github.com/vnykmshr/framepull/internal/testutil"
)

func TestNewRegistryRegistersAllFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.BufferWrites.WithLabelValues("frames").Add(10)
	r.BufferReads.WithLabelValues("frames").Add(8)
	r.BufferDepth.WithLabelValues("frames").Set(2)
	r.PullFetches.WithLabelValues("decoder").Inc()
	r.TasksSpawned.WithLabelValues("main").Add(2)

	internaltest.AssertEqual(t, testutil.ToFloat64(r.BufferWrites.WithLabelValues("frames")), 10)
	internaltest.AssertEqual(t, testutil.ToFloat64(r.BufferReads.WithLabelValues("frames")), 8)
	internaltest.AssertEqual(t, testutil.ToFloat64(r.BufferDepth.WithLabelValues("frames")), 2)
	internaltest.AssertEqual(t, testutil.ToFloat64(r.PullFetches.WithLabelValues("decoder")), 1)
	internaltest.AssertEqual(t, testutil.ToFloat64(r.TasksSpawned.WithLabelValues("main")), 2)
}

func TestSeparateRegistriesAreIsolated(t *testing.T) {
	a := NewRegistry(prometheus.NewRegistry())
	b := NewRegistry(prometheus.NewRegistry())

	a.BufferWrites.WithLabelValues("x").Inc()
	internaltest.AssertEqual(t, testutil.ToFloat64(b.BufferWrites.WithLabelValues("x")), 0)
}
