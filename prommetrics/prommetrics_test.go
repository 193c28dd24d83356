package prommetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leven "github.com/canisaugustinus/latin-leven"
	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/model"
)

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	require.NoError(t, c.Register(reg))

	err := c.Register(reg)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}

func TestCollector_RecordSearch(t *testing.T) {
	c := New()

	c.RecordSearch(leven.SearchStats{Mode: leven.Sequential, Visited: 10, Pruned: 7}, time.Millisecond, nil)
	c.RecordSearch(leven.SearchStats{Mode: leven.Parallel, Visited: 5, Pruned: 1}, time.Millisecond, nil)
	c.RecordSearch(leven.SearchStats{Mode: leven.Parallel}, 0, leven.ErrResourceExhausted)
	c.RecordSearch(leven.SearchStats{Mode: leven.Parallel}, 0, context.Canceled)
	c.RecordSearch(leven.SearchStats{Mode: leven.Sequential}, 0, errors.New("boom"))

	assert.InDelta(t, 1, promtest.ToFloat64(c.searches.WithLabelValues("sequential", OutcomeOK)), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(c.searches.WithLabelValues("parallel", OutcomeOK)), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(c.searches.WithLabelValues("parallel", OutcomeExhausted)), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(c.searches.WithLabelValues("parallel", OutcomeCanceled)), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(c.searches.WithLabelValues("sequential", OutcomeError)), 0)
	assert.InDelta(t, 15, promtest.ToFloat64(c.visited), 0)
	assert.InDelta(t, 8, promtest.ToFloat64(c.pruned), 0)
	assert.Equal(t, 2, promtest.CollectAndCount(c.searchDuration))
}

func TestCollector_WithIndex(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New()
	require.NoError(t, c.Register(reg))

	dict := []model.Sequence{model.MustInts(0, 1, 2), model.MustInts(0, 1, 3), model.MustInts(4, 5, 6)}
	idx, err := leven.New(dict, cost.Uniform(1), leven.WithMetricsCollector(c), leven.WithResultCache(1<<16))
	require.NoError(t, err)
	c.SetEntries(idx.Len())

	for range 3 {
		_, err := idx.Search(t.Context(), model.MustInts(0, 1), 2)
		require.NoError(t, err)
	}

	assert.InDelta(t, 3, promtest.ToFloat64(c.searches.WithLabelValues("sequential", OutcomeOK)), 0)
	assert.InDelta(t, 2, promtest.ToFloat64(c.cache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(c.cache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 3, promtest.ToFloat64(c.visited), 0)
	assert.InDelta(t, 3, promtest.ToFloat64(c.entries), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "leven_searches_total")
	assert.Contains(t, names, "leven_cache_requests_total")
}
