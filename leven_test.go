package leven

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canisaugustinus/latin-leven/cost"
	"github.com/canisaugustinus/latin-leven/model"
	"github.com/canisaugustinus/latin-leven/testutil"
)

func catCabDog() []model.Sequence {
	return []model.Sequence{
		model.MustInts(0, 1, 2), // cat
		model.MustInts(0, 1, 3), // cab
		model.MustInts(4, 5, 6), // dog
	}
}

func scoresOf(rs []Result) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.Score
	}
	return out
}

func indicesOf(rs []Result) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Index
	}
	return out
}

func TestIndex_EndToEnd(t *testing.T) {
	idx, err := New(catCabDog(), cost.Uniform(1), WithWorkers(2))
	require.NoError(t, err)
	query := model.MustInts(0, 1, 2)

	for _, best := range []func(context.Context, model.Sequence, ...SearchOption) (Result, error){idx.SearchBest, idx.SearchBestParallel} {
		r, err := best(t.Context(), query)
		require.NoError(t, err)
		assert.Equal(t, model.MustInts(0, 1, 2), r.Sequence)
		assert.Equal(t, 0, r.Index)
		assert.Zero(t, r.Score)
	}

	for _, search := range []func(context.Context, model.Sequence, int, ...SearchOption) ([]Result, error){idx.Search, idx.SearchParallel} {
		rs, err := search(t.Context(), query, 2)
		require.NoError(t, err)
		require.Len(t, rs, 2)
		assert.Equal(t, model.MustInts(0, 1, 2), rs[0].Sequence)
		assert.Equal(t, model.MustInts(0, 1, 3), rs[1].Sequence)
		assert.Equal(t, []float64{0, 1}, scoresOf(rs))
	}
}

func TestIndex_MatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for round := range 25 {
		cfg := rng.Costs(true)
		matrix := rng.Matrix(5)
		dict := rng.Sequences(1+rng.Intn(200), 1, 8, 7)

		idx, err := New(dict, cfg, WithCostMatrix(matrix), WithWorkers(1+rng.Intn(6)))
		require.NoError(t, err)

		query := rng.Mutate(dict[rng.Intn(len(dict))], 3, 7)
		k := 1 + rng.Intn(15)
		want := testutil.BruteForceTopK(query, dict, k, idx.Distance)

		seq, err := idx.Search(t.Context(), query, k)
		require.NoError(t, err)
		par, err := idx.SearchParallel(t.Context(), query, k)
		require.NoError(t, err)

		assert.Equal(t, testutil.Scores(want), scoresOf(seq), "round %d", round)
		assert.Equal(t, testutil.Indices(want), indicesOf(seq), "round %d", round)
		assert.Equal(t, scoresOf(seq), scoresOf(par), "round %d", round)
		assert.Equal(t, indicesOf(seq), indicesOf(par), "round %d", round)
	}
}

func TestIndex_Identity(t *testing.T) {
	rng := testutil.NewRNG(5)
	dict := rng.Sequences(50, 0, 9, 6)
	idx, err := New(dict, cost.DefaultConfig(), WithCostMatrix(rng.Matrix(6)))
	require.NoError(t, err)

	for _, s := range dict {
		assert.Zero(t, idx.Distance(s, s))
		best, err := idx.SearchBest(t.Context(), s)
		require.NoError(t, err)
		assert.Zero(t, best.Score)
	}
}

func TestIndex_Clamp(t *testing.T) {
	idx, err := New(catCabDog(), cost.Uniform(1))
	require.NoError(t, err)
	q := model.MustInts(4, 5)

	zero, err := idx.Search(t.Context(), q, 0)
	require.NoError(t, err)
	one, err := idx.Search(t.Context(), q, 1)
	require.NoError(t, err)
	assert.Equal(t, one, zero)

	over, err := idx.SearchParallel(t.Context(), q, idx.Len()+100)
	require.NoError(t, err)
	all, err := idx.SearchParallel(t.Context(), q, idx.Len())
	require.NoError(t, err)
	assert.Equal(t, all, over)
	assert.Len(t, over, 3)
}

func TestIndex_EmptyDictionary(t *testing.T) {
	idx, err := New(nil, cost.Uniform(1))
	require.NoError(t, err)

	rs, err := idx.Search(t.Context(), model.MustInts(1), 3)
	require.NoError(t, err)
	assert.NotNil(t, rs)
	assert.Empty(t, rs)

	rs, err = idx.SearchParallel(t.Context(), model.MustInts(1), 3)
	require.NoError(t, err)
	assert.Empty(t, rs)

	_, err = idx.SearchBest(t.Context(), model.MustInts(1))
	assert.ErrorIs(t, err, ErrEmptyResult)
	_, err = idx.SearchBestParallel(t.Context(), model.MustInts(1))
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestIndex_InvalidConfiguration(t *testing.T) {
	cfg := cost.Uniform(1)
	cfg.Delete = -1
	_, err := New(catCabDog(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	var nc *ErrNegativeCost
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, "delete", nc.Field)

	keyed := cost.Uniform(1)
	keyed.KeyCost = true
	_, err = New(catCabDog(), keyed, WithCostMatrix(cost.Matrix{{0, -2}, {1, 0}}))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = New(catCabDog(), cost.Uniform(1), WithWorkers(-1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	var optErr *ErrInvalidOption
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "workers", optErr.Name)

	_, err = New(catCabDog(), cost.Uniform(1), WithResultCache(-1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestIndex_KeyCostFallback(t *testing.T) {
	cfg := cost.Config{Replace: 4, Insert: 9, Append: 9, Delete: 9, Transpose: 9, KeyCost: true}
	matrix := cost.Matrix{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	}
	idx, err := New([]model.Sequence{model.MustInts(6), model.MustInts(2)}, cfg, WithCostMatrix(matrix))
	require.NoError(t, err)

	assert.InDelta(t, 4, idx.Distance(model.MustInts(5), model.MustInts(6)), 1e-9)

	rs, err := idx.Search(t.Context(), model.MustInts(0), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, indicesOf(rs))
	assert.Equal(t, []float64{1, 4}, scoresOf(rs))
}

func TestIndex_EntriesAreCopied(t *testing.T) {
	keys := catCabDog()
	idx, err := New(keys, cost.Uniform(1))
	require.NoError(t, err)

	keys[0][0] = 9
	assert.Equal(t, model.MustInts(0, 1, 2), idx.Entry(0))

	r, err := idx.SearchBest(t.Context(), model.MustInts(0, 1, 2))
	require.NoError(t, err)
	r.Sequence[0] = 7
	assert.Equal(t, model.MustInts(0, 1, 2), idx.Entry(0))
}

func TestIndex_Filter(t *testing.T) {
	idx, err := New(catCabDog(), cost.Uniform(1))
	require.NoError(t, err)
	q := model.MustInts(0, 1, 2)

	rs, err := idx.SearchParallel(t.Context(), q, 3, WithPositions(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indicesOf(rs))

	_, err = idx.SearchBest(t.Context(), q, WithPositions())
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestIndex_ResultCache(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	idx, err := New(catCabDog(), cost.Uniform(1), WithResultCache(1<<20), WithMetricsCollector(metrics))
	require.NoError(t, err)
	q := model.MustInts(0, 1, 3)

	first, err := idx.Search(t.Context(), q, 2)
	require.NoError(t, err)
	second, err := idx.SearchParallel(t.Context(), q, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = idx.Search(t.Context(), q, 2, WithoutCache())
	require.NoError(t, err)
	_, err = idx.Search(t.Context(), q, 2, WithPositions(0))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, int64(4), stats.SearchCount)
	assert.Equal(t, int64(1), stats.ParallelSearchCount)
	assert.Zero(t, stats.SearchErrors)
}

func TestIndex_Close(t *testing.T) {
	idx, err := New(catCabDog(), cost.Uniform(1), WithResultCache(1024))
	require.NoError(t, err)

	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	_, err = idx.Search(t.Context(), model.MustInts(1), 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = idx.SearchBestParallel(t.Context(), model.MustInts(1))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestIndex_FailFast(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	idx, err := New(catCabDog(), cost.Uniform(1),
		WithSearchRateLimit(1, 1),
		WithFailFast(),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	_, err = idx.Search(t.Context(), model.MustInts(1), 1)
	require.NoError(t, err)

	_, err = idx.Search(t.Context(), model.MustInts(1), 1)
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.Equal(t, int64(1), metrics.GetStats().SearchErrors)
}

func TestIndex_Cancelled(t *testing.T) {
	rng := testutil.NewRNG(3)
	idx, err := New(rng.Sequences(64, 1, 5, 5), cost.Uniform(1), WithMaxConcurrentSearches(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = idx.SearchParallel(ctx, model.MustInts(1), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndex_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(NewCharmHandler(&buf, slog.LevelDebug, log.JSONFormatter))

	idx, err := New(catCabDog(), cost.Uniform(1), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "index built")

	_, err = idx.Search(t.Context(), model.MustInts(0), 1)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "search completed")
	assert.Contains(t, buf.String(), "sequential")
	assert.NotContains(t, buf.String(), "parallel")

	_, err = idx.SearchParallel(t.Context(), model.MustInts(0), 2)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "parallel")
	assert.Contains(t, buf.String(), `"k"`)

	require.NoError(t, idx.Close())
	_, _ = idx.Search(t.Context(), model.MustInts(0), 1)
	assert.Contains(t, buf.String(), "search failed")
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "sequential", Sequential.String())
	assert.Equal(t, "parallel", Parallel.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func BenchmarkIndex_Search(b *testing.B) {
	rng := testutil.NewRNG(42)
	dict := rng.Sequences(50000, 3, 12, 26)
	idx, err := New(dict, cost.DefaultConfig())
	require.NoError(b, err)
	q := rng.Sequence(5, 8, 26)

	b.Run("Sequential", func(b *testing.B) {
		for b.Loop() {
			_, _ = idx.Search(context.Background(), q, 10)
		}
	})
	b.Run("Parallel", func(b *testing.B) {
		for b.Loop() {
			_, _ = idx.SearchParallel(context.Background(), q, 10)
		}
	})
}
