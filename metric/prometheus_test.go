package metric

import (
	"testing"

	"github.com/hupe1980/boxtree"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPrometheusCollector(reg, "test")
	require.NoError(t, err)

	tree, err := boxtree.New[int](boxtree.WithDimensions(1), boxtree.WithFanout(2), boxtree.WithMetricsCollector(c))
	require.NoError(t, err)

	for i := range 6 {
		lo := float32(i * 10)
		tree.Insert(i, []float32{lo}, []float32{lo + 1})
	}

	hits := 0
	tree.Query([]float32{0}, []float32{25}, 0, boxtree.Each(func(*int) { hits++ }))
	tree.PlanarQuery([]float32{1, 10.5}, 0, boxtree.Each(func(*int) {}))

	pairs := 0
	tree.SelfClip(10, boxtree.Pairs(func(_, _ *int) { pairs++ }))

	placed := promtest.ToFloat64(c.inserts.WithLabelValues("placed"))
	split := promtest.ToFloat64(c.inserts.WithLabelValues("split"))
	assert.Equal(t, 6.0, placed+split)
	assert.Positive(t, split)

	assert.Equal(t, 1.0, promtest.ToFloat64(c.queries.WithLabelValues("range")))
	assert.Equal(t, float64(hits), promtest.ToFloat64(c.visited.WithLabelValues("range")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.queries.WithLabelValues("planar")))
	assert.Equal(t, float64(pairs), promtest.ToFloat64(c.clipPairs))
	assert.Positive(t, pairs)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 8)
	assert.Positive(t, promtest.CollectAndCount(c.partitions))
}

func TestPrometheusCollectorBulkLoad(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPrometheusCollector(reg, "")
	require.NoError(t, err)

	seq := func(yield func(int) bool) {
		for i := range 100 {
			if !yield(i) {
				return
			}
		}
	}
	bounds := func(i *int, mins, maxs []float32) {
		mins[0], maxs[0] = float32(*i), float32(*i)+2
	}

	a, err := boxtree.Load(seq, bounds, boxtree.WithDimensions(1), boxtree.WithMetricsCollector(c))
	require.NoError(t, err)
	b, err := boxtree.Load(seq, bounds, boxtree.WithDimensions(1))
	require.NoError(t, err)
	require.NoError(t, a.Merge(b))

	assert.Equal(t, 100.0, promtest.ToFloat64(c.loadedItems))
	assert.Equal(t, 2, promtest.CollectAndCount(c.latency))
}

func TestPrometheusCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusCollector(reg, "dup")
	require.NoError(t, err)

	_, err = NewPrometheusCollector(reg, "dup")
	assert.Error(t, err)

	_, err = NewPrometheusCollector(reg, "other")
	assert.NoError(t, err)
}
