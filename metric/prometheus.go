package metric

import (
	"strconv"
	"time"

	"github.com/hupe1980/boxtree"
	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels of the latency histogram.
const (
	OpBulkLoad = "bulk_load"
	OpInsert   = "insert"
	OpMerge    = "merge"
	OpQuery    = "query"
	OpClip     = "clip"
)

var _ boxtree.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements boxtree.MetricsCollector on Prometheus
// vectors. One collector may be shared by many trees.
type PrometheusCollector struct {
	latency      *prometheus.HistogramVec
	loadedItems  prometheus.Counter
	inserts      *prometheus.CounterVec
	queries      *prometheus.CounterVec
	visited      *prometheus.CounterVec
	clipPairs    prometheus.Counter
	partitions   *prometheus.CounterVec
	partitionIts prometheus.Histogram
}

// NewPrometheusCollector creates the collector and registers its metrics
// with reg under namespace.
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "boxtree_operation_duration_seconds",
			Help:      "Latency of tree operations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
		loadedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxtree_bulk_loaded_items_total",
			Help:      "Items placed by balanced builds.",
		}),
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxtree_inserts_total",
			Help:      "Single-item inserts by outcome.",
		}, []string{"outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxtree_queries_total",
			Help:      "Queries by kind.",
		}, []string{"kind"}),
		visited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxtree_query_results_total",
			Help:      "Items reported to query visitors, by kind.",
		}, []string{"kind"}),
		clipPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxtree_clip_pairs_total",
			Help:      "Overlapping pairs reported by Clip and SelfClip.",
		}),
		partitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boxtree_partitions_total",
			Help:      "Box partitioner runs by convergence.",
		}, []string{"converged"}),
		partitionIts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "boxtree_partition_iterations",
			Help:      "Lloyd rounds per partitioner run.",
			Buckets:   prometheus.LinearBuckets(1, 4, 16),
		}),
	}

	for _, col := range []prometheus.Collector{
		c.latency, c.loadedItems, c.inserts, c.queries,
		c.visited, c.clipPairs, c.partitions, c.partitionIts,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RecordBulkLoad implements boxtree.MetricsCollector.
func (c *PrometheusCollector) RecordBulkLoad(count int, duration time.Duration) {
	c.latency.WithLabelValues(OpBulkLoad).Observe(duration.Seconds())
	c.loadedItems.Add(float64(count))
}

// RecordInsert implements boxtree.MetricsCollector.
func (c *PrometheusCollector) RecordInsert(split bool, duration time.Duration) {
	c.latency.WithLabelValues(OpInsert).Observe(duration.Seconds())
	outcome := "placed"
	if split {
		outcome = "split"
	}
	c.inserts.WithLabelValues(outcome).Inc()
}

// RecordMerge implements boxtree.MetricsCollector.
func (c *PrometheusCollector) RecordMerge(duration time.Duration) {
	c.latency.WithLabelValues(OpMerge).Observe(duration.Seconds())
}

// RecordQuery implements boxtree.MetricsCollector.
func (c *PrometheusCollector) RecordQuery(kind boxtree.QueryKind, visited int, duration time.Duration) {
	c.latency.WithLabelValues(OpQuery).Observe(duration.Seconds())
	c.queries.WithLabelValues(kind.String()).Inc()
	c.visited.WithLabelValues(kind.String()).Add(float64(visited))
}

// RecordClip implements boxtree.MetricsCollector.
func (c *PrometheusCollector) RecordClip(pairs int, duration time.Duration) {
	c.latency.WithLabelValues(OpClip).Observe(duration.Seconds())
	c.clipPairs.Add(float64(pairs))
}

// RecordPartition implements boxtree.MetricsCollector.
func (c *PrometheusCollector) RecordPartition(converged bool, iterations int) {
	c.partitions.WithLabelValues(strconv.FormatBool(converged)).Inc()
	c.partitionIts.Observe(float64(iterations))
}
