// Package metric exports tree metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	collector, err := metric.NewPrometheusCollector(reg, "myapp")
//	tree, err := boxtree.New[int](boxtree.WithMetricsCollector(collector))
package metric
