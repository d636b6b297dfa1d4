package boxtree

import (
	"log/slog"
)

const (
	// DefaultDimensions is the number of axes of a tree created without WithDimensions.
	DefaultDimensions = 3
	// DefaultFanout is the node capacity of a tree created without WithFanout.
	DefaultFanout = 16

	// MaxDimensions is the largest supported number of axes.
	MaxDimensions = 8
	// MaxFanout is the largest supported node capacity; child masks are uint64.
	MaxFanout = 64
)

type options struct {
	dims             int
	fanout           int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Tree.
type Option func(*options)

// WithDimensions sets the number of axes D (1 to MaxDimensions).
func WithDimensions(d int) Option {
	return func(o *options) {
		o.dims = d
	}
}

// WithFanout sets the node capacity K (2 to MaxFanout): the maximum number
// of items in a leaf and of children in a branch.
//
// Larger fanouts give shallower trees and wider per-node kernels; smaller
// fanouts split more often on insert.
func WithFanout(k int) Option {
	return func(o *options) {
		o.fanout = k
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &boxtree.BasicMetricsCollector{}
//	tree, _ := boxtree.New[int](boxtree.WithMetricsCollector(metrics))
//	// ... use tree ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, splits: %d\n", stats.InsertCount, stats.SplitCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := boxtree.NewJSONLogger(slog.LevelDebug)
//	tree, _ := boxtree.New[int](boxtree.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := options{
		dims:             DefaultDimensions,
		fanout:           DefaultFanout,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.dims < 1 || o.dims > MaxDimensions {
		return o, &ErrInvalidDimension{Dimension: o.dims, cause: ErrOutOfRange}
	}
	if o.fanout < 2 || o.fanout > MaxFanout {
		return o, &ErrInvalidFanout{Fanout: o.fanout, cause: ErrOutOfRange}
	}

	return o, nil
}
