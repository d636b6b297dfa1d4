package boxtree

import (
	"iter"
	"log/slog"
)

// BVH creates a tree builder for the given number of dimensions.
//
// The builder is immutable: each method returns a new builder with the
// updated configuration, so a partially configured builder can be shared.
//
// Example:
//
//	tree, err := boxtree.BVH[string](2).
//	    Fanout(8).
//	    Metrics(collector).
//	    Build()
func BVH[T any](dimensions int) Builder[T] {
	return Builder[T]{
		dimensions: dimensions,
		fanout:     DefaultFanout,
	}
}

// Builder is an immutable fluent builder for trees.
type Builder[T any] struct {
	dimensions int
	fanout     int
	logger     *Logger
	metrics    MetricsCollector
}

// Fanout sets the node capacity (2..64).
func (b Builder[T]) Fanout(k int) Builder[T] {
	b.fanout = k
	return b
}

// Logger sets the structured logger.
func (b Builder[T]) Logger(logger *Logger) Builder[T] {
	b.logger = logger
	return b
}

// LogLevel sets a text logger writing to stderr at the given level.
func (b Builder[T]) LogLevel(level slog.Level) Builder[T] {
	b.logger = NewTextLogger(level)
	return b
}

// Metrics sets the metrics collector.
func (b Builder[T]) Metrics(mc MetricsCollector) Builder[T] {
	b.metrics = mc
	return b
}

func (b Builder[T]) options() []Option {
	return []Option{
		WithDimensions(b.dimensions),
		WithFanout(b.fanout),
		WithLogger(b.logger),
		WithMetricsCollector(b.metrics),
	}
}

// Build creates an empty tree.
func (b Builder[T]) Build() (*Tree[T], error) {
	return New[T](b.options()...)
}

// Load creates a tree bulk-loaded with the items of seq.
func (b Builder[T]) Load(seq iter.Seq[T], bounds BoundsFunc[T]) (*Tree[T], error) {
	return Load(seq, bounds, b.options()...)
}
