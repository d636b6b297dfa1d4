package boxtree

import (
	"sync/atomic"
	"time"
)

// QueryKind identifies the query family in metrics.
type QueryKind uint8

const (
	// QueryRange is an axis-aligned box query.
	QueryRange QueryKind = iota
	// QueryRay is a half-infinite ray query.
	QueryRay
	// QuerySegment is a finite segment query.
	QuerySegment
	// QueryPlanar reports boxes straddling a plane.
	QueryPlanar
	// QueryHalfSpace reports boxes reaching into a half-space.
	QueryHalfSpace

	numQueryKinds
)

// String returns the string representation of a QueryKind.
func (k QueryKind) String() string {
	switch k {
	case QueryRange:
		return "range"
	case QueryRay:
		return "ray"
	case QuerySegment:
		return "segment"
	case QueryPlanar:
		return "planar"
	case QueryHalfSpace:
		return "halfspace"
	default:
		return "unknown"
	}
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; see package metric for a ready-made implementation.
//
// A Tree calls its collector synchronously from the goroutine running the
// operation.
type MetricsCollector interface {
	// RecordBulkLoad is called after each balanced build of count items.
	RecordBulkLoad(count int, duration time.Duration)

	// RecordInsert is called after each insert. split reports whether the
	// insert overflowed and rebuilt a subtree.
	RecordInsert(split bool, duration time.Duration)

	// RecordMerge is called after each merge of two non-empty trees.
	RecordMerge(duration time.Duration)

	// RecordQuery is called after each query with the number of items the
	// visitor was called for.
	RecordQuery(kind QueryKind, visited int, duration time.Duration)

	// RecordClip is called after each Clip or SelfClip with the number of
	// pairs reported.
	RecordClip(pairs int, duration time.Duration)

	// RecordPartition is called after each partitioner run.
	RecordPartition(converged bool, iterations int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBulkLoad(int, time.Duration)         {}
func (NoopMetricsCollector) RecordInsert(bool, time.Duration)          {}
func (NoopMetricsCollector) RecordMerge(time.Duration)                 {}
func (NoopMetricsCollector) RecordQuery(QueryKind, int, time.Duration) {}
func (NoopMetricsCollector) RecordClip(int, time.Duration)             {}
func (NoopMetricsCollector) RecordPartition(bool, int)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BulkLoadCount      atomic.Int64
	BulkLoadItems      atomic.Int64
	InsertCount        atomic.Int64
	SplitCount         atomic.Int64
	InsertTotalNanos   atomic.Int64
	MergeCount         atomic.Int64
	QueryCount         [numQueryKinds]atomic.Int64
	QueryVisited       [numQueryKinds]atomic.Int64
	QueryTotalNanos    atomic.Int64
	ClipCount          atomic.Int64
	ClipPairs          atomic.Int64
	PartitionCount     atomic.Int64
	PartitionStalls    atomic.Int64
	PartitionIterTotal atomic.Int64
}

// RecordBulkLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBulkLoad(count int, _ time.Duration) {
	b.BulkLoadCount.Add(1)
	b.BulkLoadItems.Add(int64(count))
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(split bool, duration time.Duration) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if split {
		b.SplitCount.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(time.Duration) {
	b.MergeCount.Add(1)
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(kind QueryKind, visited int, duration time.Duration) {
	if kind < numQueryKinds {
		b.QueryCount[kind].Add(1)
		b.QueryVisited[kind].Add(int64(visited))
	}
	b.QueryTotalNanos.Add(duration.Nanoseconds())
}

// RecordClip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClip(pairs int, _ time.Duration) {
	b.ClipCount.Add(1)
	b.ClipPairs.Add(int64(pairs))
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(converged bool, iterations int) {
	b.PartitionCount.Add(1)
	b.PartitionIterTotal.Add(int64(iterations))
	if !converged {
		b.PartitionStalls.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		BulkLoadCount:   b.BulkLoadCount.Load(),
		BulkLoadItems:   b.BulkLoadItems.Load(),
		InsertCount:     b.InsertCount.Load(),
		SplitCount:      b.SplitCount.Load(),
		InsertAvgNanos:  avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		MergeCount:      b.MergeCount.Load(),
		ClipCount:       b.ClipCount.Load(),
		ClipPairs:       b.ClipPairs.Load(),
		PartitionCount:  b.PartitionCount.Load(),
		PartitionStalls: b.PartitionStalls.Load(),
	}

	var queries int64
	for k := range numQueryKinds {
		s.QueryCount[k] = b.QueryCount[k].Load()
		s.QueryVisited[k] = b.QueryVisited[k].Load()
		queries += s.QueryCount[k]
	}
	s.QueryAvgNanos = avg(b.QueryTotalNanos.Load(), queries)
	s.PartitionAvgIterations = avg(b.PartitionIterTotal.Load(), s.PartitionCount)

	return s
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BulkLoadCount          int64
	BulkLoadItems          int64
	InsertCount            int64
	SplitCount             int64
	InsertAvgNanos         int64
	MergeCount             int64
	QueryCount             [numQueryKinds]int64
	QueryVisited           [numQueryKinds]int64
	QueryAvgNanos          int64
	ClipCount              int64
	ClipPairs              int64
	PartitionCount         int64
	PartitionStalls        int64
	PartitionAvgIterations int64
}
