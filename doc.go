// Package boxtree provides a dynamic bounding volume hierarchy for Go.
//
// A Tree stores items of any type, each with an axis-aligned bound in 1 to
// 8 dimensions, and answers overlap queries against them. Nodes hold up to
// a configurable number of slots (the fanout) whose bounds are laid out per
// axis, so every node test is a single pass over contiguous floats.
//
// # Quick Start
//
//	tree, _ := boxtree.New[string](boxtree.WithDimensions(2))
//	tree.Insert("a", []float32{0, 0}, []float32{1, 1})
//	tree.Insert("b", []float32{4, 4}, []float32{5, 6})
//
//	tree.Query([]float32{0.5, 0.5}, []float32{2, 2}, 0, boxtree.Each(func(s *string) {
//	    fmt.Println(*s) // a
//	}))
//
// # Building
//
// Insert places one item at a time: it descends into the child it overlaps
// most and rebuilds a subtree when a node overflows. BulkLoad (and Load)
// builds a balanced tree from many items at once by recursively clustering
// their bounds with k-means:
//
//	tree, _ := boxtree.Load(slices.Values(ids), func(id *int, mins, maxs []float32) {
//	    copy(mins, boxes[*id].Min)
//	    copy(maxs, boxes[*id].Max)
//	})
//
// Merge moves every item of another tree in, Transform moves items in place
// and refits the tree, and Rebuild restores a balanced shape.
//
// # Queries
//
//   - Query: bounds intersecting a box
//   - RayQuery, SegmentQuery: bounds hit by a ray or segment (slab test)
//   - PlanarQuery: bounds straddling a plane
//   - HalfSpaceQuery: bounds reaching into a half-space
//
// Every query takes an eps that dilates the test, so touching and nearly
// touching bounds are reported. Visitors return false to stop early.
//
// # Collisions
//
// Clip reports every overlapping pair between two trees; SelfClip reports
// every overlapping pair of distinct items within one tree exactly once.
// Both walk the trees together instead of querying item by item.
//
// # Concurrency
//
// A Tree is not safe for concurrent mutation. Queries, Iterate and Clip
// only read and may run in parallel with each other.
//
// # Observability
//
// Options attach a structured Logger (log/slog) and a MetricsCollector;
// package metric provides a Prometheus collector.
//
// The node kernels pick a kernel family from the CPU at startup. Set
// BOXTREE_SIMD to "generic", "neon", "avx2" or "avx512" to override.
package boxtree
