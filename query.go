package boxtree

import (
	"math"
	"math/bits"
	"time"

	"github.com/hupe1980/boxtree/internal/pool"
	"github.com/hupe1980/boxtree/internal/simd"
)

// Query calls visit for every item whose bound intersects [mins, maxs]
// dilated by eps, until visit returns false.
func (t *Tree[T]) Query(mins, maxs []float32, eps float32, visit Visitor[T]) {
	checkLen("query min", mins, t.dims)
	checkLen("query max", maxs, t.dims)

	t.search(QueryRange, func(b simd.Bounds) uint64 {
		return simd.OverlapMask(b, mins, maxs, eps)
	}, visit)
}

// RayQuery calls visit for every item whose bound, dilated by eps, is hit
// by the ray start + t*dir with t >= 0. dir need not be normalized.
func (t *Tree[T]) RayQuery(start, dir []float32, eps float32, visit Visitor[T]) {
	checkLen("ray start", start, t.dims)
	checkLen("ray direction", dir, t.dims)

	inf := float32(math.Inf(1))
	t.search(QueryRay, func(b simd.Bounds) uint64 {
		return simd.SlabMask(b, start, dir, 0, inf, eps)
	}, visit)
}

// SegmentQuery calls visit for every item whose bound, dilated by eps,
// intersects the segment from start to end.
func (t *Tree[T]) SegmentQuery(start, end []float32, eps float32, visit Visitor[T]) {
	checkLen("segment start", start, t.dims)
	checkLen("segment end", end, t.dims)

	dir := make([]float32, t.dims)
	for d := range dir {
		dir[d] = end[d] - start[d]
	}

	t.search(QuerySegment, func(b simd.Bounds) uint64 {
		return simd.SlabMask(b, start, dir, 0, 1, eps)
	}, visit)
}

// PlanarQuery calls visit for every item whose bound straddles the plane
// n·x = w within eps. plane holds D+1 coefficients (n_0, ..., n_{D-1}, w).
func (t *Tree[T]) PlanarQuery(plane []float32, eps float32, visit Visitor[T]) {
	checkLen("plane", plane, t.dims+1)

	t.search(QueryPlanar, func(b simd.Bounds) uint64 {
		return simd.PlaneMask(b, plane, eps)
	}, visit)
}

// HalfSpaceQuery calls visit for every item whose bound reaches into the
// half-space n·x >= w, within eps. plane is given as in PlanarQuery.
func (t *Tree[T]) HalfSpaceQuery(plane []float32, eps float32, visit Visitor[T]) {
	checkLen("plane", plane, t.dims+1)

	t.search(QueryHalfSpace, func(b simd.Bounds) uint64 {
		return simd.HalfSpaceMask(b, plane, eps)
	}, visit)
}

// search walks every child selected by mask, depth first with lower slots
// first, and calls visit for every selected item.
func (t *Tree[T]) search(kind QueryKind, mask func(simd.Bounds) uint64, visit Visitor[T]) {
	start := time.Now()
	visited := 0

	ctx := pool.Get(t.dims)
	defer pool.Put(ctx)

	mins, maxs := ctx.CurrentBox(0)
	ctx.Push(t.root)

walk:
	for {
		r, ok := ctx.Pop()
		if !ok {
			break
		}

		n := t.nodes[r]
		m := mask(t.view(n))

		if n.leaf {
			for m != 0 {
				i := bits.TrailingZeros64(m)
				m &= m - 1

				t.slot(n, i, mins, maxs)
				visited++
				if !visit(&n.items[i], mins, maxs) {
					break walk
				}
			}
			continue
		}

		for m != 0 {
			i := 63 - bits.LeadingZeros64(m)
			m &^= 1 << uint(i) //nolint:gosec // i < 64
			ctx.Push(n.children[i])
		}
	}

	t.metrics.RecordQuery(kind, visited, time.Since(start))
}
