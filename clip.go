package boxtree

import (
	"math/bits"
	"time"

	"github.com/hupe1980/boxtree/internal/pool"
	"github.com/hupe1980/boxtree/internal/simd"
)

// clipStepRatio decides which side of a branch pair to descend: a side is
// opened when its surface area is at least this fraction of the other's.
const clipStepRatio = 0.75

// ClipFunc receives an overlapping item pair and both bounds. The bound
// slices are only valid during the call. Returning false stops the
// enumeration.
type ClipFunc[T, U any] func(a *T, b *U, aMins, aMaxs, bMins, bMaxs []float32) bool

// Pairs adapts a function that visits every pair to a ClipFunc.
func Pairs[T, U any](fn func(a *T, b *U)) ClipFunc[T, U] {
	return func(a *T, b *U, _, _, _, _ []float32) bool {
		fn(a, b)
		return true
	}
}

// Clip calls fn for every pair of an item of lhs and an item of rhs whose
// bounds intersect, the lhs bound dilated by eps. Both trees must have the
// same dimensions; fanouts may differ.
//
// The trees are walked together. Branch pairs of similar surface area are
// opened on both sides, otherwise only the larger side is opened, so the
// work stays close to the number of overlapping node pairs.
func Clip[T, U any](lhs *Tree[T], rhs *Tree[U], eps float32, fn ClipFunc[T, U]) error {
	if lhs.dims != rhs.dims {
		return incompatible("dimensions", lhs.dims, rhs.dims)
	}

	start := time.Now()
	pairs := clip(lhs, rhs, eps, fn, false)
	lhs.metrics.RecordClip(pairs, time.Since(start))

	return nil
}

// SelfClip calls fn once for every unordered pair of distinct items whose
// bounds intersect within eps.
func (t *Tree[T]) SelfClip(eps float32, fn ClipFunc[T, T]) {
	start := time.Now()
	pairs := clip(t, t, eps, fn, true)
	t.metrics.RecordClip(pairs, time.Since(start))
}

// clip enumerates overlapping item pairs and returns how many were
// reported. With self set, lhs and rhs are the same tree and a frame
// holding the same node twice only pairs slot i with slots j >= i (branch)
// or j > i (leaf).
func clip[T, U any](lhs *Tree[T], rhs *Tree[U], eps float32, fn ClipFunc[T, U], self bool) int {
	if lhs.Empty() || rhs.Empty() {
		return 0
	}

	dims := lhs.dims
	ctx := pool.Get(dims)
	defer pool.Put(ctx)

	buf := make([]float32, 4*dims)
	aMin, aMax := buf[0:dims], buf[dims:2*dims]
	bMin, bMax := buf[2*dims:3*dims], buf[3*dims:]

	lhs.nodeBounds(lhs.root, aMin, aMax)
	rhs.nodeBounds(rhs.root, bMin, bMax)
	ctx.PushFrame(pool.Frame{LHS: lhs.root, RHS: rhs.root}, aMin, aMax, bMin, bMax)

	pairs := 0
	for {
		f, ok := ctx.PopFrame()
		if !ok {
			return pairs
		}

		ln, rn := lhs.nodes[f.LHS], rhs.nodes[f.RHS]
		if ln.count == 0 || rn.count == 0 {
			continue
		}

		sameNode := self && f.LHS == f.RHS
		lMin, lMax := ctx.CurrentBox(0)
		rMin, rMax := ctx.CurrentBox(1)

		leaves := ln.leaf || rn.leaf
		var stepL, stepR bool
		if leaves {
			stepL, stepR = rn.leaf, ln.leaf
		} else {
			lSA := simd.SurfaceArea(lMin, lMax)
			rSA := simd.SurfaceArea(rMin, rMax)
			stepL = lSA >= rSA*clipStepRatio
			stepR = rSA >= lSA*clipStepRatio
		}

		switch {
		case stepL && stepR && leaves:
			for i := range ln.count {
				lhs.slot(ln, i, aMin, aMax)
				m := simd.OverlapMask(rhs.view(rn), aMin, aMax, eps)
				if sameNode {
					m &^= simd.LowMask(i + 1)
				}

				for m != 0 {
					j := bits.TrailingZeros64(m)
					m &= m - 1

					rhs.slot(rn, j, bMin, bMax)
					pairs++
					if !fn(&ln.items[i], &rn.items[j], aMin, aMax, bMin, bMax) {
						return pairs
					}
				}
			}

		case stepL && stepR:
			for i := range ln.count {
				lhs.slot(ln, i, aMin, aMax)
				m := simd.OverlapMask(rhs.view(rn), aMin, aMax, eps)
				if sameNode {
					m &^= simd.LowMask(i)
				}

				for m != 0 {
					j := bits.TrailingZeros64(m)
					m &= m - 1

					rhs.slot(rn, j, bMin, bMax)
					ctx.PushFrame(pool.Frame{LHS: ln.children[i], RHS: rn.children[j]}, aMin, aMax, bMin, bMax)
				}
			}

		case stepL:
			m := simd.OverlapMask(lhs.view(ln), rMin, rMax, eps)
			for m != 0 {
				i := bits.TrailingZeros64(m)
				m &= m - 1

				lhs.slot(ln, i, aMin, aMax)
				ctx.PushFrame(pool.Frame{LHS: ln.children[i], RHS: f.RHS}, aMin, aMax, rMin, rMax)
			}

		case stepR:
			m := simd.OverlapMask(rhs.view(rn), lMin, lMax, eps)
			for m != 0 {
				j := bits.TrailingZeros64(m)
				m &= m - 1

				rhs.slot(rn, j, bMin, bMax)
				ctx.PushFrame(pool.Frame{LHS: f.LHS, RHS: rn.children[j]}, lMin, lMax, bMin, bMax)
			}

		default:
			// Only NaN surface areas fail both tests; the pair is skipped.
		}
	}
}
