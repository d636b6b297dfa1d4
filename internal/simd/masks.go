package simd

// blockWidth is the block size of the Generic kernels.
const blockWidth = 4

// OverlapMask returns a bit per box that intersects the query box
// [qMin, qMax] dilated by eps. Boxes with NaN coordinates never intersect.
func OverlapMask(b Bounds, qMin, qMax []float32, eps float32) uint64 {
	return overlapMask(b, qMin, qMax, eps)
}

func overlapBlocked(b Bounds, qMin, qMax []float32, eps float32) uint64 {
	mask := b.Full()
	w := blockWidth

	for d := 0; d < b.Dims && mask != 0; d++ {
		lo, hi := qMin[d]-eps, qMax[d]+eps
		mins, maxs := b.Axis(d)

		for base := 0; base < b.Count; base += w {
			if mask&blockMask(base, w) == 0 {
				continue
			}
			for i := base; i < min(base+w, b.Count); i++ {
				if !(maxs[i] >= lo && mins[i] <= hi) {
					mask &^= 1 << uint(i) //nolint:gosec // i < 64
				}
			}
		}
	}

	return mask
}

// SlabMask returns a bit per box (dilated by eps) that the line
// start + t*dir hits for some t in [tMin, tMax].
//
// An axis with a zero direction component does not constrain t; the box is
// rejected instead when start lies outside its slab on that axis.
func SlabMask(b Bounds, start, dir []float32, tMin, tMax, eps float32) uint64 {
	return slabMask(b, start, dir, tMin, tMax, eps)
}

func slabBlocked(b Bounds, start, dir []float32, tMin, tMax, eps float32) uint64 {
	return slab(b, start, dir, tMin, tMax, eps, blockWidth)
}

// slabBranchless computes every box on every axis; wide registers pay more
// for the block test than for the dead lanes.
func slabBranchless(b Bounds, start, dir []float32, tMin, tMax, eps float32) uint64 {
	return slab(b, start, dir, tMin, tMax, eps, MaxBoxes)
}

// slab skips blocks of w boxes that are already rejected; w = MaxBoxes
// disables skipping.
func slab(b Bounds, start, dir []float32, tMin, tMax, eps float32, w int) uint64 {
	var enter, exit [MaxBoxes]float32
	for i := range b.Count {
		enter[i], exit[i] = tMin, tMax
	}

	mask := b.Full()

	for d := 0; d < b.Dims && mask != 0; d++ {
		s := start[d]
		mins, maxs := b.Axis(d)

		if dir[d] == 0 {
			for i := range b.Count {
				if s < mins[i]-eps || s > maxs[i]+eps {
					mask &^= 1 << uint(i) //nolint:gosec // i < 64
				}
			}
			continue
		}

		inv := 1 / dir[d]
		for base := 0; base < b.Count; base += w {
			if w < MaxBoxes && mask&blockMask(base, w) == 0 {
				continue
			}
			for i := base; i < min(base+w, b.Count); i++ {
				t1 := (mins[i] - eps - s) * inv
				t2 := (maxs[i] + eps - s) * inv
				if t1 > t2 {
					t1, t2 = t2, t1
				}
				enter[i] = max(enter[i], t1)
				exit[i] = min(exit[i], t2)
			}
		}
	}

	for i := range b.Count {
		if !(exit[i] >= enter[i]) {
			mask &^= 1 << uint(i) //nolint:gosec // i < 64
		}
	}

	return mask
}

// PlaneMask returns a bit per box that straddles the plane n·x = w, given
// as Dims+1 coefficients (n_0, ..., n_{D-1}, w): the distance from the box
// center to the plane, less eps, must not exceed the box's half extent
// projected onto the normal.
func PlaneMask(b Bounds, plane []float32, eps float32) uint64 {
	var dist, radius [MaxBoxes]float32

	for d := range b.Dims {
		n := plane[d]
		mins, maxs := b.Axis(d)
		for i := range b.Count {
			h := (maxs[i] - mins[i]) * 0.5
			dist[i] += n * (mins[i] + h)
			radius[i] += abs32(n * h)
		}
	}

	w := plane[b.Dims]
	var mask uint64
	for i := range b.Count {
		if abs32(dist[i]-w)-eps <= radius[i] {
			mask |= 1 << uint(i) //nolint:gosec // i < 64
		}
	}

	return mask
}

// HalfSpaceMask returns a bit per box that has a point x with n·x >= w - eps,
// the plane given as in PlaneMask.
func HalfSpaceMask(b Bounds, plane []float32, eps float32) uint64 {
	var reach [MaxBoxes]float32

	for d := range b.Dims {
		n := plane[d]
		mins, maxs := b.Axis(d)
		corner := maxs
		if n < 0 {
			corner = mins
		}
		for i := range b.Count {
			reach[i] += n * corner[i]
		}
	}

	limit := plane[b.Dims] - eps
	var mask uint64
	for i := range b.Count {
		if reach[i] >= limit {
			mask |= 1 << uint(i) //nolint:gosec // i < 64
		}
	}

	return mask
}
