package simd

// overlapUnrolled returns an OverlapMask kernel that tests w boxes per
// block (w a multiple of 8) with straight-line code, leaving the compiler
// free to keep a whole block in vector registers. The tail past the last
// full block runs per box.
func overlapUnrolled(w int) func(b Bounds, qMin, qMax []float32, eps float32) uint64 {
	return func(b Bounds, qMin, qMax []float32, eps float32) uint64 {
		mask := b.Full()

		for d := 0; d < b.Dims && mask != 0; d++ {
			lo, hi := qMin[d]-eps, qMax[d]+eps
			mins, maxs := b.Axis(d)

			var hit uint64
			base := 0
			for ; base+w <= b.Count; base += w {
				if mask&blockMask(base, w) == 0 {
					continue
				}
				for o := base; o < base+w; o += 8 {
					hit |= overlap8(mins[o:o+8], maxs[o:o+8], lo, hi) << uint(o) //nolint:gosec // o < 64
				}
			}
			for i := base; i < b.Count; i++ {
				hit |= within(mins[i], maxs[i], lo, hi) << uint(i) //nolint:gosec // i < 64
			}

			mask &= hit
		}

		return mask
	}
}

// overlap8 tests eight boxes against [lo, hi] on one axis.
func overlap8(mins, maxs []float32, lo, hi float32) uint64 {
	_, _ = mins[7], maxs[7]
	return within(mins[0], maxs[0], lo, hi) |
		within(mins[1], maxs[1], lo, hi)<<1 |
		within(mins[2], maxs[2], lo, hi)<<2 |
		within(mins[3], maxs[3], lo, hi)<<3 |
		within(mins[4], maxs[4], lo, hi)<<4 |
		within(mins[5], maxs[5], lo, hi)<<5 |
		within(mins[6], maxs[6], lo, hi)<<6 |
		within(mins[7], maxs[7], lo, hi)<<7
}

// within is 1 when [mn, mx] meets [lo, hi]. NaN bounds give 0.
func within(mn, mx, lo, hi float32) uint64 {
	if mx >= lo && mn <= hi {
		return 1
	}
	return 0
}
