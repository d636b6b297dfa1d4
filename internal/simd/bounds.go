package simd

// MaxBoxes is the largest number of boxes a kernel call can cover; masks
// are uint64.
const MaxBoxes = 64

// MaxDims is the largest number of axes the kernels support.
const MaxDims = 8

// Bounds is a read-only view of Count boxes stored axis-major: the minimum
// of box i on axis d is Mins[d*Stride+i].
type Bounds struct {
	Mins   []float32
	Maxs   []float32
	Stride int
	Count  int
	Dims   int
}

// Axis returns the minima and maxima of all boxes on axis d.
func (b Bounds) Axis(d int) (mins, maxs []float32) {
	off := d * b.Stride
	return b.Mins[off : off+b.Count], b.Maxs[off : off+b.Count]
}

// Full returns the mask with one bit set per box.
func (b Bounds) Full() uint64 {
	return LowMask(b.Count)
}

// LowMask returns a mask with the lowest n bits set.
func LowMask(n int) uint64 {
	if n >= MaxBoxes {
		return ^uint64(0)
	}
	return uint64(1)<<uint(n) - 1 //nolint:gosec // n < 64
}

// blockMask returns the bits of the block of width w starting at base.
func blockMask(base, w int) uint64 {
	return LowMask(w) << uint(base) //nolint:gosec // base < 64
}
