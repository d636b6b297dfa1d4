package kmeans

import (
	"github.com/hupe1980/boxtree/internal/arena"
)

// massEpsilon floors the footprint of a box so degenerate boxes keep a weight.
const massEpsilon = 1.1920929e-07

// Boxes stages a working set of boxes as parallel per-axis arrays.
//
// Mins and Maxs are owned by the caller and are permuted in place.
// WeightedCenters and Masses are derived scratch.
type Boxes struct {
	Count           int
	Mins            [][]float32 // [axis][box]
	Maxs            [][]float32 // [axis][box]
	WeightedCenters [][]float32 // [axis][box], center * mass
	Masses          []float32
}

// Dims returns the number of axes.
func (b *Boxes) Dims() int {
	return len(b.Mins)
}

func newBoxes(mins, maxs [][]float32, count int, s *arena.Scratch) *Boxes {
	dims := len(mins)
	b := &Boxes{
		Count:           count,
		Mins:            mins,
		Maxs:            maxs,
		WeightedCenters: make([][]float32, dims),
		Masses:          s.Floats(count),
	}

	for d := range dims {
		b.WeightedCenters[d] = s.Floats(count)
	}

	b.initMasses()

	return b
}

// initMasses computes the footprint of every box as the sum over all axis
// pairs of the product of their extents, and the mass-weighted centers.
func (b *Boxes) initMasses() {
	dims := b.Dims()

	for i := 0; i < b.Count; i++ {
		var mass float32
		for x := 0; x < dims-1; x++ {
			xExtent := b.Maxs[x][i] - b.Mins[x][i]
			for y := x + 1; y < dims; y++ {
				mass += xExtent * (b.Maxs[y][i] - b.Mins[y][i])
			}
		}
		b.Masses[i] = max(mass, massEpsilon)
	}

	for d := range dims {
		mins, maxs, wc := b.Mins[d], b.Maxs[d], b.WeightedCenters[d]
		for i := 0; i < b.Count; i++ {
			wc[i] = (maxs[i] + mins[i]) * (b.Masses[i] * 0.5)
		}
	}
}

// distance returns the distance from point mean (one value per axis, read
// from means at index m) to box i. It is zero or negative when the mean lies
// inside the box: the largest per-axis penetration is returned, so a mean deep
// inside scores lower than one on the boundary.
func (b *Boxes) distance(i int, means [][]float32, m int) float32 {
	inside := true
	var distSqr float32
	minSide := float32(-maxFloat32)

	for d := range b.Dims() {
		mean := means[d][m]
		toMin := b.Mins[d][i] - mean
		toMax := mean - b.Maxs[d][i]
		side := max(toMin, toMax)
		out := max(side, 0)
		if out != 0 {
			inside = false
		}
		distSqr += out * out
		minSide = max(minSide, side)
	}

	if inside {
		return minSide
	}

	return sqrt32(distSqr)
}
