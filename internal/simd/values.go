package simd

import "math"

// SurfaceArea returns the surface-area proxy of one box: the sum over all
// axis pairs of the product of their extents, or the extent itself when
// there is a single axis. Negative extents count as zero.
func SurfaceArea(mins, maxs []float32) float32 {
	dims := len(mins)
	if dims == 1 {
		return max(maxs[0]-mins[0], 0)
	}

	var sa float32
	for x := 0; x < dims-1; x++ {
		ex := max(maxs[x]-mins[x], 0)
		for y := x + 1; y < dims; y++ {
			sa += ex * max(maxs[y]-mins[y], 0)
		}
	}
	return sa
}

// SurfaceAreas writes the surface-area proxy of every box into out.
func SurfaceAreas(b Bounds, out []float32) {
	out = out[:b.Count]
	clear(out)

	if b.Dims == 1 {
		mins, maxs := b.Axis(0)
		for i := range out {
			out[i] = max(maxs[i]-mins[i], 0)
		}
		return
	}

	for x := 0; x < b.Dims-1; x++ {
		xMins, xMaxs := b.Axis(x)
		for y := x + 1; y < b.Dims; y++ {
			yMins, yMaxs := b.Axis(y)
			for i := range out {
				out[i] += max(xMaxs[i]-xMins[i], 0) * max(yMaxs[i]-yMins[i], 0)
			}
		}
	}
}

// PercentOverlap writes, for every box, the surface area of its intersection
// with the query box divided by the surface area of their union proxy
// (qSA + boxSA - intersectionSA). boxSA must hold the surface areas of the
// boxes.
//
// Disjoint boxes score 0. When the denominator is zero the boxes are
// degenerate and touching, which scores 1.
func PercentOverlap(b Bounds, qMin, qMax []float32, qSA float32, boxSA, out []float32) {
	var lo, hi [MaxDims][MaxBoxes]float32
	var disjoint uint64

	for d := range b.Dims {
		mins, maxs := b.Axis(d)
		for i := range b.Count {
			lo[d][i] = max(mins[i], qMin[d])
			hi[d][i] = min(maxs[i], qMax[d])
			if !(hi[d][i] >= lo[d][i]) {
				disjoint |= 1 << uint(i) //nolint:gosec // i < 64
			}
		}
	}

	var mins, maxs [MaxDims]float32
	for i := range b.Count {
		if disjoint&(1<<uint(i)) != 0 { //nolint:gosec // i < 64
			out[i] = 0
			continue
		}

		for d := range b.Dims {
			mins[d], maxs[d] = lo[d][i], hi[d][i]
		}
		inter := SurfaceArea(mins[:b.Dims], maxs[:b.Dims])

		denom := qSA + boxSA[i] - inter
		if denom <= 0 {
			out[i] = 1
			continue
		}
		out[i] = inter / denom
	}
}

// BoxDistancesSqr writes the squared gap between every box and the query
// box into out. Overlapping boxes are at distance zero.
func BoxDistancesSqr(b Bounds, qMin, qMax []float32, out []float32) {
	out = out[:b.Count]
	clear(out)

	for d := range b.Dims {
		qh := (qMax[d] - qMin[d]) * 0.5
		qc := (qMax[d] + qMin[d]) * 0.5
		mins, maxs := b.Axis(d)

		for i := range out {
			h := (maxs[i] - mins[i]) * 0.5
			c := (maxs[i] + mins[i]) * 0.5
			gap := max(abs32(c-qc)-(h+qh), 0)
			out[i] += gap * gap
		}
	}
}

// AxialMinMax writes the union of all boxes into outMin and outMax.
// It panics when there are no boxes.
func AxialMinMax(b Bounds, outMin, outMax []float32) {
	if b.Count == 0 {
		panic("simd: AxialMinMax of zero boxes")
	}

	for d := range b.Dims {
		mins, maxs := b.Axis(d)
		lo, hi := mins[0], maxs[0]
		for i := 1; i < b.Count; i++ {
			lo = min(lo, mins[i])
			hi = max(hi, maxs[i])
		}
		outMin[d], outMax[d] = lo, hi
	}
}

func abs32(v float32) float32 {
	return math.Float32frombits(math.Float32bits(v) &^ (1 << 31))
}
