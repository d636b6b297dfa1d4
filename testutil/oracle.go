package testutil

import (
	"math"
	"slices"
)

// Box is an axis-aligned box given by its minimum and maximum corners.
type Box struct {
	Min []float32
	Max []float32
}

// Dims returns the number of axes.
func (b Box) Dims() int {
	return len(b.Min)
}

// Union returns the smallest box enclosing all boxes. It panics on an empty slice.
func Union(boxes []Box) Box {
	u := Box{Min: slices.Clone(boxes[0].Min), Max: slices.Clone(boxes[0].Max)}
	for _, b := range boxes[1:] {
		for d := range u.Min {
			u.Min[d] = min(u.Min[d], b.Min[d])
			u.Max[d] = max(u.Max[d], b.Max[d])
		}
	}
	return u
}

// Contains reports whether outer encloses inner on every axis.
func Contains(outer, inner Box) bool {
	for d := range outer.Min {
		if inner.Min[d] < outer.Min[d] || inner.Max[d] > outer.Max[d] {
			return false
		}
	}
	return true
}

// Overlaps reports whether b intersects [qMin, qMax] dilated by eps.
// NaN coordinates never overlap.
func Overlaps(b Box, qMin, qMax []float32, eps float32) bool {
	for d := range b.Min {
		if !(b.Max[d] >= qMin[d]-eps && b.Min[d] <= qMax[d]+eps) {
			return false
		}
	}
	return true
}

// SlabHit reports whether b, dilated by eps, is hit by start + t*dir for
// some t in [tMin, tMax]. Axes where dir is zero only constrain through the
// start coordinate.
func SlabHit(b Box, start, dir []float32, tMin, tMax, eps float32) bool {
	for d := range b.Min {
		lo, hi := b.Min[d]-eps, b.Max[d]+eps
		if dir[d] == 0 {
			if start[d] < lo || start[d] > hi {
				return false
			}
			continue
		}

		inv := 1 / dir[d]
		t1 := (lo - start[d]) * inv
		t2 := (hi - start[d]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
	}
	return tMax >= tMin
}

// PlaneHit reports whether b straddles the plane n·x = w given as
// (n_0, ..., n_{D-1}, w), within eps.
func PlaneHit(b Box, plane []float32, eps float32) bool {
	dims := b.Dims()
	var dist, radius float32
	for d := range dims {
		h := (b.Max[d] - b.Min[d]) * 0.5
		c := b.Min[d] + h
		dist += plane[d] * c
		radius += abs32(plane[d] * h)
	}
	return abs32(dist-plane[dims])-eps <= radius
}

// HalfSpaceHit reports whether b has a point with n·x >= w - eps.
func HalfSpaceHit(b Box, plane []float32, eps float32) bool {
	dims := b.Dims()
	var best float32
	for d := range dims {
		if plane[d] >= 0 {
			best += plane[d] * b.Max[d]
		} else {
			best += plane[d] * b.Min[d]
		}
	}
	return best >= plane[dims]-eps
}

// BruteRange returns the sorted indices of all boxes hit by a range query.
func BruteRange(boxes []Box, qMin, qMax []float32, eps float32) []int {
	return filter(boxes, func(b Box) bool { return Overlaps(b, qMin, qMax, eps) })
}

// BruteRay returns the sorted indices of all boxes hit by the ray start + t*dir, t >= 0.
func BruteRay(boxes []Box, start, dir []float32, eps float32) []int {
	inf := float32(math.Inf(1))
	return filter(boxes, func(b Box) bool { return SlabHit(b, start, dir, 0, inf, eps) })
}

// BruteSegment returns the sorted indices of all boxes hit by the segment start-end.
func BruteSegment(boxes []Box, start, end []float32, eps float32) []int {
	dir := make([]float32, len(start))
	for d := range dir {
		dir[d] = end[d] - start[d]
	}
	return filter(boxes, func(b Box) bool { return SlabHit(b, start, dir, 0, 1, eps) })
}

// BrutePlanar returns the sorted indices of all boxes straddling the plane.
func BrutePlanar(boxes []Box, plane []float32, eps float32) []int {
	return filter(boxes, func(b Box) bool { return PlaneHit(b, plane, eps) })
}

// BruteHalfSpace returns the sorted indices of all boxes reaching into the half-space n·x >= w.
func BruteHalfSpace(boxes []Box, plane []float32, eps float32) []int {
	return filter(boxes, func(b Box) bool { return HalfSpaceHit(b, plane, eps) })
}

// BrutePairs returns every pair (i, j) with lhs[i] and rhs[j] overlapping
// within eps, sorted lexicographically.
func BrutePairs(lhs, rhs []Box, eps float32) [][2]int {
	var pairs [][2]int
	for i, a := range lhs {
		for j, b := range rhs {
			if Overlaps(b, a.Min, a.Max, eps) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// BruteSelfPairs returns every unordered pair i < j of overlapping boxes,
// sorted lexicographically.
func BruteSelfPairs(boxes []Box, eps float32) [][2]int {
	var pairs [][2]int
	for i, a := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if Overlaps(boxes[j], a.Min, a.Max, eps) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// SortPairs orders pairs lexicographically in place and returns them.
func SortPairs(pairs [][2]int) [][2]int {
	slices.SortFunc(pairs, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return pairs
}

func filter(boxes []Box, hit func(Box) bool) []int {
	out := []int{}
	for i, b := range boxes {
		if hit(b) {
			out = append(out, i)
		}
	}
	return out
}

func abs32(v float32) float32 {
	return math.Float32frombits(math.Float32bits(v) &^ (1 << 31))
}
