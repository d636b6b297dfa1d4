package cull

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/boxtree"
)

// Visible returns the ids whose bounds reach into every half-space
// n·x >= w of planes, each given as D+1 coefficients (n_0, ..., n_{D-1}, w).
// A box outside any plane is culled. Without planes every id is visible.
func Visible(tree *boxtree.Tree[uint32], planes [][]float32, eps float32) *roaring.Bitmap {
	if len(planes) == 0 {
		return All(tree)
	}

	sets := make([]*roaring.Bitmap, 0, len(planes))
	for _, plane := range planes {
		bm := roaring.New()
		tree.HalfSpaceQuery(plane, eps, boxtree.Each(func(id *uint32) {
			bm.Add(*id)
		}))
		if bm.IsEmpty() {
			return bm
		}
		sets = append(sets, bm)
	}

	return roaring.FastAnd(sets...)
}

// All returns every id stored in tree.
func All(tree *boxtree.Tree[uint32]) *roaring.Bitmap {
	bm := roaring.New()
	for id := range tree.All() {
		bm.Add(*id)
	}
	return bm
}

// BoxPlanes returns the 2D half-spaces whose intersection is the box
// [mins, maxs], for use as an orthographic view volume.
func BoxPlanes(mins, maxs []float32) [][]float32 {
	dims := len(mins)
	planes := make([][]float32, 0, 2*dims)
	for d := range dims {
		lower := make([]float32, dims+1)
		lower[d], lower[dims] = 1, mins[d]

		upper := make([]float32, dims+1)
		upper[d], upper[dims] = -1, -maxs[d]

		planes = append(planes, lower, upper)
	}
	return planes
}
